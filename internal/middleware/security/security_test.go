package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "savings/internal/log"
)

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Errorf("X-Frame-Options = %q", rec.Header().Get("X-Frame-Options"))
	}
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "connect-src 'self' ws: wss:") {
		t.Errorf("CSP should allow websocket connections: %q", rec.Header().Get("Content-Security-Policy"))
	}
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must not be sent over plain HTTP")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestDetector_DetectSuspiciousRequest(t *testing.T) {
	d := NewDetector()
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"dashboard", http.MethodGet, "/", "Mozilla/5.0", false},
		{"api", http.MethodPost, "/api/records", "curl/8.0", false},
		{"traversal", http.MethodGet, "/static/../.env", "", true},
		{"scanner", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
		{"query probe", http.MethodGet, "/api/preview?x=union+select", "", false},
		{"query script", http.MethodGet, "/api/preview?x=%3Cscript%3E", "", false},
		{"raw query script", http.MethodGet, "/api/preview?x=<script>", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
	if d.SuspiciousCount() != 4 {
		t.Errorf("SuspiciousCount = %d, want 4", d.SuspiciousCount())
	}
}

func TestDetector_ExtractClientIP(t *testing.T) {
	d := NewDetector()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "127.0.0.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	if got := d.ExtractClientIP(r); got != "203.0.113.7" {
		t.Errorf("trusted proxy: got %q", got)
	}

	r.RemoteAddr = "198.51.100.1:4444"
	if got := d.ExtractClientIP(r); got != "198.51.100.1" {
		t.Errorf("untrusted peer must not be overridden, got %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.1.1.1:80"
	r.Header.Set("X-Real-IP", "203.0.113.9")
	if got := d.ExtractClientIP(r); got != "203.0.113.9" {
		t.Errorf("X-Real-IP: got %q", got)
	}

	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}

func TestDetector_MiddlewarePassesThrough(t *testing.T) {
	d := NewDetector()
	called := false
	h := d.Middleware(applog.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/.git/config", nil))
	if !called {
		t.Error("suspicious requests are logged, not blocked")
	}
}
