package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savings/internal/events"
	applog "savings/internal/log"
	"savings/internal/records/memory"
	"savings/internal/services"
)

type testEnv struct {
	srv *Server
	bus *events.Bus
}

func newTestServer(t *testing.T, opts Options) testEnv {
	t.Helper()
	bus := events.NewBus()
	svc := services.NewRecordService(memory.New(), services.WithBus(bus))
	opts.Bus = bus
	opts.Logger = applog.Discard()
	if opts.SummaryCacheTTL == 0 {
		opts.SummaryCacheTTL = time.Minute
	}
	srv := NewServer(":0", svc, opts)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return testEnv{srv: srv, bus: bus}
}

func (e testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestNewServerPanicsWithoutService(t *testing.T) {
	assert.PanicsWithValue(t, "http: NewServer requires a record service", func() {
		NewServer(":0", nil, Options{})
	})
}

func TestHealthAndReady(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = env.do(t, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())
}

func TestListRecords(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodGet, "/api/records", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[[]map[string]any](t, rec)
	require.Len(t, body, 2)
	assert.Equal(t, "2024-02-15", body[0]["date"])
	assert.Equal(t, "253600", body[0]["total"])
	assert.Contains(t, body[0], "growth")
	assert.Equal(t, "2024-01-15", body[1]["date"])
	assert.NotContains(t, body[1], "growth")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCreateRecord_JSONAcceptsNumbersAndStrings(t *testing.T) {
	env := newTestServer(t, Options{})

	payload := `{"date":"2024-03-15","goldInCoins":2,"goldConversionValue":"4000","investments":"abc","cashSavings":" 1,5 ","dollarsInUSD":null}`
	rec := env.do(t, http.MethodPost, "/api/records", strings.NewReader(payload), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "2024-03-15", body["date"])
	assert.Equal(t, "8000", body["totalGold"])
	assert.Equal(t, "0", body["investments"])
	assert.Equal(t, "1.5", body["cashSavings"])
	assert.Equal(t, "8001.5", body["total"])

	list := decode[[]map[string]any](t, env.do(t, http.MethodGet, "/api/records", nil, ""))
	require.Len(t, list, 3)
	assert.Equal(t, "2024-03-15", list[0]["date"])
}

func TestCreateRecord_Form(t *testing.T) {
	env := newTestServer(t, Options{})

	form := url.Values{
		"date":                  {"2024-01-15"},
		"goldInCoins":           {"1"},
		"goldConversionValue":   {"3500"},
		"dollarsInUSD":          {"10"},
		"dollarConversionValue": {"31"},
		"unknownField":          {"ignored"},
	}
	rec := env.do(t, http.MethodPost, "/api/records", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[map[string]any](t, rec)
	assert.Equal(t, "3810", body["total"])

	// equal dates keep insertion order: the new record sorts after the existing Jan 15 one
	list := decode[[]map[string]any](t, env.do(t, http.MethodGet, "/api/records", nil, ""))
	require.Len(t, list, 3)
	assert.Equal(t, "214750", list[1]["total"])
	assert.Equal(t, "3810", list[2]["total"])
}

func TestCreateRecord_BrowserFormRedirects(t *testing.T) {
	env := newTestServer(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/records", strings.NewReader("cashSavings=10"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	rec := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestCreateRecord_Errors(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/records", strings.NewReader(`{"date":"15/01/2024"}`), "application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid date")

	rec = env.do(t, http.MethodPost, "/api/records", strings.NewReader(`{"date":`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/records", strings.NewReader(`date=2024-13-01`), "application/x-www-form-urlencoded")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// nothing was stored
	list := decode[[]map[string]any](t, env.do(t, http.MethodGet, "/api/records", nil, ""))
	assert.Len(t, list, 2)
}

func TestCreateRecord_EmptyDateIsToday(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodPost, "/api/records", strings.NewReader(`{"cashSavings":5}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), body["date"])
}

func TestDeleteRecord(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodDelete, "/api/records/does-not-exist", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, env.do(t, http.MethodGet, "/api/records", nil, "")), 2)

	rec = env.do(t, http.MethodDelete, "/api/records/2", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	list := decode[[]map[string]any](t, env.do(t, http.MethodGet, "/api/records", nil, ""))
	require.Len(t, list, 1)
	assert.Equal(t, "1", list[0]["id"])

	rec = env.do(t, http.MethodDelete, "/api/records/2", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRates(t *testing.T) {
	env := newTestServer(t, Options{})

	body := decode[map[string]string](t, env.do(t, http.MethodGet, "/api/rates", nil, ""))
	assert.Equal(t, "3600", body["goldRate"])
	assert.Equal(t, "31.5", body["dollarRate"])

	env.do(t, http.MethodDelete, "/api/records/1", nil, "")
	env.do(t, http.MethodDelete, "/api/records/2", nil, "")

	body = decode[map[string]string](t, env.do(t, http.MethodGet, "/api/rates", nil, ""))
	assert.Equal(t, "3500", body["goldRate"])
	assert.Equal(t, "31", body["dollarRate"])
}

type previewBody struct {
	TotalGold    string            `json:"totalGold"`
	DollarsInEGP string            `json:"dollarsInEGP"`
	Total        string            `json:"total"`
	Display      map[string]string `json:"display"`
}

func TestPreview(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodGet, "/api/preview?goldInCoins=2.5&goldConversionValue=3500&dollarsInUSD=x&cashSavings=250", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode[previewBody](t, rec)
	assert.Equal(t, "8750", body.TotalGold)
	assert.Equal(t, "0", body.DollarsInEGP)
	assert.Equal(t, "9000", body.Total)
	assert.Equal(t, "EGP 9,000", body.Display["total"])
}

func TestSummary_InvalidatedOnChange(t *testing.T) {
	env := newTestServer(t, Options{SummaryCacheTTL: time.Hour})

	body := decode[map[string]any](t, env.do(t, http.MethodGet, "/api/summary", nil, ""))
	assert.Equal(t, "253600", body["total"])
	assert.EqualValues(t, 2, body["count"])
	assert.Contains(t, body, "growth")

	rec := env.do(t, http.MethodPost, "/api/records", strings.NewReader(`{"date":"2024-03-15","cashSavings":"1000"}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)

	body = decode[map[string]any](t, env.do(t, http.MethodGet, "/api/summary", nil, ""))
	assert.Equal(t, "1000", body["total"])
	assert.EqualValues(t, 3, body["count"])
}

func TestSummary_InvalidatedByBusEvents(t *testing.T) {
	env := newTestServer(t, Options{SummaryCacheTTL: time.Hour})

	decode[map[string]any](t, env.do(t, http.MethodGet, "/api/summary", nil, ""))
	require.Equal(t, 1, env.srv.summaryCache.Size())

	env.bus.Publish(events.Deleted("x"))
	assert.Equal(t, 0, env.srv.summaryCache.Size())
}

func TestTrend(t *testing.T) {
	env := newTestServer(t, Options{})

	body := decode[[]map[string]any](t, env.do(t, http.MethodGet, "/api/trend", nil, ""))
	require.Len(t, body, 2)
	assert.Equal(t, "Jan 15", body[0]["label"])
	assert.Equal(t, "214750", body[0]["total"])
	assert.Equal(t, "Feb 15", body[1]["label"])
}

func TestExportCSV(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodGet, "/export.csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id,date,"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2,2024-02-15,"), lines[1])
}

func TestIndexPage(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	html := rec.Body.String()
	assert.Contains(t, html, "EGP 253,600")
	assert.Contains(t, html, "+18.1%")
	assert.Contains(t, html, "Feb 15, 2024")
	assert.Contains(t, html, `name="goldConversionValue" value="3600"`)
	assert.Contains(t, html, `name="dollarConversionValue" value="31.5"`)
}

func TestStaticAssets(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodGet, "/static/app.js", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestServer(t, Options{})

	rec := env.do(t, http.MethodPut, "/api/records", nil, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRateLimitOnWrites(t *testing.T) {
	env := newTestServer(t, Options{RateLimitPerMinute: 1})

	rec := env.do(t, http.MethodPost, "/api/records", strings.NewReader(`{}`), "application/json")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/records", strings.NewReader(`{}`), "application/json")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	rec = env.do(t, http.MethodGet, "/api/records", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebsocketReceivesRecordEvents(t *testing.T) {
	env := newTestServer(t, Options{})
	ts := httptest.NewServer(env.srv.Handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, hello, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"hello"}`, string(hello))

	resp, err := http.Post(ts.URL+"/api/records", "application/json", strings.NewReader(`{"date":"2024-04-01","cashSavings":7}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var ev events.RecordEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.RecordCreated, ev.Type)
	assert.Equal(t, "2024-04-01", ev.Date)
	require.NotNil(t, ev.Total)
	assert.Equal(t, "7", ev.Total.String())
	assert.Equal(t, 1, env.srv.hub.Clients())
}
