package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"

	"savings/internal/cache"
	"savings/internal/core"
	"savings/internal/events"
	applog "savings/internal/log"
	"savings/internal/middleware/ratelimit"
	"savings/internal/middleware/security"
	"savings/internal/middleware/trace"
	"savings/internal/services"
	appweb "savings/web"
)

const summaryCacheKey = "summary"

// Options tunes the server. Zero values fall back to sensible defaults.
type Options struct {
	Logger *applog.Logger
	// Bus, when set, invalidates the summary cache and feeds /ws for
	// changes made anywhere in the process.
	Bus                *events.Bus
	RateLimitPerMinute int
	SummaryCacheTTL    time.Duration
}

type Server struct {
	http.Server
	svc       *services.RecordService
	logger    *applog.Logger
	events    *applog.StructuredLogger
	templates *template.Template
	decoder   *schema.Decoder

	summaryCache *cache.LRU[core.Summary]
	caches       *cache.Manager
	limiter      *ratelimit.Limiter
	detector     *security.Detector
	tracer       *trace.Middleware
	hub          *Hub

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server. It panics when svc is nil.
func NewServer(addr string, svc *services.RecordService, opts Options) *Server {
	if svc == nil {
		panic("http: NewServer requires a record service")
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	rlConfig := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = opts.RateLimitPerMinute
	}

	decoder := schema.NewDecoder()
	decoder.IgnoreUnknownKeys(true)

	s := &Server{
		svc:          svc,
		logger:       logger,
		events:       applog.NewStructuredLogger(logger.WithComponent(applog.ComponentRecords)),
		decoder:      decoder,
		summaryCache: cache.NewLRU[core.Summary](1, opts.SummaryCacheTTL),
		caches:       cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger),
		limiter:      ratelimit.NewLimiter(rlConfig),
		detector:     security.NewDetector(),
		hub:          NewHub(logger.WithComponent(applog.ComponentWebsocket)),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	r := mux.NewRouter()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		r.PathPrefix("/static/").Handler(security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	r.HandleFunc("/export.csv", s.handleExportCSV).Methods(http.MethodGet)
	r.Handle("/ws", s.hub).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/records", s.handleListRecords).Methods(http.MethodGet)
	api.HandleFunc("/records", s.handleCreateRecord).Methods(http.MethodPost)
	api.HandleFunc("/records/{id}", s.handleDeleteRecord).Methods(http.MethodDelete)
	api.HandleFunc("/rates", s.handleRates).Methods(http.MethodGet)
	api.HandleFunc("/preview", s.handlePreview).Methods(http.MethodGet)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/trend", s.handleTrend).Methods(http.MethodGet)

	limited := s.limiter.Middleware(rlConfig.Methods, s.detector.ExtractClientIP, s.onRateLimited)(r)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := s.tracer.Middleware(headers.Middleware(s.detector.Middleware(logger)(limited)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if opts.Bus != nil {
		if err := opts.Bus.Subscribe(s.onRecordEvent); err != nil {
			logger.Warn("Failed to subscribe to record events", applog.FieldError, err)
		}
	}

	s.caches.Register(s.summaryCache)
	s.caches.StartCleanup(time.Minute)

	return s
}

func (s *Server) onRecordEvent(e events.RecordEvent) {
	s.summaryCache.Purge()
	s.hub.Broadcast(e)
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
}

// summary returns the cached dashboard summary, computing it on a miss.
func (s *Server) summary(ctx context.Context) (core.Summary, error) {
	sum, err := s.summaryCache.GetOrLoad(summaryCacheKey, func() (core.Summary, error) {
		return s.svc.Summary(ctx)
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("load summary: %w", err)
	}
	return sum, nil
}

// Shutdown stops background goroutines, closes websocket clients and shuts
// the HTTP server down. Only the first call does any work.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.caches.Stop()
		s.hub.Close()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
