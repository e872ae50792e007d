package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"finflow/internal/cache"
	"finflow/internal/core"
	applog "finflow/internal/log"
	"finflow/internal/metrics"
	"finflow/internal/middleware/ratelimit"
	"finflow/internal/middleware/security"
	"finflow/internal/middleware/trace"
	"finflow/internal/services"
	appweb "finflow/web"
)

const (
	dashboardCacheSize = 24
	defaultCacheTTL    = 5 * time.Minute
	cacheSweepInterval = 10 * time.Minute
	requestTimeout     = 7 * time.Second
)

// Pinger reports whether the data backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the web server needs. Ready may be nil, in
// which case /readyz only checks the templates.
type Deps struct {
	Categories         *services.CategoryService
	Transactions       *services.TransactionService
	Stats              *services.StatsService
	Ready              Pinger
	Logger             *applog.Logger
	CacheTTL           time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	templates    *template.Template
	categories   *services.CategoryService
	transactions *services.TransactionService
	stats        *services.StatsService
	ready        Pinger
	logger       *applog.Logger

	limiter    *ratelimit.Limiter
	detector   *security.Detector
	dashCache  *cache.LRUCache[core.Period, services.Dashboard]
	dashboards *cache.Loader[core.Period, services.Dashboard]
	caches     *cache.Manager

	started      time.Time
	now          func() time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger.WithComponent(applog.ComponentHTTP)
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	s := &Server{
		categories:   deps.Categories,
		transactions: deps.Transactions,
		stats:        deps.Stats,
		ready:        deps.Ready,
		logger:       logger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: deps.RateLimitPerMinute,
		}),
		detector:  security.NewDetector(),
		dashCache: cache.NewLRUCache[core.Period, services.Dashboard](dashboardCacheSize, ttl),
		caches:    cache.NewManager(deps.Logger),
		started:   time.Now(),
		now:       time.Now,
	}
	s.dashboards = cache.NewLoader[core.Period, services.Dashboard](s.dashCache, s.stats.Dashboard).WithTimeout(requestTimeout)
	s.caches.Register(s.dashCache)
	s.caches.Start(cacheSweepInterval)

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Error("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	s.routes(mux)

	tracer := trace.NewMiddleware(deps.Logger, s.detector.ClientIP)
	limit := s.limiter.Middleware(s.detector.ClientIP, s.rateLimited, http.MethodPost)

	var handler http.Handler = mux
	handler = limit(handler)
	handler = s.inspect(handler)
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssets(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.HandleFunc("GET /{$}", s.handleDashboard)

	mux.HandleFunc("GET /transactions", s.handleTransactions)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions/{id}/edit", s.handleEditTransaction)
	mux.HandleFunc("POST /transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("POST /transactions/{id}/delete", s.handleDeleteTransaction)

	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("POST /categories", s.handleCreateCategory)
	mux.HandleFunc("GET /categories/{id}/edit", s.handleEditCategory)
	mux.HandleFunc("POST /categories/{id}", s.handleUpdateCategory)
	mux.HandleFunc("POST /categories/{id}/delete", s.handleDeleteCategory)

	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /api/stats/daily", s.handleDailyStatsAPI)
	mux.HandleFunc("GET /api/words", s.handleWordsAPI)
	mux.HandleFunc("GET /ui/amount-words", s.handleAmountWords)

	mux.HandleFunc("GET /settings", s.handleSettings)
	mux.HandleFunc("POST /settings/clear", s.handleClearTransactions)
}

// inspect logs requests that look like scans. They are still served.
func (s *Server) inspect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.detector.Inspect(r); reason != "" {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request",
				"reason", reason,
				applog.FieldMethod, r.Method,
				applog.FieldPath, r.URL.Path,
				applog.FieldClientIP, s.detector.ClientIP(r),
				applog.FieldUserAgent, r.Header.Get("User-Agent"))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, msgRateLimited).
		TriggerErrorNotification(msgRateLimited).
		Write(w)
}

// dashboard returns the cached month view, loading it on miss.
func (s *Server) dashboard(ctx context.Context, p core.Period) (services.Dashboard, error) {
	return s.dashboards.Get(ctx, p)
}

// invalidate drops every cached month. A transaction edit can move an
// entry between months, and clearing touches all of them.
func (s *Server) invalidate() {
	s.dashboards.Invalidate()
}

// Shutdown stops background sweeps and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
