// Package http serve il modulo web: form di caricamento estratto conto,
// anteprima dell'aggregazione e generazione della lettera di
// valorizzazione in formato Word.
package http

import (
	"context"
	"html/template"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"valorizza/internal/cache"
	"valorizza/internal/config"
	"valorizza/internal/core"
	"valorizza/internal/log"
	"valorizza/internal/middleware/ratelimit"
	"valorizza/internal/middleware/security"
	"valorizza/internal/middleware/trace"
	"valorizza/internal/registry"
	"valorizza/internal/storage"
	appweb "valorizza/web"
)

type Server struct {
	http.Server

	templates *template.Template
	markdown  goldmark.Markdown

	logger     *log.Logger
	structured *log.StructuredLogger

	reg     *registry.Registry
	repo    *storage.Repository
	amounts core.AmountFormatter

	maxUploadBytes  int64
	maxUploadMB     int
	defaultCity     string
	monthEndChoices int
	historyLimit    int

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	history      cache.Cache[[]storage.Letter]
	cacheManager *cache.Manager

	appMetrics   *appMetrics
	shutdownOnce sync.Once
}

// appMetrics tracks application-level counters for /metrics.
type appMetrics struct {
	startedAt        time.Time
	previews         int64
	lettersGenerated int64
	cacheHits        int64
	cacheMisses      int64
}

// historyCacheKey is the single key of the recent-letters cache; the
// cache entry is invalidated whenever a new letter is recorded.
const historyCacheKey = "recent"

// NewServer configures routes, middleware and templates, returning a
// ready-to-run http.Server.
func NewServer(cfg *config.Config, reg *registry.Registry, repo *storage.Repository, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	structured := log.NewStructuredLogger(logger)
	detector := security.NewDetector()

	s := &Server{
		logger:     logger,
		structured: structured,
		reg:        reg,
		repo:       repo,
		amounts:    core.EuroIT(),

		maxUploadBytes:  cfg.MaxUploadBytes(),
		maxUploadMB:     cfg.MaxUploadMB,
		defaultCity:     cfg.DefaultCity,
		monthEndChoices: cfg.MonthEndChoices,
		historyLimit:    cfg.HistoryLimit,

		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),

		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     detector,
		tracer:       trace.NewMiddleware(detector.ExtractClientIP, structured),
		cacheManager: cache.NewManager(),

		appMetrics: &appMetrics{startedAt: time.Now()},
	}

	// Recent-letters partial is cached briefly and invalidated on insert.
	history := cache.NewTTL[[]storage.Letter](4, 5*time.Minute)
	s.history = history
	s.cacheManager.Register("history", history)
	s.cacheManager.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := appweb.Templates()
	if err != nil {
		logger.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := appweb.Static(); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssets(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/anteprima", s.handlePreview)
	mux.HandleFunc("/genera", s.handleGenerate)
	mux.HandleFunc("/ui/importa-dati", s.handleClipboardImport)
	mux.HandleFunc("/ui/storico", s.handleHistory)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	headers := security.Headers(security.DefaultPolicy())

	// Outermost to innermost: context logger, tracing, request-id
	// enrichment, security headers, screening, routes.
	handler := log.Middleware(logger)(
		s.tracer.Middleware(
			log.RequestIDMiddleware(func(r *http.Request) string {
				return trace.GetRequestID(r.Context())
			})(
				headers(
					s.withScreening(mux)))))

	s.Server = http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	return s
}

// withScreening flags suspicious requests and rate limits POSTs, which
// carry uploads and are the expensive path.
func (s *Server) withScreening(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.detector.ExtractClientIP(r)

		if s.detector.Suspicious(r) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Suspicious request detected",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
		}

		if r.Method == http.MethodPost && !s.limiter.Allow(clientIP) {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// cachedRecent returns the recent letters, from cache when fresh.
func (s *Server) cachedRecent(ctx context.Context) ([]storage.Letter, error) {
	if items, found := s.history.Get(historyCacheKey); found {
		atomic.AddInt64(&s.appMetrics.cacheHits, 1)
		return items, nil
	}
	atomic.AddInt64(&s.appMetrics.cacheMisses, 1)

	items, err := s.repo.Recent(ctx, s.historyLimit)
	if err != nil {
		return nil, err
	}
	s.history.Set(historyCacheKey, items)
	return items, nil
}
