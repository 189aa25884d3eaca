package web

import (
	"context"
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"homecal/internal/config"
	"homecal/internal/ics"
	appLog "homecal/internal/log"
	"homecal/internal/model"
)

// eventLoader supplies the expanded event set for a time window. The default
// loader runs the ICS fetch/parse/expand pipeline; tests inject their own.
type eventLoader func(ctx context.Context, rangeStart, rangeEnd time.Time, loc *time.Location) ([]model.Event, []string, error)

// Server provides the HTTP API and the embedded calendar UI.
type Server struct {
	mu    sync.RWMutex
	cfg   *config.Config
	debug bool

	router *mux.Router
	load   eventLoader

	cacheMu sync.Mutex
	cache   map[string]cacheEntry
}

// cacheEntry holds one cached JSON response body.
type cacheEntry struct {
	body      []byte
	updatedAt time.Time
}

// responseCacheTTL bounds how stale API responses may get; the cron refresh
// loop is the primary driver of fresh data.
const responseCacheTTL = 30 * time.Second

// embeddedStatic contains the static calendar UI served at /.
//
//go:embed all:static
var embeddedStatic embed.FS

// NewServer constructs a Server for the given configuration.
func NewServer(cfg *config.Config, debug bool) *Server {
	s := &Server{
		cfg:    cfg,
		debug:  debug,
		router: mux.NewRouter(),
		cache:  make(map[string]cacheEntry),
	}
	s.load = s.loadFromICS
	s.registerRoutes()
	return s
}

// UpdateConfig swaps in a reloaded configuration (config-file hot reload)
// and invalidates cached responses.
func (s *Server) UpdateConfig(cfg *config.Config) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()

	s.cacheMu.Lock()
	s.cache = make(map[string]cacheEntry)
	s.cacheMu.Unlock()
}

func (s *Server) config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Handler returns the root http.Handler: router wrapped with request
// logging and, when configured, basic auth.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	h = s.requestLogMiddleware(h)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.config().Listen)
		h = s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/events", s.handleEvents).Methods(http.MethodGet)
	s.router.HandleFunc("/api/layout/month", s.handleLayoutMonth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/layout/week", s.handleLayoutWeek).Methods(http.MethodGet)
	s.router.HandleFunc("/api/layout/day", s.handleLayoutDay).Methods(http.MethodGet)
	s.router.HandleFunc("/preview.png", s.handlePreview).Methods(http.MethodGet)

	// Everything else falls through to the embedded static UI.
	s.router.PathPrefix("/").Handler(s.staticFileServer())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePreview serves the last rendered PNG snapshot from the data dir.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(s.dataDir(), "preview.png"))
}

// dataDir returns the effective data directory; debug runs use a local
// ./cache dir so development works without root permissions.
func (s *Server) dataDir() string {
	if s.debug {
		return "./cache"
	}
	return s.config().DataDir
}

// staticFileServer serves the embedded UI from internal/web/static. /api/*
// paths never fall through to it: a missing API route should 404, not
// return HTML.
func (s *Server) staticFileServer() http.Handler {
	sub, err := fs.Sub(embeddedStatic, "static")
	if err != nil {
		appLog.Error("failed to initialize embedded static filesystem", err)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "static UI not available", http.StatusServiceUnavailable)
		})
	}
	fileServer := http.FileServer(http.FS(sub))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		fileServer.ServeHTTP(w, r)
	})
}

func (s *Server) basicAuthEnabled() bool {
	cfg := s.config()
	if cfg == nil || cfg.BasicAuth == nil {
		return false
	}
	// Treat empty credentials as disabled.
	return cfg.BasicAuth.Username != "" && cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := s.config().BasicAuth
		u, p, ok := r.BasicAuth()
		if auth == nil || !ok || !secureCompare(u, auth.Username) || !secureCompare(p, auth.Password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="homecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogMiddleware logs one line per request with method, path, status
// and duration.
func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		appLog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// StartServer runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func StartServer(ctx context.Context, s *Server) error {
	listen := s.config().Listen
	srv := &http.Server{
		Addr:    listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+listen, "debug", s.debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// loadFromICS is the default event loader: fetch configured sources, parse,
// and expand into the display timezone.
func (s *Server) loadFromICS(ctx context.Context, rangeStart, rangeEnd time.Time, loc *time.Location) ([]model.Event, []string, error) {
	cfg := s.config()

	sources := make([]ics.Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		if src.URL == "" {
			continue
		}
		id := src.ID
		if id == "" {
			if src.Name != "" {
				id = src.Name
			} else {
				id = src.URL
			}
		}
		sources = append(sources, ics.Source{
			ID:        id,
			URL:       src.URL,
			Color:     src.Color,
			Owner:     src.Owner,
			Household: src.Household,
		})
	}
	if len(sources) == 0 {
		return nil, nil, nil
	}

	fetcher := ics.NewFetcher(filepath.Join(s.dataDir(), "ics-cache"))
	fetchResults, fetchErrs := fetcher.FetchAll(ctx, sources)
	if len(fetchErrs) > 0 {
		appLog.Error("one or more ICS fetches failed", errorsAggregate(fetchErrs), "error_count", len(fetchErrs))
	}

	parsed := make([]ics.ParsedEvent, 0)
	for _, res := range fetchResults {
		events, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("parse failed for source", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	result, err := ics.Expand(parsed, ics.ExpandConfig{
		DisplayLocation: loc,
		RangeStart:      rangeStart,
		RangeEnd:        rangeEnd,
	})
	if err != nil {
		return nil, nil, err
	}
	return result.Events, result.TruncatedUIDs, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

func errorsAggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	var b strings.Builder
	for i, e := range errs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Error())
	}
	return errors.New(b.String())
}
