package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jpalmerr/livecheck/internal/store"
)

const (
	// sseWriteTimeout bounds one event write; keep it <= shutdownTimeout.
	sseWriteTimeout = 5 * time.Second

	shutdownTimeout = 5 * time.Second

	defaultTitle = "livecheck"

	// replaced with the escaped page title
	titlePlaceholder = "{{.Title}}"
)

// Server handles HTTP requests for the status page, API and metrics.
//
// Routes:
//   - GET /: the embedded status page
//   - GET /api/status: all current entries as JSON
//   - GET /api/sse: Server-Sent Events stream of entry updates
//   - GET /metrics: Prometheus exposition of the run's collectors
type Server struct {
	store    store.Store
	addr     string
	assets   fs.FS
	title    string
	gatherer prometheus.Gatherer
	logger   *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	boundAddr  string
}

// NewServer creates a [Server] for st that will listen on addr, for example
// ":8080" or "127.0.0.1:0". A nil assets omits the status page and a nil
// gatherer omits /metrics; an empty title becomes "livecheck".
// Nothing is served until [Server.Start].
func NewServer(st store.Store, addr string, assets fs.FS, title string, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	return &Server{
		store:    st,
		addr:     addr,
		assets:   assets,
		title:    title,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Handler returns the router serving every route.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/sse", s.handleSSE)
	})

	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	if s.assets != nil {
		r.Get("/", s.handleDashboard)
	}

	return r
}

// Start binds the listen address and serves in the background until ctx
// is done, then shuts down within shutdownTimeout. A bind failure is
// returned directly.
func (s *Server) Start(ctx context.Context) error {
	// listen first so a bad address fails synchronously
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind to %s: %w", s.addr, err)
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts end with ctx, which stops SSE handlers on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	s.mu.Lock()
	s.httpServer = httpServer
	s.boundAddr = ln.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listen address, or "" before [Server.Start].
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

// handleDashboard serves the status page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Status page not found", http.StatusInternalServerError)
		return
	}

	title := s.title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write status page", "error", err)
	}
}

// handleStatus returns every entry as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	if err := json.NewEncoder(w).Encode(s.store.Snapshot()); err != nil {
		s.logger.Error("failed to encode status response", "error", err)
	}
}

// handleSSE streams entry updates via Server-Sent Events.
//
// Every write carries a deadline so a slow or vanished client cannot block
// the handler past shutdown.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}

		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// subscribe before the initial snapshot so no update is lost in between
	ch := s.store.Subscribe()
	defer s.store.Unsubscribe(ch)

	for _, entry := range s.store.Snapshot() {
		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case entry, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(entry)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}

		case <-r.Context().Done():
			// fires on client disconnect and on server shutdown
			return
		}
	}
}
