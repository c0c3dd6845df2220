// Package api provides the HTTP REST API server for newsheat.
//
// It exposes endpoints for ticker resolution, heat scans, the source
// registry and credential status, plus a WebSocket stream of scan progress.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/seenimoa/newsheat/internal/agent"
	"github.com/seenimoa/newsheat/internal/analysis/sentiment"
	"github.com/seenimoa/newsheat/internal/config"
	"github.com/seenimoa/newsheat/internal/datasource"
	"github.com/seenimoa/newsheat/internal/infra"
	"github.com/seenimoa/newsheat/internal/resolver"
	"github.com/seenimoa/newsheat/pkg/models"
	"github.com/seenimoa/newsheat/pkg/utils"
)

// SessionHeader carries the client session id. Requests without one get a
// fresh id, echoed back in the response.
const SessionHeader = "X-Session-ID"

// WebSocket event types.
const (
	EventScanStarted  = "scan_started"
	EventSourceDone   = "source_done"
	EventScanComplete = "scan_complete"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	orch     *agent.Orchestrator
	resolver *resolver.Resolver
	sessions *infra.Cache
	wsHub    *WSHub
	logger   *slog.Logger
	version  string

	// stop ends the hub loop and the session janitor.
	stop context.CancelFunc
}

// Deps are the pipeline components the server fronts.
type Deps struct {
	Orchestrator *agent.Orchestrator
	Resolver     *resolver.Resolver
	Logger       *slog.Logger
	Version      string
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Orchestrator == nil || deps.Resolver == nil {
		return nil, errors.New("api: orchestrator and resolver are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	srv := &Server{
		cfg:      cfg,
		orch:     deps.Orchestrator,
		resolver: deps.Resolver,
		sessions: infra.NewCache(cfg.Session.TTL),
		wsHub:    NewWSHub(deps.Logger),
		logger:   deps.Logger,
		version:  deps.Version,
	}
	srv.router = srv.buildRouter()

	ctx, stop := context.WithCancel(context.Background())
	srv.stop = stop
	go srv.wsHub.Run(ctx)
	srv.sessions.StartJanitor(ctx, time.Minute)
	return srv, nil
}

// Close stops the WebSocket hub, disconnecting its clients, and the
// session janitor.
func (s *Server) Close() {
	s.stop()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer s.Close()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", SessionHeader},
		ExposedHeaders:   []string{"X-Request-ID", SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/resolve", s.handleResolve)
		r.Post("/scan", s.handleScan)
		r.Get("/sources", s.handleSources)
		r.Get("/config/keys", s.handleKeys)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ScanRequest is the body for POST /api/v1/scan.
type ScanRequest struct {
	Query string `json:"query"`
}

// ScanResponse wraps a heat report with the id used in its WebSocket events.
type ScanResponse struct {
	ScanID string             `json:"scan_id"`
	Report *models.HeatReport `json:"report"`
}

// SourceDoneEvent is the payload of a source_done event.
type SourceDoneEvent struct {
	ScanID    string `json:"scan_id"`
	Source    string `json:"source"`
	Records   int    `json:"records"`
	Failed    bool   `json:"failed,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":        "ok",
			"version":       s.version,
			"market_status": utils.MarketStatus(),
			"time_tpe":      utils.FormatDateTimeTPE(utils.NowTPE()),
			"model_enabled": s.orch.ModelEnabled(),
			"model":         s.orch.ModelName(),
			"ws_clients":    s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	sessID, sess := s.session(w, r)
	id, err := sess.Resolve(r.Context(), q)
	if err != nil {
		s.sessions.Invalidate(sessID)
		s.writeResolveError(w, q, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: id})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	sessID, sess := s.session(w, r)
	id, err := sess.Resolve(r.Context(), req.Query)
	if err != nil {
		s.sessions.Invalidate(sessID)
		s.writeResolveError(w, req.Query, err)
		return
	}

	scanID := uuid.NewString()
	s.wsHub.Broadcast(WSMessage{
		Type: EventScanStarted,
		Data: map[string]any{
			"scan_id":  scanID,
			"identity": id,
			"sources":  datasource.SourceNames(s.orch.Scanner().Adapters()),
		},
	})

	orch := s.orch.WithObserver(func(res models.SourceResult) {
		s.wsHub.Broadcast(WSMessage{
			Type: EventSourceDone,
			Data: SourceDoneEvent{
				ScanID:    scanID,
				Source:    res.Source,
				Records:   len(res.Records),
				Failed:    res.Failed,
				ElapsedMS: res.Elapsed.Milliseconds(),
			},
		})
	})
	report := orch.Run(r.Context(), id)

	s.wsHub.Broadcast(WSMessage{
		Type: EventScanComplete,
		Data: map[string]any{
			"scan_id":  scanID,
			"code":     id.Code,
			"score":    report.Aggregate.OverallScore,
			"strategy": report.Aggregate.Strategy,
			"level":    report.Level,
			"signals":  sentiment.LimitSignals(report.Aggregate.Signals, s.cfg.Scan.SignalLimit),
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ScanResponse{ScanID: scanID, Report: report},
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    datasource.Describe(s.orch.Scanner().Adapters()),
	})
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// ============================================================
// Helpers
// ============================================================

// session returns the id and resolver session for the request, creating
// one when the client sent no id or an expired one. A session whose last
// resolution failed is dropped, so the next request starts clean.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *resolver.Session) {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" {
		id = uuid.NewString()
	}
	w.Header().Set(SessionHeader, id)
	sess := s.sessions.GetOrCreate(id, func() any {
		return resolver.NewSession(s.resolver)
	}).(*resolver.Session)
	return id, sess
}

func (s *Server) writeResolveError(w http.ResponseWriter, query string, err error) {
	if errors.Is(err, resolver.ErrTickerNotFound) {
		writeError(w, http.StatusNotFound, resolver.ErrTickerNotFound.Error())
		return
	}
	s.logger.Error("resolve failed", "query", query, "error", err)
	writeError(w, http.StatusInternalServerError, "resolve failed")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
