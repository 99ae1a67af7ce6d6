package appcore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// AdminServer exposes read-only lifecycle introspection over HTTP. All
// handlers rely only on the any-goroutine surfaces of Application (State,
// HasFocus, WaitForLoad, GetObservers), so the server never touches the
// owning sequence.
type AdminServer struct {
	app    *Application
	logger Logger
	server *http.Server

	mu      sync.Mutex
	started bool
}

// NewAdminServer creates an introspection server listening on addr.
func NewAdminServer(app *Application, addr string, logger Logger) *AdminServer {
	if logger == nil {
		logger = noopLogger{}
	}

	s := &AdminServer{
		app:    app,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Get("/state", s.handleState)
	r.Get("/focus", s.handleFocus)
	r.Get("/observers", s.handleObservers)
	r.Get("/healthz", s.handleHealthz)
	r.Post("/load/wait", s.handleLoadWait)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start begins serving in a background goroutine.
func (s *AdminServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAdminAlreadyStarted
	}
	s.started = true

	go func() {
		s.logger.Info("Admin server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Admin server failed", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *AdminServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return ErrAdminNotStarted
	}
	s.started = false

	if err := s.server.Shutdown(ctx); err != nil {
		return err //nolint:wrapcheck
	}
	return nil
}

func (s *AdminServer) handleState(w http.ResponseWriter, r *http.Request) {
	state := s.app.State()
	s.writeJSON(w, map[string]interface{}{
		"state":    state.name(),
		"value":    int(state),
		"hasFocus": HasFocus(state),
	})
}

func (s *AdminServer) handleFocus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"hasFocus": s.app.HasFocus(),
	})
}

func (s *AdminServer) handleObservers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"observers": s.app.GetObservers(),
		"typed":     s.app.notifier.Len(),
	})
}

func (s *AdminServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
		s.logger.Error("Failed to write health response", "error", err)
	}
}

// handleLoadWait blocks the request until the load gate is signaled or the
// timeout from the timeout_ms query parameter (default 1000, capped at
// 30000) elapses.
func (s *AdminServer) handleLoadWait(w http.ResponseWriter, r *http.Request) {
	timeout := time.Second
	if raw := r.URL.Query().Get("timeout_ms"); raw != "" {
		ms, err := strconv.Atoi(raw)
		if err != nil || ms < 0 {
			http.Error(w, "invalid timeout_ms", http.StatusBadRequest)
			return
		}
		timeout = time.Duration(ms) * time.Millisecond
	}
	if timeout > 30*time.Second {
		timeout = 30 * time.Second
	}

	signaled := s.app.WaitForLoad(timeout)
	s.writeJSON(w, map[string]interface{}{
		"signaled": signaled,
	})
}

func (s *AdminServer) writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to write admin response", "error", err)
	}
}
