// Package server exposes the poller's health and progress over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/token-enricher/internal/poller"
)

const shutdownTimeout = 5 * time.Second

// StatusSource reports poller progress.
type StatusSource interface {
	State() poller.State
	Stats() poller.Stats
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	State        string    `json:"state"`
	Ticks        int64     `json:"ticks"`
	StartedAt    time.Time `json:"started_at"`
	LastTickAt   time.Time `json:"last_tick_at,omitzero"`
	LastDuration string    `json:"last_duration"`
	Uptime       string    `json:"uptime"`
}

// Server is the status HTTP server.
type Server struct {
	srv *http.Server
}

// New creates a Server listening on port.
func New(port int, status StatusSource, allowedOrigins []string) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           Handler(status, allowedOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler builds the router.
func Handler(status StatusSource, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		st := status.Stats()
		resp := StatusResponse{
			State:        status.State().String(),
			Ticks:        st.Ticks,
			StartedAt:    st.StartedAt,
			LastTickAt:   st.LastTickAt,
			LastDuration: st.LastDuration.String(),
		}
		if !st.StartedAt.IsZero() {
			resp.Uptime = time.Since(st.StartedAt).Truncate(time.Second).String()
		}
		writeJSON(w, http.StatusOK, resp)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server: shutdown", zap.Error(err))
		}
	}()

	zap.L().Info("starting status server", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return eris.Wrap(err, "server: listen")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}
