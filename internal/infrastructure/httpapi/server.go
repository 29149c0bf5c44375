// Package httpapi serves the scoring, enhancement and gate operations over
// HTTP.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/specgate/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/specgate/pkg/application"
)

// Server is the HTTP server for the specgate API.
type Server struct {
	enhance *application.EnhancementService
	gate    *application.GateService
	backups *application.BackupService
	history *application.HistoryService
	events  http.Handler
	logger  *zap.Logger
	timeout time.Duration
}

// NewServer creates a server over the given services.
func NewServer(services *wiring.AppServices, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		enhance: services.Enhance,
		gate:    services.Gate,
		backups: services.Backups,
		history: services.History,
		logger:  logger,
		timeout: 5 * time.Minute,
	}
	if services.Events != nil {
		s.events = services.Events
	}
	return s
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	if s.events != nil {
		// Streams stay open; no request timeout.
		r.Get("/api/v1/events", s.events.ServeHTTP)
	}
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Post("/api/v1/score", s.handleScore)
		r.Post("/api/v1/enhance", s.handleEnhance)
		r.Post("/api/v1/gate", s.handleGate)
		r.Get("/api/v1/backups", s.handleListBackups)
		r.Post("/api/v1/backups/{id}/restore", s.handleRestoreBackup)
		r.Delete("/api/v1/backups/{id}", s.handleDiscardBackup)
		r.Get("/api/v1/history", s.handleHistory)
	})
	return r
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.logger.Info("Starting server", zap.String("addr", ln.Addr().String()))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
