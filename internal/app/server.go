package app

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mandalnilabja/streamrelay/internal/config"
)

// ShutdownTimeout bounds how long in-flight streams may run after a
// shutdown signal.
const ShutdownTimeout = 10 * time.Second

// Server wraps the HTTP server with its configuration
type Server struct {
	httpServer      *http.Server
	config          *config.Config
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

// NewServer creates a new configured HTTP server instance
func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Server {
	srv := &http.Server{
		Addr:              cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		// IMPORTANT: WriteTimeout can kill long streams!
		// For LLM streaming responses, we need generous timeouts
		ReadTimeout:  300 * time.Second,
		WriteTimeout: 300 * time.Second,
	}

	return &Server{
		httpServer:      srv,
		config:          cfg,
		logger:          logger,
		shutdownTimeout: ShutdownTimeout,
	}
}

// Run listens on the configured port and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ServerPort)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down.
// Streams still open when the shutdown timeout expires are cut off; that
// still counts as a clean shutdown and Serve returns nil.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("streamrelay server starting", "addr", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	if errors.Is(err, context.DeadlineExceeded) {
		s.logger.Warn("shutdown timeout reached, closing open connections", "timeout", s.shutdownTimeout)
		if cerr := s.httpServer.Close(); cerr != nil {
			s.logger.Debug("close after shutdown timeout", "error", cerr)
		}
		return nil
	}
	return err
}
