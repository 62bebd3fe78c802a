package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/wonny/magicformula/pkg/config"
	"github.com/wonny/magicformula/pkg/logger"
)

const (
	readTimeout  = 15 * time.Second
	idleTimeout  = 60 * time.Second
	shutdownWait = 30 * time.Second

	// minWriteTimeout also covers the narrator call on /api/ai-stock-recommendations
	minWriteTimeout = 90 * time.Second
	writeHeadroom   = 60 * time.Second
)

// Server serves the screener API until its context ends
// ⭐ SSOT: HTTP server timeouts live in this file only
type Server struct {
	http   *http.Server
	logger *logger.Logger
}

// New builds a server on cfg.Port
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		http: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: WriteTimeout(cfg.Screener),
			IdleTimeout:  idleTimeout,
		},
		logger: log.WithModule("server"),
	}
}

// WriteTimeout grows with the paced fetch window of one screen:
// the first fetch is immediate, each later one waits FetchDelay.
func WriteTimeout(sc config.ScreenerConfig) time.Duration {
	pacing := time.Duration(0)
	if sc.MaxSymbols > 1 && sc.FetchDelay > 0 {
		pacing = time.Duration(sc.MaxSymbols-1) * sc.FetchDelay
	}
	if t := pacing + writeHeadroom; t > minWriteTimeout {
		return t
	}
	return minWriteTimeout
}

// Run listens until ctx is done, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.WithFields(map[string]interface{}{
		"addr":          ln.Addr().String(),
		"write_timeout": s.http.WriteTimeout.String(),
	}).Info("API server listening")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.http.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()

	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	<-serveErr

	s.logger.Info("API server stopped")
	return nil
}
