package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"reelmux/internal/logging"
)

type apiServer struct {
	bind            string
	shutdownTimeout time.Duration
	handler         http.Handler
	logger          *slog.Logger

	listener     net.Listener
	server       *http.Server
	shutdownOnce *sync.Once
}

// newAPIServer returns nil when no bind address is configured. No write
// timeout is set because merge responses stream for as long as the download
// and mux take.
func newAPIServer(bind string, handler http.Handler, shutdownTimeout time.Duration, logger *slog.Logger) *apiServer {
	bind = strings.TrimSpace(bind)
	if bind == "" || handler == nil {
		return nil
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 5 * time.Second
	}
	return &apiServer{
		bind:            bind,
		shutdownTimeout: shutdownTimeout,
		handler:         handler,
		logger:          logger,
	}
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.shutdownOnce = &sync.Once{}
	server, once := s.server, s.shutdownOnce

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.shutdown(server, once)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		s.shutdown(s.server, s.shutdownOnce)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// shutdown drains in-flight requests, at most once per started server.
func (s *apiServer) shutdown(server *http.Server, once *sync.Once) {
	once.Do(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log().Warn("api server shutdown incomplete", logging.Error(err))
		}
	})
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) log() *slog.Logger {
	if s == nil || s.logger == nil {
		return logging.NewNop()
	}
	return s.logger
}
