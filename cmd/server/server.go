package main

import (
	"context"
	"errors"
	"net/http"

	"flight-position-gateway/internal/config"
	"flight-position-gateway/pkg/logger"
)

type Server struct {
	srv    *http.Server
	logger *logger.Logger
}

func NewServer(addr string, handler http.Handler, cfg config.ServerConfig, log *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: log,
	}
}

// Start blocks until the server stops. A graceful Shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("Server running")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
