package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flight-position-gateway/internal/api"
	"flight-position-gateway/internal/config"
	"flight-position-gateway/internal/fetcher"
	"flight-position-gateway/internal/metrics"
	"flight-position-gateway/pkg/logger"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	m := metrics.NewMetrics()

	boundary := cfg.BoundingBox()
	log.Info().Str("boundary", boundary.String()).Msg("Loaded bounding box")

	client := fetcher.NewOpenSkyClient(cfg.OpenSky.BaseURL, boundary, cfg.OpenSky.RequestTimeout, log, m)
	log.Info().Str("url", client.StatesURL()).Msg("OpenSky states query")

	handler := api.NewServer(log, m, client, cfg.Server.CORSAllowedOrigins).Routes()
	server := NewServer(cfg.Addr(), handler, cfg.Server, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Server failed")
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("Server stopped")
}
