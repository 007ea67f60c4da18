package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/TheGoumble/secure-streaming/internal/relay"
	"github.com/TheGoumble/secure-streaming/pkg/config"
)

func init() {
	// Configure zerolog for human-friendly console output
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Parse()

	var cfg relay.Config
	if err := config.Load(&cfg, configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	cfg.Log.ConfigureZerolog()

	log.Info().Msg("Starting stream relay service")
	log.Info().
		Str("listen_address", cfg.Relay.ListenAddress).
		Int64("read_limit", cfg.Relay.ReadLimit).
		Dur("viewer_frame_interval", cfg.Relay.ViewerFrameInterval).
		Msg("Relay configuration")

	server := relay.NewServer(cfg.Relay)
	httpServer := &http.Server{
		Addr:    cfg.Relay.ListenAddress,
		Handler: server.Router(),
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	log.Info().Msgf("Health check: http://%s/health", cfg.Relay.ListenAddress)
	log.Info().Msgf("Metrics: http://%s/metrics", cfg.Relay.ListenAddress)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errChan:
		log.Fatal().Err(err).Msg("Relay server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}

	log.Info().Msg("Relay stopped")
}
