package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/roma2023/SketchAI/internal/api"
	"github.com/roma2023/SketchAI/internal/cache"
	"github.com/roma2023/SketchAI/internal/config"
	"github.com/roma2023/SketchAI/internal/stability"
	"github.com/roma2023/SketchAI/internal/viewer"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Str("path", config.Default().APIKeyPath).Msg("Failed to load API key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	imageCache := cache.NewImageCache(cfg.ResultTTL)
	imageCache.StartJanitor(ctx, cfg.CleanupInterval)

	upstream := stability.NewClient(cfg.UpstreamURL, cfg.APIKey, nil)
	sessionConverter := viewer.NewClient(cfg.ProxyURL, cfg.Defaults.OutputFormat, nil)
	router := api.NewRouter(cfg, upstream, imageCache, sessionConverter)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("Server running")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
