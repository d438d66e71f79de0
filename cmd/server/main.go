package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"evdash/internal/api"
	"evdash/internal/config"
	"evdash/internal/engine"
	"evdash/internal/logging"
	"evdash/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.New(os.Stderr, cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The API serves empty "loading" views until the first load publishes.
	store := engine.NewStore(engine.WithObserver(metrics.ObserveDataset))
	loader := engine.NewLoader(logger, cfg.Dataset.Timeout)

	t0 := time.Now()
	logger.Info().Str("source", cfg.Dataset.Source).Msg("loading dataset in background")
	loaded := store.LoadAsync(ctx, loader, cfg.Dataset.Source)
	go func() {
		<-loaded
		ds := store.Snapshot()
		logger.Info().
			Str("state", string(ds.State())).
			Int("records", ds.Len()).
			Dur("took", time.Since(t0)).
			Msg("initial dataset load finished")
	}()

	e := api.NewServer(api.NewHandler(store, loader, cfg, logger), logger)

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("server ready")
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
