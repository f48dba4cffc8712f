package app

import (
	"context"
	"errors"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/diagramhub/internal/config"
	"github.com/vovakirdan/diagramhub/internal/core"
	"github.com/vovakirdan/diagramhub/internal/metrics"
	transporthttp "github.com/vovakirdan/diagramhub/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	registry        *core.Registry
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) *App {
	var (
		collector *metrics.Collector
		obs       core.Observer
	)
	if cfg.MetricsEnabled {
		collector = metrics.New()
		obs = collector
	}

	hub := core.NewHub(obs, logger)
	registry := core.NewRegistry(hub, core.RegistryConfig{
		IdleTTL:       cfg.RoomIdleTTL,
		SweepInterval: cfg.RoomSweepInterval,
		MaxRooms:      cfg.MaxRooms,
	}, obs, logger)

	server := transporthttp.NewServer(registry, collector, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		registry:        registry,
		log:             logger,
	}
}

// Run starts the HTTP server and the room sweeper, and blocks until context
// cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.registry.Run(gctx)
		return nil
	})

	g.Go(func() error {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	})

	return g.Wait()
}
