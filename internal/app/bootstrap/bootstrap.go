package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	voteengine "votable/contexts/engagement/vote-engine"
	"votable/contexts/engagement/vote-engine/adapters/memory"
	mongoadapter "votable/contexts/engagement/vote-engine/adapters/mongo"
	postgresadapter "votable/contexts/engagement/vote-engine/adapters/postgres"
	"votable/contexts/engagement/vote-engine/application/workers"
	"votable/contexts/engagement/vote-engine/domain/entities"
	"votable/contexts/engagement/vote-engine/domain/services"
	"votable/contexts/engagement/vote-engine/ports"
	"votable/internal/platform/config"
	"votable/internal/platform/db"
	"votable/internal/platform/httpserver"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server    *httpserver.Server
	refresher *RatioRefreshLoop
	closers   []func() error
	logger    *slog.Logger
}

// RatioRefreshLoop drives the ratio refresher on a ticker until ctx ends.
type RatioRefreshLoop struct {
	refresher    workers.RatioRefresher
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI(ctx context.Context) (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	kinds, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	app := &APIApp{logger: logger}
	store, idGen, err := app.buildStore(ctx, cfg, logger)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	deps := voteengine.Dependencies{
		Kinds:  kinds,
		Store:  store,
		IDGen:  idGen,
		Logger: logger,
	}
	if cfg.EnableRatioRefresh {
		deps.Ratios = memory.NewStore()
	}
	module := voteengine.NewModule(deps)
	if cfg.EnableRatioRefresh {
		app.refresher = &RatioRefreshLoop{
			refresher:    module.RatioRefresher,
			pollInterval: cfg.RatioRefreshInterval,
			logger:       logger,
		}
	}

	app.server = httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort))
	return app, nil
}

// BuildRegistry registers every configured votee kind with the configured
// weights.
func BuildRegistry(cfg config.Config) (*services.Registry, error) {
	weights := entities.Weights{Up: cfg.UpWeight, Down: cfg.DownWeight}
	registry, err := services.NewRegistry()
	if err != nil {
		return nil, err
	}
	for _, kind := range cfg.VoteeKinds {
		var topology services.Topology = services.TopLevel{}
		if kind.Relation != "" {
			topology = services.Embedded{Relation: kind.Relation}
		}
		if err := registry.Register(services.Kind{
			Name:       kind.Name,
			Collection: kind.Collection,
			Topology:   topology,
			Weights:    weights,
			Fields:     kind.Fields,
		}); err != nil {
			return nil, fmt.Errorf("register votee kind %q: %w", kind.Name, err)
		}
	}
	return registry, nil
}

func (a *APIApp) buildStore(
	ctx context.Context,
	cfg config.Config,
	logger *slog.Logger,
) (ports.DocumentStore, ports.IDGenerator, error) {
	switch cfg.VoteStore {
	case config.StoreMongo:
		if strings.TrimSpace(cfg.MongoURI) == "" {
			return nil, nil, errors.New("MONGO_URI is required")
		}
		mg, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, mg.Close)
		store := mongoadapter.NewStore(mg.Database, mongoadapter.Codec{ObjectIDs: cfg.MongoObjectIDs}, logger)
		return store, mongoadapter.ObjectIDGenerator{}, nil
	case config.StorePostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, nil, errors.New("POSTGRES_DSN is required")
		}
		pg, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pg.Close)
		repo := postgresadapter.NewRepository(pg.Gorm, logger)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return repo, postgresadapter.UUIDGenerator{}, nil
	default:
		store := memory.NewStore()
		return store, store, nil
	}
}

func (a *APIApp) Run(ctx context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
			"ratio_refresh", a.refresher != nil,
		)
	}

	errs := make(chan error, 2)
	go func() { errs <- a.server.Start() }()
	if a.refresher != nil {
		go func() { errs <- a.refresher.Run(ctx) }()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	case err := <-errs:
		return err
	}
}

func (a *APIApp) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (l *RatioRefreshLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	l.logger.Info("ratio refresh loop started",
		"event", "bootstrap_ratio_refresh_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", l.pollInterval.String(),
	)

	for {
		if err := l.refresher.RunOnce(ctx); err != nil {
			l.logger.Error("ratio refresh cycle failed",
				"event", "bootstrap_ratio_refresh_failed",
				"module", "internal/app/bootstrap",
				"layer", "platform",
				"error", err.Error(),
			)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
