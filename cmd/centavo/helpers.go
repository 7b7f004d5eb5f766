package main

import (
	"context"
	"fmt"

	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/config"
	"github.com/centavohq/centavo/internal/engine"
	"github.com/centavohq/centavo/internal/ledger"
	"github.com/centavohq/centavo/internal/scheduler"
	"github.com/centavohq/centavo/internal/service"
	"github.com/centavohq/centavo/internal/storage"
)

// initStorage opens the database at the configured path and brings the
// schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (service.Storage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// services bundles the application services built over one storage instance.
type services struct {
	storage   service.Storage
	ledger    *ledger.Ledger
	evaluator *engine.Evaluator
	scheduler *scheduler.Scheduler
}

func buildServices(store service.Storage) *services {
	clock := common.RealClock{}
	led := ledger.New(store, clock)
	return &services{
		storage:   store,
		ledger:    led,
		evaluator: engine.NewEvaluator(store, clock),
		scheduler: scheduler.NewScheduler(store, led, clock),
	}
}
