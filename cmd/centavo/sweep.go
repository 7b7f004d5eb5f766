package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/centavohq/centavo/internal/config"
)

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Materialize due recurring transactions once and exit",
		Long: `Run a single due-sweep pass: every active recurring schedule whose
next execution date has arrived is recorded in the ledger and advanced.
Intended for external cron when the serve command is not running.`,
		RunE: runSweep,
	}
}

func runSweep(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := buildServices(store)
	result, err := svc.scheduler.ProcessDue(ctx)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	slog.Info("Sweep complete",
		"processed", result.Processed,
		"failed", result.Failed)
	for _, sweepErr := range result.Errors {
		slog.Error("Schedule failed",
			"schedule_id", sweepErr.ScheduleID,
			"error", sweepErr.Err)
	}

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d due schedules failed", result.Failed, result.Processed+result.Failed)
	}
	return nil
}
