package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/centavohq/centavo/internal/api"
	"github.com/centavohq/centavo/internal/common"
	"github.com/centavohq/centavo/internal/config"
	"github.com/centavohq/centavo/internal/scheduler"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background due-sweep",
		Long: `Start the HTTP server and a background ticker that periodically
materializes due recurring transactions into the ledger.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireAuth(); err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.ServerAddr = addr
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	svc := buildServices(store)
	server := api.NewServer(svc.storage, svc.ledger, svc.evaluator, svc.scheduler,
		common.RealClock{}, api.AuthOptions{
			JWTSecret: cfg.JWTSecret,
			APIKey:    cfg.APIKey,
		})

	httpServer := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Catch up on anything that came due while the server was down, then
	// keep sweeping on the configured interval.
	go func() {
		if _, err := svc.scheduler.ProcessDue(ctx); err != nil && !errors.Is(err, common.ErrSweepInProgress) {
			slog.Error("Startup sweep failed", "error", err)
		}
		scheduler.RunSweepLoop(ctx, svc.scheduler, cfg.SweepInterval)
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting",
		"addr", cfg.ServerAddr,
		"sweep_interval", cfg.SweepInterval,
		"database", cfg.DatabasePath)

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}

	slog.Info("Server stopped")
	return nil
}
