package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/centavohq/centavo/internal/api"
	"github.com/centavohq/centavo/internal/config"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for API access",
		Long: `Mint an HS256 bearer token signed with the configured JWT secret.
Intended for development and for machine integrations that cannot use
the X-API-Key header.`,
		RunE: runToken,
	}

	cmd.Flags().String("subject", "dev", "token subject claim")
	cmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireAuth(); err != nil {
		return err
	}

	subject, _ := cmd.Flags().GetString("subject")
	ttl, _ := cmd.Flags().GetDuration("ttl")

	token, err := api.MintToken(cfg.JWTSecret, subject, ttl)
	if err != nil {
		return fmt.Errorf("failed to mint token: %w", err)
	}

	fmt.Println(token)
	return nil
}
