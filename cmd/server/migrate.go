package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/ai-health-analyze/internal/config"
	"github.com/iliyamo/ai-health-analyze/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the account and history tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.DatabaseEnabled() {
				return errors.New("DB_HOST is not set")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			db, err := database.Open(ctx, dbOptions(cfg))
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := database.Migrate(ctx, db)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d schema statements\n", n)
			return nil
		},
	}
}
