package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spec-kit/incident-service/internal/config"
	"github.com/spec-kit/incident-service/internal/observability"
	"github.com/spec-kit/incident-service/internal/persistence"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply SQL migrations to the postgres store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logger, err := observability.NewLogger(cfg.Logger, cfg.App)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		defer logger.Sync() //nolint:errcheck

		dir := cfg.Postgres.MigrationsDir
		if migrationsDir != "" {
			dir = migrationsDir
		}

		ctx := contextOrBackground(cmd)
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pg.Close()

		return persistence.RunMigrations(ctx, pg.PoolHandle(), dir, logger)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsDir, "dir", "", "migrations directory (defaults to POSTGRES_MIGRATIONS_DIR)")
	rootCmd.AddCommand(migrateCmd)
}
