package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/boddenberg/office-admin-go/internal/infra/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply or revert the embedded SQL migrations.

The Supabase backend uses the same schema; point --database-url at the
Supabase Postgres instance to migrate it.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: withMigrator(func(ctx context.Context, m *postgres.Migrator, logger *zap.Logger) error {
			if err := m.Up(ctx); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migration",
		RunE: withMigrator(func(ctx context.Context, m *postgres.Migrator, logger *zap.Logger) error {
			if err := m.Down(ctx); err != nil {
				return err
			}
			logger.Info("migration reverted")
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied and pending migrations",
		RunE: withMigrator(func(ctx context.Context, m *postgres.Migrator, _ *zap.Logger) error {
			st, err := m.Status(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("current version: %d\n", st.CurrentVersion)
			fmt.Printf("total migrations: %d\n", st.TotalMigrations)
			fmt.Printf("pending: %v\n", st.PendingMigrations)
			return nil
		}),
	})
	return cmd
}

func withMigrator(fn func(ctx context.Context, m *postgres.Migrator, logger *zap.Logger) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL or --database-url is required")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()

		m, err := postgres.OpenMigrator(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer m.Close()
		return fn(ctx, m, logger)
	}
}
