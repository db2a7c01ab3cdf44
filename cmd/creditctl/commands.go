package main

import (
	"context"
	"credit-approval/internal/config"
	"credit-approval/internal/dataload"
	"credit-approval/internal/infrastructure/database/postgres"
	"credit-approval/internal/infrastructure/logging"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

const defaultLoadTimeout = 10 * time.Minute

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "creditctl",
		Short:         "Operational tooling for the credit approval service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", ".", "Directory containing config.yml")

	rootCmd.AddCommand(migrateCmd(), loadCmd())
	return rootCmd
}

func loadSettings(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, logging.NewLogger(cfg.Logger), nil
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(migrateUpCmd(), migrateDownCmd(), migrateStatusCmd())
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*postgres.Migrator) error) error {
	cfg, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	mg, err := postgres.NewMigrator(cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer mg.Close()
	return fn(mg)
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(mg *postgres.Migrator) error {
				if err := mg.Up(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
				return nil
			})
		},
	}
}

func migrateDownCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps <= 0 {
				return errors.New("--steps must be positive")
			}
			return withMigrator(cmd, func(mg *postgres.Migrator) error {
				if err := mg.Down(steps); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations rolled back.")
				return nil
			})
		},
	}
	cmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	return cmd
}

func migrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, func(mg *postgres.Migrator) error {
				status, err := mg.Status()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatStatus(status))
				return nil
			})
		},
	}
}

func formatStatus(s postgres.MigrationStatus) string {
	if !s.Applied {
		return "No migrations applied."
	}
	state := "clean"
	if s.Dirty {
		state = "dirty"
	}
	return fmt.Sprintf("Version %d (%s)", s.Version, state)
}

func loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import customers and loans from CSV or Excel workbooks",
		Long: "Upserts customer and loan rows keyed by their ids inside one transaction. " +
			"Either file may be omitted. Nothing is written when any row fails to parse.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			customersPath, _ := cmd.Flags().GetString("customers")
			loansPath, _ := cmd.Flags().GetString("loans")
			if customersPath == "" && loansPath == "" {
				return errors.New("at least one of --customers or --loans is required")
			}
			timeout, _ := cmd.Flags().GetDuration("timeout")

			cfg, logger, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			loader := dataload.NewLoader(postgres.NewImportRepository(pool, logger), logger)
			result, err := loader.Load(ctx, customersPath, loansPath)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d customers and %d loans.\n", result.Customers, result.Loans)
			return nil
		},
	}
	cmd.Flags().String("customers", "", "Path to the customers .csv or .xlsx file")
	cmd.Flags().String("loans", "", "Path to the loans .csv or .xlsx file")
	cmd.Flags().Duration("timeout", defaultLoadTimeout, "Upper bound for the whole import")
	return cmd
}
