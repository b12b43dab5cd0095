package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mysupertc/MySuperTC-sub001/config"
	"github.com/mysupertc/MySuperTC-sub001/internal/database"
	"github.com/mysupertc/MySuperTC-sub001/pkg/logger"
)

// connectFunc opens the project database; tests swap it for sqlmock
type connectFunc func(ctx context.Context) (*sql.DB, error)

func connectFromConfig(envFile string) connectFunc {
	return func(ctx context.Context) (*sql.DB, error) {
		cfg, err := config.LoadWithOptions(config.LoadOptions{EnvFile: envFile, DatabaseOnly: true})
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		return database.Connect(ctx, &cfg.Database)
	}
}

func newRootCmd(connect connectFunc, log logger.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "migrate",
		Short:         "Create the MySuperTC schema and seed default templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		upCmd(connect, log),
		seedCmd(connect, log),
		resetCmd(connect, log),
	)

	return rootCmd
}

func withDB(cmd *cobra.Command, connect connectFunc, fn func(ctx context.Context, db *sql.DB) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, db)
}

func upCmd(connect connectFunc, log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Create tables, indexes and row level security policies",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetBool("seed")

			return withDB(cmd, connect, func(ctx context.Context, db *sql.DB) error {
				if err := database.InitializeDatabase(ctx, db); err != nil {
					return err
				}
				log.Info("Schema is up to date")

				if !seed {
					return nil
				}
				return runSeed(ctx, db, log)
			})
		},
	}

	cmd.Flags().Bool("seed", false, "Seed default templates after creating the schema")

	return cmd
}

func seedCmd(connect connectFunc, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default disclosure, task and email templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd, connect, func(ctx context.Context, db *sql.DB) error {
				return runSeed(ctx, db, log)
			})
		},
	}
}

func runSeed(ctx context.Context, db *sql.DB, log logger.Logger) error {
	result, err := database.SeedTemplates(ctx, db)
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"disclosures": result.Disclosures,
		"tasks":       result.Tasks,
		"emails":      result.Emails,
	}).Info("Default templates seeded")
	return nil
}

func resetCmd(connect connectFunc, log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop every application table",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("reset drops all data; pass --force to confirm")
			}

			return withDB(cmd, connect, func(ctx context.Context, db *sql.DB) error {
				if err := database.CleanDatabase(ctx, db); err != nil {
					return err
				}
				log.Warn("All application tables dropped")
				return nil
			})
		},
	}

	cmd.Flags().Bool("force", false, "Confirm dropping all tables")

	return cmd
}

func main() {
	appLogger := logger.NewLoggerWithLevel(os.Getenv("LOG_LEVEL"))

	rootCmd := newRootCmd(connectFromConfig(".env"), appLogger)
	if err := rootCmd.Execute(); err != nil {
		appLogger.WithField("error", err.Error()).Error("Migration failed")
		os.Exit(1)
	}
}
