package main

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"bookql/internal/config"
	"bookql/internal/platform/database"
)

type options struct {
	dsn string
	dir string
}

func main() {
	config.LoadEnvFiles()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply and inspect books schema migrations",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.dsn, "dsn", databaseDSN(), "Postgres DSN (DB_DSN)")
	root.PersistentFlags().StringVar(&opts.dir, "dir", migrationsDir(), "migrations directory (MIGRATIONS_DIR)")

	root.AddCommand(
		dbCommand(opts, "up", "Apply all pending migrations", func(db *sql.DB, dir string) error {
			return goose.Up(db, dir)
		}),
		dbCommand(opts, "down", "Roll back the latest migration", func(db *sql.DB, dir string) error {
			return goose.Down(db, dir)
		}),
		dbCommand(opts, "status", "Print applied and pending migrations", func(db *sql.DB, dir string) error {
			return goose.Status(db, dir)
		}),
		createCommand(opts),
	)
	return root
}

func dbCommand(opts *options, use, short string, fn func(db *sql.DB, dir string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := goose.SetDialect("postgres"); err != nil {
				return err
			}

			pool, err := database.Open(cmd.Context(), opts.dsn, 5*time.Second)
			if err != nil {
				return err
			}
			defer pool.Close()

			db := stdlib.OpenDBFromPool(pool)
			defer db.Close()

			if err := fn(db, opts.dir); err != nil {
				return fmt.Errorf("migrate %s: %w", use, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", use)
			return nil
		},
	}
}

func createCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a new sequential SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goose.SetSequential(true)
			if err := goose.Create(nil, opts.dir, args[0], "sql"); err != nil {
				return fmt.Errorf("create migration: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migration created: %s\n", args[0])
			return nil
		},
	}
}
