// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/postline/postline/internal/store"
)

// migrationRunner is the subset of *store.Migrator the migrate commands use.
type migrationRunner interface {
	Up() error
	Down() error
	Version() (uint, bool, error)
	Pending() ([]uint, error)
	Close() error
}

// newMigrator is replaced in tests.
var newMigrator = func(databaseURL string) (migrationRunner, error) {
	return store.NewMigrator(databaseURL) //nolint:wrapcheck // store errors carry their own code
}

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  `Apply, roll back or inspect the PostgreSQL schema migrations.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, runMigrateUp)
		},
	})

	var yes bool
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return oops.Code("CONFIRMATION_REQUIRED").Errorf("migrate down drops all tables; pass --yes to confirm")
			}
			return withMigrator(cmd, runMigrateDown)
		},
	}
	down.Flags().BoolVar(&yes, "yes", false, "confirm dropping all tables")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, runMigrateStatus)
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, run func(*cobra.Command, migrationRunner) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	m, err := newMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrf("warning: closing migrator: %v\n", closeErr)
		}
	}()
	return run(cmd, m)
}

func runMigrateUp(cmd *cobra.Command, m migrationRunner) error {
	pending, err := m.Pending()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}
	if len(pending) == 0 {
		cmd.Println("Database is up to date")
		return nil
	}

	cmd.Printf("Applying %d migration(s)...\n", len(pending))
	if err := m.Up(); err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}
	version, _, err := m.Version()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}
	cmd.Printf("Migrated to version %d\n", version)
	return nil
}

func runMigrateDown(cmd *cobra.Command, m migrationRunner) error {
	cmd.Println("Rolling back all migrations...")
	if err := m.Down(); err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}
	cmd.Println("Rolled back to version 0")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, m migrationRunner) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}
	pending, err := m.Pending()
	if err != nil {
		return err //nolint:wrapcheck // store errors carry their own code
	}

	state := "clean"
	if dirty {
		state = "dirty"
	}
	cmd.Printf("Current version: %d (%s)\n", version, state)

	if len(pending) == 0 {
		cmd.Println("No pending migrations")
		return nil
	}
	cmd.Printf("Pending migrations: %d\n", len(pending))
	for _, v := range pending {
		name, err := store.MigrationName(v)
		if err != nil {
			return err //nolint:wrapcheck // store errors carry their own code
		}
		cmd.Printf("  %s\n", name)
	}
	return nil
}
