// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/postline/postline/internal/config"
)

// NewRootCmd creates the root command for the Postline CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "postline",
		Short: "Postline - posts and accounts over a small JSON API",
		Long: `Postline serves post CRUD and cookie-session accounts over
POST /api/<operation>, backed by PostgreSQL and Redis.`,
		SilenceUsage: true,
	}

	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// loadConfig reads configuration from the command's merged flag set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Flags()) //nolint:wrapcheck // config errors carry their own code
}
