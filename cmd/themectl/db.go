package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codr1/themeforge/internal/db"
)

func newDBCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the snapshot database",
	}
	cmd.AddCommand(newDBMigrateCommand())
	return cmd
}

func newDBMigrateCommand() *cobra.Command {
	var (
		dbPath         string
		migrationsPath string
		command        string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run schema migrations (up, down, version)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := db.OpenMigrator(dbPath, migrationsPath)
			if err != nil {
				return fmt.Errorf("failed to create migrate instance: %w", err)
			}
			defer m.Close()

			status, err := db.RunMigrationCommand(m, command)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %d, Dirty: %v\n", status.Version, status.Dirty)
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "path to SQLite database")
	cmd.Flags().StringVar(&migrationsPath, "migrations", "", "migrations directory (default: embedded)")
	cmd.Flags().StringVar(&command, "command", "up", "command to run (up, down, version)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
