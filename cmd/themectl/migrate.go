package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/themeforge/internal/migration"
)

func newMigrateCommand() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "migrate <file>",
		Short: "Upgrade a theme document to the current schema version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := readDocument(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			result, err := migration.Default().Apply(data)
			if err != nil {
				return err
			}
			for _, step := range result.Applied {
				log.Info().Str("file", path).Str("step", step).Msg("Applied migration")
			}
			if !result.Changed() {
				log.Info().Str("file", path).Str("version", result.To).Msg("Already current")
			}

			if write && path != "-" {
				if !result.Changed() {
					return nil
				}
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				if err := os.WriteFile(path, result.Document, info.Mode().Perm()); err != nil {
					return fmt.Errorf("write %s: %w", path, err)
				}
				return nil
			}

			_, err = cmd.OutOrStdout().Write(result.Document)
			return err
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "rewrite the file in place")
	return cmd
}
