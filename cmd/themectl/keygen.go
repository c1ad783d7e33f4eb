package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codr1/themeforge/internal/api/auth"
)

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an API key and the hash for APP_API_KEY_HASH",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, hash, err := auth.GenerateAPIKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "API key:          %s\nAPP_API_KEY_HASH: %s\n", key, hash)
			return nil
		},
	}
}
