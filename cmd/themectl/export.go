package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/themeforge/internal/artifacts"
	"github.com/codr1/themeforge/internal/export"
)

func newExportCommand() *cobra.Command {
	var (
		formatName string
		dir        string
	)

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a valid theme as JSON, CSS variables or a Tailwind config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := export.ParseFormat(formatName)
			if err != nil {
				return err
			}

			doc, err := loadDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			if !doc.Outcome.Valid() {
				printReport(cmd.ErrOrStderr(), doc)
				return fmt.Errorf("%s is not a valid theme", doc.Name)
			}

			artifact, err := export.Render(*doc.Outcome.Theme, format)
			if err != nil {
				return err
			}

			if dir == "" {
				_, err := cmd.OutOrStdout().Write(artifact.Content)
				return err
			}

			sink, err := artifacts.NewFileSink(dir)
			if err != nil {
				return err
			}
			if err := sink.Deliver(cmd.Context(), artifact); err != nil {
				return err
			}
			log.Info().Str("path", sink.Path(artifact.Filename)).Str("format", string(format)).Msg("Theme exported")
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatName, "format", "f", string(export.FormatCSS), "output format: json, css or tailwind")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "write <slug>-theme.<ext> into this directory instead of stdout")
	return cmd
}
