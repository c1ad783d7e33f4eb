package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/codr1/themeforge/internal/watcher"
)

func newWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-validate a theme document whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			w, err := watcher.New(watcher.Config{Path: path, Debounce: debounce})
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()

			onChange, err := w.Start()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			check := func() {
				doc, err := loadDocument(path, nil)
				if err != nil {
					log.Warn().Err(err).Str("file", path).Msg("Cannot check theme")
					return
				}
				printReport(cmd.OutOrStdout(), doc)
			}

			log.Info().Str("file", path).Msg("Watching for changes")
			check()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-onChange:
					check()
				}
			}
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before re-validating")
	return cmd
}
