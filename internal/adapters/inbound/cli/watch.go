package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/tui"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/watch"
)

func newWatchCmd() *cobra.Command {
	var flags validateFlags

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-validate the theme whenever a file changes",
		Long:  "Validate the theme once, then again each time .liquid, .json or .css files change. Stop with Ctrl-C.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}
			info, err := os.Stat(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			if !info.IsDir() {
				return fmt.Errorf("watch needs a theme directory, got file %s", path)
			}

			opts, err := flags.options()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			logger := newLogger(cmd)
			svc := newValidateService(logger)
			out := cmd.OutOrStdout()

			// Runs never overlap; a change during a run queues the next one.
			var mu sync.Mutex
			run := func() {
				mu.Lock()
				defer mu.Unlock()
				r, err := svc.Validate(ctx, path, opts)
				if err != nil {
					if !errors.Is(err, context.Canceled) {
						logger.Error("validation failed", "error", err)
					}
					return
				}
				fmt.Fprint(out, tui.RenderReport(r))
			}

			run()

			w, err := watch.New(path, watch.DefaultDebounce, func(changed []string) {
				logger.Info("re-running validation", "changed", changed)
				run()
			}, logger)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, "Watching for changes. Press Ctrl-C to stop.")
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
