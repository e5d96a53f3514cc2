package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	cacheAdapter "github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/cache"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/config"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/gitinfo"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/history"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/scanner"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/tui"
	"github.com/ArtificialMonks/shopify-liquid/internal/application"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// validateFlags are shared by validate and watch.
type validateFlags struct {
	level       string
	maxFiles    int
	timeout     time.Duration
	concurrency int
	noCache     bool
}

func (f *validateFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.level, "level", "", "Validation level: development, production or ultimate (default from config, else production)")
	cmd.Flags().IntVar(&f.maxFiles, "max-files", 0, "Validate at most this many files (0 = no limit)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Per-file validation timeout (default from config, else 10s)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "Parallel file workers (0 = one per CPU)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "Ignore and do not update the result cache")
}

func (f *validateFlags) options() (application.ValidateOptions, error) {
	opts := application.ValidateOptions{
		MaxFiles:    f.maxFiles,
		Timeout:     f.timeout,
		Concurrency: f.concurrency,
		NoCache:     f.noCache,
	}
	if f.level != "" {
		level, err := domain.ParseLevel(f.level)
		if err != nil {
			return opts, err
		}
		opts.Level = level
	}
	return opts, nil
}

func newValidateService(logger *slog.Logger) *application.ValidateService {
	return application.NewValidateService(
		scanner.New(),
		config.New(),
		cacheAdapter.New(),
		history.New(),
		gitinfo.New(),
		logger,
	)
}

func newValidateCmd() *cobra.Command {
	var (
		flags      validateFlags
		jsonOutput bool
		changed    bool
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a theme directory or a single theme file",
		Long: "Run every check over a theme directory (or one file) and print a report grouped by severity.\n" +
			"Exit code 0 means no errors, 1 means errors, 2 means critical issues.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			opts, err := flags.options()
			if err != nil {
				return err
			}
			opts.ChangedOnly = changed

			svc := newValidateService(newLogger(cmd))

			if clearCache {
				absPath, err := filepath.Abs(path)
				if err != nil {
					return fmt.Errorf("resolving path: %w", err)
				}
				if err := svc.ClearCache(absPath); err != nil {
					return err
				}
			}

			r, err := svc.Validate(cmd.Context(), path, opts)
			if err != nil {
				return fmt.Errorf("validate failed: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(r); err != nil {
					return err
				}
			} else {
				fmt.Fprint(cmd.OutOrStdout(), tui.RenderReport(r))
			}

			return exitFor(r.ExitCode())
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")
	cmd.Flags().BoolVar(&changed, "changed", false, "Only validate files changed in the git worktree")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Remove the result cache before validating")

	return cmd
}
