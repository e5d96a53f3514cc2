package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

// defaultConfig is written by init. Every key shows its default.
const defaultConfig = `# liquidlint configuration

# development: critical and errors only
# production:  adds warnings (Theme Store gate)
# ultimate:    every finding including info
level: production

# Extra directory names or theme-relative paths to skip.
# _archive, node_modules and .git are always skipped.
exclude_paths: []

# Validate at most this many files per run (0 = no limit).
max_files: 0

# Wall-clock limit per file. A file that takes longer is reported as a
# validation timeout warning and the run continues.
file_timeout: 10s

# Parallel file workers (0 = one per CPU).
concurrency: 0

# Issue types to drop from reports, e.g. hardcoded_route.
disabled_rules: []

# Turn on the noisy nested if/for complexity rules.
experimental_rules: false

# Reuse results for unchanged files from .liquidlint/cache.
cache: true
`

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a .liquidlint.yaml configuration file",
		Long:  "Create a .liquidlint.yaml with the default settings, each one documented.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			absPath, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			dest := filepath.Join(absPath, domain.ConfigFileName)

			if !force {
				if _, err := os.Stat(dest); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", domain.ConfigFileName)
				}
			}

			if err := os.WriteFile(dest, []byte(defaultConfig), 0644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", domain.ConfigFileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing .liquidlint.yaml")

	return cmd
}
