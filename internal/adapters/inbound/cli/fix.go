package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/config"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/scanner"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/tui"
	"github.com/ArtificialMonks/shopify-liquid/internal/application"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

func newFixCmd() *cobra.Command {
	var (
		dryRun     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Apply safe automatic fixes",
		Long: "Rewrite theme files to remove mechanically fixable issues: {% doc %} tags, unknown filters, " +
			"unbounded collection loops, entities and curly quotes in Liquid, unescaped setting text, " +
			"Unicode calc() operators, BOMs and zero-width characters. {% raw %} bodies are never touched.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			svc := application.NewFixService(scanner.New(), config.New(), newLogger(cmd))
			plan, err := svc.Fix(cmd.Context(), path, domain.FixOptions{DryRun: dryRun})
			if err != nil {
				return fmt.Errorf("fix failed: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderFixPlan(plan))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing files")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the fix plan as JSON")

	return cmd
}
