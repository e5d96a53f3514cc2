package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/tui"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
)

func newRulesCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the filter, object, tag and rule catalogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listing := catalog.List()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(listing)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderRules(listing))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the catalogs as JSON")

	return cmd
}
