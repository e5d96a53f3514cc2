package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ArtificialMonks/shopify-liquid/internal/domain/catalog"
)

// registerResources registers the static catalog resources.
func registerResources(s *server.MCPServer) {
	// 1. liquid://filters - official, hallucinated and deprecated filters
	s.AddResource(
		mcplib.NewResource(
			"liquid://filters",
			"Liquid Filters",
			mcplib.WithResourceDescription("Official Shopify filters plus known hallucinated and deprecated names with replacements"),
			mcplib.WithMIMEType("application/json"),
		),
		jsonResource("liquid://filters", func() any { return catalog.Filters() }),
	)

	// 2. liquid://rules - every rule table with severities
	s.AddResource(
		mcplib.NewResource(
			"liquid://rules",
			"Validation Rules",
			mcplib.WithResourceDescription("Every validation rule with its issue type, severity and fix suggestion"),
			mcplib.WithMIMEType("application/json"),
		),
		jsonResource("liquid://rules", func() any { return catalog.List() }),
	)
}

func jsonResource(uri string, build func() any) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(build(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", uri, err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
