package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// serverVersion is reported to MCP clients during initialisation.
const serverVersion = "0.1.0"

// NewLiquidMCPServer creates a new MCP server with all liquidlint tools and
// resources registered. projectPath is the theme root that relative tool
// paths resolve against.
func NewLiquidMCPServer(projectPath string, logger *slog.Logger) *server.MCPServer {
	if logger == nil {
		logger = slog.Default()
	}
	s := server.NewMCPServer(
		"liquidlint",
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, projectPath, logger)
	registerResources(s)

	return s
}
