package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	cacheAdapter "github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/cache"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/config"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/gitinfo"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/history"
	"github.com/ArtificialMonks/shopify-liquid/internal/adapters/outbound/scanner"
	"github.com/ArtificialMonks/shopify-liquid/internal/application"
	"github.com/ArtificialMonks/shopify-liquid/internal/domain"
)

const levelDescription = "Validation level: development, production (default) or ultimate"

// registerTools registers all liquidlint MCP tools on the given server.
func registerTools(s *server.MCPServer, projectPath string, logger *slog.Logger) {
	// 1. liquid_validate
	s.AddTool(
		mcplib.NewTool("liquid_validate",
			mcplib.WithDescription("Validate a theme directory or a single theme file and return the report as JSON"),
			mcplib.WithString("path", mcplib.Description("File or directory, relative to the theme root (default: the theme root)")),
			mcplib.WithString("level", mcplib.Description(levelDescription)),
		),
		handleValidate(projectPath, logger),
	)

	// 2. liquid_validate_content
	s.AddTool(
		mcplib.NewTool("liquid_validate_content",
			mcplib.WithDescription("Validate unsaved file content as if it lived at file_path, e.g. sections/hero.liquid"),
			mcplib.WithString("file_path",
				mcplib.Required(),
				mcplib.Description("Theme-relative path that decides the file type"),
			),
			mcplib.WithString("content",
				mcplib.Required(),
				mcplib.Description("Full file content"),
			),
			mcplib.WithString("level", mcplib.Description(levelDescription)),
		),
		handleValidateContent(logger),
	)

	// 3. liquid_fix
	s.AddTool(
		mcplib.NewTool("liquid_fix",
			mcplib.WithDescription("Apply the safe automatic fixes to a theme directory or file and return what changed"),
			mcplib.WithString("path", mcplib.Description("File or directory, relative to the theme root (default: the theme root)")),
			mcplib.WithBoolean("dry_run", mcplib.Description("Report the fixes without writing files")),
		),
		handleFix(projectPath, logger),
	)
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

func handleValidate(projectPath string, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		level, err := levelArg(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		target := resolve(projectPath, stringArg(request, "path"))

		r, err := newValidateService(logger).Validate(ctx, target, application.ValidateOptions{Level: level})
		if err != nil {
			return errorResult(fmt.Sprintf("validate failed: %v", err)), nil
		}
		return jsonResult(r)
	}
}

func handleValidateContent(logger *slog.Logger) server.ToolHandlerFunc {
	return func(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		filePath, err := request.RequireString("file_path")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		content, err := request.RequireString("content")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		level, err := levelArg(request)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		r := newValidateService(logger).ValidateContent(filePath, content, level)
		return jsonResult(r)
	}
}

func handleFix(projectPath string, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		dryRun, _ := request.GetArguments()["dry_run"].(bool)
		target := resolve(projectPath, stringArg(request, "path"))

		svc := application.NewFixService(scanner.New(), config.New(), logger)
		plan, err := svc.Fix(ctx, target, domain.FixOptions{DryRun: dryRun})
		if err != nil {
			return errorResult(fmt.Sprintf("fix failed: %v", err)), nil
		}
		return jsonResult(plan)
	}
}

func stringArg(request mcplib.CallToolRequest, name string) string {
	s, _ := request.GetArguments()[name].(string)
	return s
}

func levelArg(request mcplib.CallToolRequest) (domain.ValidationLevel, error) {
	name := stringArg(request, "level")
	if name == "" {
		return domain.LevelProduction, nil
	}
	return domain.ParseLevel(name)
}

// resolve joins a tool path onto the theme root unless it is absolute.
func resolve(projectPath, p string) string {
	if p == "" {
		return projectPath
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(projectPath, filepath.FromSlash(p))
}

// jsonResult marshals v as indented JSON text content.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool result that indicates an error occurred.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
