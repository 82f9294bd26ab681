package main

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/roveo/cppgen/tools"
)

// serverConfig holds the server configuration
var serverConfig *tools.Config

func runMCPServer(ctx context.Context, skipPatterns []string, lineLimit int) error {
	engine, err := loadEngine(ctx)
	if err != nil {
		return err
	}

	serverConfig = &tools.Config{
		SkipPatterns: skipPatterns,
		LineLimit:    lineLimit,
		Engine:       engine,
		DryRun:       dryRun,
	}

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "cppgen",
		Version: "1.0.0",
	}, nil)

	// Register codemap tool
	mcp.AddTool(s, tools.CodemapTool(), tools.CodemapHandler(serverConfig))

	// Register generation tools
	mcp.AddTool(s, tools.GenerateAccessorsTool(), tools.GenerateAccessorsHandler(serverConfig))
	mcp.AddTool(s, tools.AddDefinitionTool(), tools.AddDefinitionHandler(serverConfig))

	// Register navigation tools
	mcp.AddTool(s, tools.FindDefinitionTool(), tools.FindDefinitionHandler(serverConfig))
	mcp.AddTool(s, tools.SwitchHeaderSourceTool(), tools.SwitchHeaderSourceHandler(serverConfig))

	log.Info().Bool("dry_run", dryRun).Msg("serving MCP on stdio")
	return s.Run(ctx, &mcp.StdioTransport{})
}
