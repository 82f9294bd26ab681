package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roveo/cppgen/config"
)

// AddDefinitionInput is the input schema for the add_definition tool
type AddDefinitionInput struct {
	File     string `json:"file" jsonschema_description:"Path of the file declaring the function (e.g., 'include/geo/point.hpp')."`
	Symbol   string `json:"symbol,omitempty" jsonschema_description:"Name of the function declaration, optionally qualified ('Point::norm'). Either symbol or line and column are required."`
	Line     int    `json:"line,omitempty" jsonschema_description:"1-based line of the declaration, used when symbol is empty."`
	Column   int    `json:"column,omitempty" jsonschema_description:"1-based column of the declaration, used when symbol is empty."`
	Location string `json:"location,omitempty" jsonschema_description:"Where to put the definition: 'source_file' or 'below_class'. Defaults to the project configuration."`
	DryRun   bool   `json:"dry_run,omitempty" jsonschema_description:"Return a unified diff of the edit instead of writing files."`
}

// AddDefinitionTool creates the add_definition MCP tool
func AddDefinitionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "add_definition",
		Description: "Create an empty out-of-line definition for a C++ function declaration, placed next to the definitions of its neighbours in the paired source file or below the class. Does nothing if a definition already exists.",
	}
}

// AddDefinitionHandler handles the add_definition tool invocation
func AddDefinitionHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, AddDefinitionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AddDefinitionInput) (*mcp.CallToolResult, any, error) {
		request, err := NewRequest(input.File, input.Symbol, input.Line, input.Column)
		if err != nil {
			return nil, nil, err
		}
		location, err := config.ParseDefinitionLocation(input.Location)
		if err != nil {
			return nil, nil, err
		}

		res, err := cfg.Engine.AddDefinition(ctx, request, location)
		if err != nil {
			return nil, nil, err
		}

		text, err := Commit(ctx, cfg.Engine, res, cfg.DryRun || input.DryRun)
		if err != nil {
			return nil, nil, err
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: text},
			},
		}, nil, nil
	}
}
