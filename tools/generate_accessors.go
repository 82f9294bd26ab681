package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roveo/cppgen/refactor"
)

// GenerateAccessorsInput is the input schema for the generate_accessors tool
type GenerateAccessorsInput struct {
	File   string `json:"file" jsonschema_description:"Path of the header declaring the class (e.g., 'include/geo/point.hpp')."`
	Symbol string `json:"symbol,omitempty" jsonschema_description:"Name of the member variable, optionally qualified with its class ('Point::m_x'). Either symbol or line and column are required."`
	Line   int    `json:"line,omitempty" jsonschema_description:"1-based line of the member variable, used when symbol is empty."`
	Column int    `json:"column,omitempty" jsonschema_description:"1-based column of the member variable, used when symbol is empty."`
	Type   string `json:"type,omitempty" jsonschema_description:"Which accessors to generate: 'getter', 'setter' or 'both' (default)."`
	DryRun bool   `json:"dry_run,omitempty" jsonschema_description:"Return a unified diff of the edit instead of writing files."`
}

// GenerateAccessorsTool creates the generate_accessors MCP tool
func GenerateAccessorsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "generate_accessors",
		Description: "Generate a getter and/or setter for a C++ class member variable. Declarations go into the class's public section; definitions go inline, below the class or into the paired source file according to the project configuration. Existing accessors are reported and left alone.",
	}
}

// GenerateAccessorsHandler handles the generate_accessors tool invocation
func GenerateAccessorsHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, GenerateAccessorsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GenerateAccessorsInput) (*mcp.CallToolResult, any, error) {
		request, err := NewRequest(input.File, input.Symbol, input.Line, input.Column)
		if err != nil {
			return nil, nil, err
		}
		typ, err := refactor.ParseAccessorType(input.Type)
		if err != nil {
			return nil, nil, err
		}

		res, err := cfg.Engine.GenerateAccessors(ctx, request, typ)
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
