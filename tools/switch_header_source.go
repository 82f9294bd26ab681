package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SwitchHeaderSourceInput is the input schema for the switch_header_source tool
type SwitchHeaderSourceInput struct {
	File string `json:"file" jsonschema_description:"Path of a C++ header or source file."`
}

// SwitchHeaderSourceTool creates the switch_header_source MCP tool
func SwitchHeaderSourceTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "switch_header_source",
		Description: "Return the source file matching a C++ header, or the header matching a source file, searching sibling directories and the project tree.",
	}
}

// SwitchHeaderSourceHandler handles the switch_header_source tool invocation
func SwitchHeaderSourceHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, SwitchHeaderSourceInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SwitchHeaderSourceInput) (*mcp.CallToolResult, any, error) {
		if input.File == "" {
			return nil, nil, fmt.Errorf("file path is required")
		}
		path, err := absPath(input.File)
		if err != nil {
			return nil, nil, err
		}

		paired, err := cfg.Engine.SwitchHeaderSource(ctx, path)
		if err != nil {
			return nil, nil, err
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: paired},
			},
		}, nil, nil
	}
}
