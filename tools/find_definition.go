package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/refactor"
)

// FindDefinitionInput is the input schema for the find_definition tool
type FindDefinitionInput struct {
	File   string `json:"file" jsonschema_description:"Path of the header or source file holding the declaration (e.g., 'include/geo/point.hpp')."`
	Symbol string `json:"symbol,omitempty" jsonschema_description:"Name of the function to look up. Qualified names such as 'Point::norm' are accepted. Either symbol or line and column are required."`
	Line   int    `json:"line,omitempty" jsonschema_description:"1-based line of the declaration, used when symbol is empty."`
	Column int    `json:"column,omitempty" jsonschema_description:"1-based column of the declaration, used when symbol is empty."`
}

// FindDefinitionTool creates the find_definition MCP tool
func FindDefinitionTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "find_definition",
		Description: "Find the out-of-line definition of a C++ function declaration, searching the declaring file and its paired header or source file. Returns the location and the source code of the definition.",
	}
}

// FindDefinitionHandler handles the find_definition tool invocation
func FindDefinitionHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, FindDefinitionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input FindDefinitionInput) (*mcp.CallToolResult, any, error) {
		request, err := NewRequest(input.File, input.Symbol, input.Line, input.Column)
		if err != nil {
			return nil, nil, err
		}

		res, err := cfg.Engine.FindDefinition(ctx, request)
		if err != nil {
			return nil, nil, err
		}

		text, err := DescribeDefinition(ctx, cfg.Engine.Store, res)
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

// DescribeDefinition prints the location and the numbered source lines of
// the definition a FindDefinition result points at.
func DescribeDefinition(ctx context.Context, store document.Store, res *refactor.Result) (string, error) {
	if len(res.Existing) == 0 {
		return "no definition found\n", nil
	}
	loc := res.Existing[0]

	doc, err := store.Open(ctx, loc.Path)
	if err != nil {
		return "", err
	}

	startLine := loc.Range.Start.Line + 1 // Convert to 1-based
	endLine := loc.Range.End.Line + 1

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s [%d-%d]\n\n", formatLocation(loc), startLine, endLine))
	sb.WriteString("```cpp\n")
	for line := loc.Range.Start.Line; line <= loc.Range.End.Line && line < doc.LineCount(); line++ {
		sb.WriteString(fmt.Sprintf("%4d | %s\n", line+1, doc.LineText(line)))
	}
	sb.WriteString("```\n")
	return sb.String(), nil
}
