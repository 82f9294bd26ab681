package tools

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/roveo/cppgen/languages"
)

// CodemapInput is the input schema for the codemap tool
type CodemapInput struct {
	Path   string `json:"path,omitempty" jsonschema_description:"Directory path to index. Defaults to current working directory if not specified."`
	Filter string `json:"filter,omitempty" jsonschema_description:"Optional path filter to show only a specific package (directory) or file. When specified, only files matching this prefix will have their symbols shown. Use this to get a compact map of just the relevant part of the codebase. Overrides any default skip patterns for matching files."`
}

// CodemapTool creates the codemap MCP tool
func CodemapTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "index",
		Description: "Index a C++ codebase and return a compact listing of its namespaces, classes, functions and members with their line ranges. Use it to find the header that declares a class before generating accessors or definitions.",
	}
}

// CodemapHandler handles the codemap tool invocation
func CodemapHandler(cfg *Config) func(context.Context, *mcp.CallToolRequest, CodemapInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CodemapInput) (*mcp.CallToolResult, any, error) {
		dir := input.Path
		if dir == "" {
			dir = "."
		}
		dir, err := absPath(dir)
		if err != nil {
			return nil, nil, err
		}

		files, err := IndexDirectory(ctx, cfg.Engine.Store, dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to index directory: %w", err)
		}

		output := FormatCodemap(files, FormatOptions{
			SkipPatterns: cfg.SkipPatterns,
			Filter:       input.Filter,
			LineLimit:    cfg.LineLimit,
		})
		if output == "" {
			output = NoSymbolsMessage()
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: output},
			},
		}, nil, nil
	}
}

// NoSymbolsMessage explains an empty codemap
func NoSymbolsMessage() string {
	return "No symbols found in the specified directory. Indexed extensions: " +
		strings.Join(languages.SupportedExtensions(), ", ")
}

// FormatOptions controls how the codemap is formatted
type FormatOptions struct {
	SkipPatterns []string // Path prefixes to skip by default
	Filter       string   // If set, only show files matching this prefix (overrides skip)
	LineLimit    int      // Maximum lines in output (0 = no limit, default = DefaultLineLimit)
}

// FormatCodemap formats the index in a compact human-readable format
func FormatCodemap(files []FileIndex, opts FormatOptions) string {
	limit := opts.LineLimit
	if limit == 0 {
		limit = DefaultLineLimit
	}

	tree := buildDirTree(files, opts)
	prunedFiles, prunedDirs := pruneToLimit(tree, limit)

	var sb strings.Builder

	if len(prunedDirs) > 0 {
		sb.WriteString("# Note: Output pruned to fit line limit\n")
		sb.WriteString("# Pruned directories: ")
		sb.WriteString(strings.Join(prunedDirs, ", "))
		sb.WriteString("\n\n")
	}

	if opts.Filter == "" {
		for _, file := range files {
			if isSkipped(file.Path, opts.SkipPatterns) {
				sb.WriteString(fmt.Sprintf("## %s\n", file.Path))
				sb.WriteString("  (skipped by default - use filter parameter to index this path explicitly)\n\n")
			}
		}
	}

	for _, file := range prunedFiles {
		if len(file.Symbols) == 0 {
			continue
		}

		sb.WriteString(fmt.Sprintf("## %s\n", file.Path))
		for _, sym := range file.Symbols {
			writeSymbol(&sb, sym, 1)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// writeSymbol writes one line per range, children indented below their
// parent. Lines are 1-based.
func writeSymbol(sb *strings.Builder, sym *languages.CodeRange, depth int) {
	startLine := sym.Range.Start.Line + 1
	endLine := sym.Range.End.Line + 1

	label := string(sym.Kind)
	if sym.Detail != "" {
		label = sym.Detail + " " + label
	}
	if sym.Name != "" {
		label += " " + sym.Name
	}

	indent := strings.Repeat("  ", depth)
	if startLine == endLine {
		sb.WriteString(fmt.Sprintf("%s%s [%d]\n", indent, label, startLine))
	} else {
		sb.WriteString(fmt.Sprintf("%s%s [%d-%d]\n", indent, label, startLine, endLine))
	}

	for _, child := range sym.Children {
		writeSymbol(sb, child, depth+1)
	}
}

// matchesFilter checks if a file path matches the filter.
// Supports both exact file match and directory/package prefix match.
func matchesFilter(filePath, filter string) bool {
	// Normalize filter (remove leading ./)
	filter = strings.TrimPrefix(filter, "./")
	filePath = strings.TrimPrefix(filePath, "./")

	// Exact match
	if filePath == filter {
		return true
	}

	// Directory prefix match (filter="cmd" matches "cmd/main.go")
	filterDir := strings.TrimSuffix(filter, "/")
	if strings.HasPrefix(filePath, filterDir+"/") {
		return true
	}

	return false
}

// isSkipped checks if a file path matches any skip pattern (prefix match)
func isSkipped(filePath string, patterns []string) bool {
	filePath = strings.TrimPrefix(filePath, "./")
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(pattern, "./")
		pattern = strings.TrimSuffix(pattern, "/")
		if filePath == pattern || strings.HasPrefix(filePath, pattern+"/") {
			return true
		}
	}
	return false
}

// fileLineCount returns the number of output lines a file would produce:
// a header, one line per range at any depth, and a blank line.
func fileLineCount(file FileIndex) int {
	if len(file.Symbols) == 0 {
		return 0
	}
	count := 0
	for _, sym := range file.Symbols {
		sym.Walk(func(*languages.CodeRange) bool {
			count++
			return true
		})
	}
	return 1 + count + 1
}

// dirNode is one directory of the codemap, used to prune output to the
// line limit. lines covers the whole subtree.
type dirNode struct {
	name     string
	path     string
	files    []FileIndex
	children map[string]*dirNode
	lines    int
}

func newDirNode(name, dirPath string) *dirNode {
	return &dirNode{name: name, path: dirPath, children: make(map[string]*dirNode)}
}

// child returns the subdirectory called name, creating it on first use
func (n *dirNode) child(name string) *dirNode {
	c, ok := n.children[name]
	if !ok {
		c = newDirNode(name, path.Join(n.path, name))
		n.children[name] = c
	}
	return c
}

// buildDirTree groups the files that will be shown by directory. Skipped
// files are not placed in the tree.
func buildDirTree(files []FileIndex, opts FormatOptions) *dirNode {
	root := newDirNode("", "")

	for _, file := range files {
		if opts.Filter != "" {
			if !matchesFilter(file.Path, opts.Filter) {
				continue
			}
		} else if isSkipped(file.Path, opts.SkipPatterns) {
			continue
		}
		if len(file.Symbols) == 0 {
			continue
		}

		node := root
		// Index paths are slash-separated on every platform
		if dir := path.Dir(file.Path); dir != "." {
			for _, part := range strings.Split(dir, "/") {
				if part != "" {
					node = node.child(part)
				}
			}
		}
		node.files = append(node.files, file)
	}

	countLines(root)
	return root
}

// countLines stores and returns the output size of every subtree
func countLines(node *dirNode) int {
	total := 0
	for _, file := range node.files {
		total += fileLineCount(file)
	}
	for _, child := range node.children {
		total += countLines(child)
	}
	node.lines = total
	return total
}

// pruneToLimit drops whole leaf directories, largest first, until the output
// fits limit, then drops single files if that was not enough. It returns the
// remaining files sorted by path and the dropped directories.
func pruneToLimit(root *dirNode, limit int) ([]FileIndex, []string) {
	if limit <= 0 || root.lines <= limit {
		return collectFiles(root), nil
	}

	var prunedDirs []string
	for root.lines > limit {
		leaf, parent := largestLeaf(root)
		if leaf == nil {
			break
		}
		delete(parent.children, leaf.name)
		prunedDirs = append(prunedDirs, leaf.path)
		countLines(root)
	}

	if root.lines > limit {
		pruneFiles(root, limit)
	}

	return collectFiles(root), prunedDirs
}

// largestLeaf finds the directory without subdirectories that produces the
// most lines, together with its parent. The root itself is never a leaf.
func largestLeaf(root *dirNode) (leaf, parent *dirNode) {
	var visit func(node, up *dirNode)
	visit = func(node, up *dirNode) {
		if len(node.children) == 0 {
			if node != root && (leaf == nil || node.lines > leaf.lines) {
				leaf, parent = node, up
			}
			return
		}
		for _, child := range node.children {
			visit(child, node)
		}
	}
	visit(root, nil)
	return leaf, parent
}

// pruneFiles removes the largest files until the tree fits limit
func pruneFiles(root *dirNode, limit int) {
	type entry struct {
		node  *dirNode
		file  FileIndex
		lines int
	}

	var entries []entry
	var gather func(node *dirNode)
	gather = func(node *dirNode) {
		for _, file := range node.files {
			entries = append(entries, entry{node: node, file: file, lines: fileLineCount(file)})
		}
		for _, child := range node.children {
			gather(child)
		}
	}
	gather(root)

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].lines != entries[j].lines {
			return entries[i].lines > entries[j].lines
		}
		return entries[i].file.Path < entries[j].file.Path
	})

	dropped := make(map[string]bool)
	total := root.lines
	for _, e := range entries {
		if total <= limit {
			break
		}
		dropped[e.file.Path] = true
		total -= e.lines
	}

	var filter func(node *dirNode)
	filter = func(node *dirNode) {
		kept := node.files[:0]
		for _, file := range node.files {
			if !dropped[file.Path] {
				kept = append(kept, file)
			}
		}
		node.files = kept
		for _, child := range node.children {
			filter(child)
		}
	}
	filter(root)
	countLines(root)
}

// collectFiles flattens the tree into files sorted by path
func collectFiles(root *dirNode) []FileIndex {
	var files []FileIndex
	var collect func(node *dirNode)
	collect = func(node *dirNode) {
		files = append(files, node.files...)
		for _, child := range node.children {
			collect(child)
		}
	}
	collect(root)

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})
	return files
}
