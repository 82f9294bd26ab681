// Package tools provides the MCP tools and the shared CLI plumbing for the
// C++ code generation commands.
package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/gitignore"
	"github.com/roveo/cppgen/languages"
	"github.com/roveo/cppgen/refactor"
)

// DefaultLineLimit is the default maximum number of lines in the codemap output
const DefaultLineLimit = 1000

// Config holds server-wide configuration for tools
type Config struct {
	SkipPatterns []string // Path prefixes to skip by default
	LineLimit    int      // Maximum lines in output (0 = no limit)
	Engine       *refactor.Engine
	DryRun       bool // Preview edits as diffs instead of writing them
}

// FileIndex represents the index of a single source file
type FileIndex struct {
	Path     string                 `json:"path"`     // Slash-separated path relative to the index root
	Language string                 `json:"language"` // Language identifier, e.g. "cpp"
	Symbols  []*languages.CodeRange `json:"-"`        // Top-level symbols of the file
}

// IndexDirectory walks the directory and indexes all supported source files,
// reading them through store.
func IndexDirectory(ctx context.Context, store document.Store, dir string) ([]FileIndex, error) {
	var results []FileIndex
	var provider languages.Provider
	log.Debug().Str("dir", dir).Strs("languages", languages.RegisteredLanguages()).Msg("indexing directory")

	err := gitignore.Walk(ctx, dir, func(path, rel string) error {
		lang := languages.GetLanguageForFile(path)
		if lang == nil {
			return nil
		}

		doc, err := store.Open(ctx, path)
		if err != nil {
			log.Debug().Err(err).Str("file", rel).Msg("skipping unreadable file")
			return nil
		}

		root, err := provider.DiscoverFile(ctx, path, []byte(doc.Text()))
		if err != nil {
			log.Debug().Err(err).Str("file", rel).Msg("skipping unparsable file")
			return nil
		}

		results = append(results, FileIndex{
			Path:     rel,
			Language: lang.Name(),
			Symbols:  root.Children,
		})
		return nil
	})

	return results, err
}

// absPath makes a path from a tool input absolute
func absPath(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(cwd, path), nil
}

// NewRequest builds an engine request from a file and either a symbol name
// or a 1-based line and column.
func NewRequest(file, symbolName string, line, column int) (refactor.Request, error) {
	if file == "" {
		return refactor.Request{}, fmt.Errorf("file path is required")
	}
	path, err := absPath(file)
	if err != nil {
		return refactor.Request{}, err
	}
	req := refactor.Request{Path: path, Symbol: symbolName}
	if symbolName == "" {
		if line < 1 || column < 1 {
			return refactor.Request{}, fmt.Errorf("symbol name or line and column are required")
		}
		req.Position = &languages.Position{Line: line - 1, Character: column - 1}
	}
	return req, nil
}

// Commit applies the result's edit unless dryRun is set, and describes the
// outcome.
func Commit(ctx context.Context, engine *refactor.Engine, res *refactor.Result, dryRun bool) (string, error) {
	if !dryRun {
		if err := engine.Apply(ctx, res); err != nil {
			return "", err
		}
	}
	return FormatResult(res, dryRun), nil
}

// FormatResult renders a command result for people and models.
func FormatResult(res *refactor.Result, dryRun bool) string {
	var sb strings.Builder
	for _, n := range res.Notices {
		sb.WriteString("note: " + n + "\n")
	}
	for _, loc := range res.Existing {
		sb.WriteString(fmt.Sprintf("existing: %s\n", formatLocation(loc)))
	}

	if res.Edit.Empty() {
		if sb.Len() == 0 {
			sb.WriteString("nothing to do\n")
		}
		return sb.String()
	}

	if dryRun {
		sb.WriteString(res.Edit.Diff())
		return sb.String()
	}
	for _, doc := range res.Edit.Documents() {
		sb.WriteString(fmt.Sprintf("updated: %s (%d insertions)\n", doc.Path, len(res.Edit.Insertions(doc.Path))))
	}
	if res.Cursor != nil {
		sb.WriteString(fmt.Sprintf("cursor: %s\n", formatLocation(*res.Cursor)))
	}
	return sb.String()
}

// formatLocation renders a location as path:line:column, 1-based.
func formatLocation(loc refactor.Location) string {
	return fmt.Sprintf("%s:%d:%d", loc.Path, loc.Range.Start.Line+1, loc.Range.Start.Character+1)
}
