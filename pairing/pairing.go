// Package pairing matches C++ headers with their implementation files.
package pairing

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/gitignore"
)

// sibling directory names that commonly split headers from sources
var dirPairs = map[string][]string{
	"include": {"src", "source", "lib"},
	"inc":     {"src", "source"},
	"src":     {"include", "inc"},
	"source":  {"include", "inc"},
	"lib":     {"include"},
}

// Finder resolves the paired file of a header or source.
type Finder struct {
	Store  document.Store
	Config config.PairingConfig
	// Root is the workspace searched when no sibling candidate exists.
	// Empty disables the search.
	Root string
}

// NewFinder returns a Finder over store rooted at root.
func NewFinder(store document.Store, cfg config.PairingConfig, root string) *Finder {
	return &Finder{Store: store, Config: cfg, Root: root}
}

// IsHeader reports whether path has one of the configured header extensions.
func IsHeader(cfg config.PairingConfig, path string) bool {
	return slices.Contains(cfg.HeaderExtensions, strings.ToLower(filepath.Ext(path)))
}

// IsSource reports whether path has one of the configured source extensions.
func IsSource(cfg config.PairingConfig, path string) bool {
	return slices.Contains(cfg.SourceExtensions, strings.ToLower(filepath.Ext(path)))
}

// FindPairedFile returns the header for a source file or the source for a
// header. ok is false when path is neither or no counterpart exists.
func (f *Finder) FindPairedFile(ctx context.Context, path string) (string, bool, error) {
	var wanted []string
	switch {
	case IsHeader(f.Config, path):
		wanted = f.Config.SourceExtensions
	case IsSource(f.Config, path):
		wanted = f.Config.HeaderExtensions
	default:
		return "", false, nil
	}

	for _, candidate := range Candidates(path, wanted) {
		exists, err := f.Store.Exists(ctx, candidate)
		if err != nil {
			return "", false, fmt.Errorf("failed to check %s: %w", candidate, err)
		}
		if exists {
			log.Debug().Str("file", path).Str("pair", candidate).Msg("found paired file next to it")
			return candidate, true, nil
		}
	}

	if f.Root == "" || !f.Config.Search() {
		return "", false, nil
	}
	return f.search(ctx, path, wanted)
}

// Candidates lists the paths checked for a counterpart of path, nearest
// first: the same directory, then include/src style sibling directories.
func Candidates(path string, extensions []string) []string {
	dir := filepath.Dir(path)
	stem := stem(path)

	var out []string
	for _, ext := range extensions {
		out = append(out, filepath.Join(dir, stem+ext))
	}

	parent, base := filepath.Dir(dir), filepath.Base(dir)
	for _, other := range dirPairs[base] {
		for _, ext := range extensions {
			out = append(out, filepath.Join(parent, other, stem+ext))
		}
	}
	return out
}

// search walks the workspace for files named like path with one of the
// wanted extensions and picks the one sharing the longest directory prefix.
func (f *Finder) search(ctx context.Context, path string, wanted []string) (string, bool, error) {
	stem := stem(path)
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	best, bestScore := "", -1
	err = gitignore.Walk(ctx, f.Root, func(candidate, rel string) error {
		name := filepath.Base(candidate)
		ext := strings.ToLower(filepath.Ext(name))
		if !slices.Contains(wanted, ext) || strings.TrimSuffix(name, filepath.Ext(name)) != stem {
			return nil
		}
		absCandidate, err := filepath.Abs(candidate)
		if err != nil {
			absCandidate = candidate
		}
		// lexical walk order keeps ties deterministic
		if score := commonDirDepth(absPath, absCandidate); score > bestScore {
			best, bestScore = candidate, score
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to search workspace: %w", err)
	}
	if best == "" {
		return "", false, nil
	}
	log.Debug().Str("file", path).Str("pair", best).Msg("found paired file in workspace")
	return best, true, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// commonDirDepth counts the leading directory components a and b share.
func commonDirDepth(a, b string) int {
	da := strings.Split(filepath.ToSlash(filepath.Dir(a)), "/")
	db := strings.Split(filepath.ToSlash(filepath.Dir(b)), "/")
	n := 0
	for n < len(da) && n < len(db) && da[n] == db[n] {
		n++
	}
	return n
}
