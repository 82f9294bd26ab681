// Package gitignore walks a workspace while honoring .gitignore files.
package gitignore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// Matcher holds the compiled .gitignore files of a directory tree.
type Matcher struct {
	root  string
	rules []rules
}

// rules are the patterns of one .gitignore file, scoped to its directory.
type rules struct {
	baseDir string // relative to root, "" for the root itself
	gi      *ignore.GitIgnore
}

var skipDirs = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"build":        {},
	"out":          {},
	"third_party":  {},
}

// New creates a Matcher for root, loading every .gitignore in the tree.
func New(root string) (*Matcher, error) {
	m := &Matcher{root: root}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip inaccessible paths
		}
		if d.IsDir() && path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if d.Name() != ".gitignore" || d.IsDir() {
			return nil
		}
		gi, err := ignore.CompileIgnoreFile(path)
		if err != nil {
			return nil // skip unreadable .gitignore files
		}
		relDir, _ := filepath.Rel(root, filepath.Dir(path))
		if relDir == "." {
			relDir = ""
		}
		m.rules = append(m.rules, rules{baseDir: filepath.ToSlash(relDir), gi: gi})
		return nil
	})

	// parents before children so deeper files are consulted last
	sort.SliceStable(m.rules, func(i, j int) bool {
		return strings.Count(m.rules[i].baseDir, "/") < strings.Count(m.rules[j].baseDir, "/")
	})
	return m, err
}

// Match checks if a path relative to the Matcher's root should be ignored.
// isDir should be true if the path is a directory.
func (m *Matcher) Match(path string, isDir bool) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}

	path = strings.TrimPrefix(filepath.ToSlash(path), "./")

	// a file under an ignored directory is ignored too
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if m.matchPath(strings.Join(parts[:i], "/"), true) {
			return true
		}
	}
	return m.matchPath(path, isDir)
}

func (m *Matcher) matchPath(path string, isDir bool) bool {
	if isDir {
		path += "/"
	}
	for _, r := range m.rules {
		rel := path
		if r.baseDir != "" {
			if !strings.HasPrefix(path, r.baseDir+"/") {
				continue
			}
			rel = strings.TrimPrefix(path, r.baseDir+"/")
		}
		if r.gi.MatchesPath(rel) {
			return true
		}
	}
	return false
}

// WalkFunc is called for every file Walk visits. rel is slash-separated and
// relative to the walk root.
type WalkFunc func(path, rel string) error

// Walk visits the regular files under root in lexical order, skipping hidden
// and vendored directories and anything the tree's .gitignore files exclude.
// It stops early when ctx is cancelled.
func Walk(ctx context.Context, root string, fn WalkFunc) error {
	matcher, _ := New(root)

	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if matcher.Match(rel, false) {
			return nil
		}
		return fn(path, rel)
	})
}
