package languages

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

var registry = make(map[string]Language)

// Register adds a language to the registry
func Register(lang Language) {
	for _, ext := range lang.Extensions() {
		registry[ext] = lang
	}
}

// GetLanguageForFile returns the Language for a file based on its extension.
// Returns nil if the file type is not supported.
func GetLanguageForFile(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	return registry[ext]
}

// SupportedExtensions returns all registered file extensions, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// RegisteredLanguages returns the names of all registered languages
func RegisteredLanguages() []string {
	seen := make(map[string]bool)
	var names []string
	for _, lang := range registry {
		if !seen[lang.Name()] {
			seen[lang.Name()] = true
			names = append(names, lang.Name())
		}
	}
	return names
}

// Provider discovers symbols using the registered language for a path.
type Provider struct{}

// DiscoverFile returns the symbol tree for content read from path.
func (Provider) DiscoverFile(ctx context.Context, path string, content []byte) (*CodeRange, error) {
	lang := GetLanguageForFile(path)
	if lang == nil {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}
	root, err := lang.Discover(ctx, content)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("file", path).Str("language", lang.Name()).Int("symbols", len(root.Children)).Msg("discovered symbols")
	return root, nil
}
