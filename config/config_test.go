package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/viant/afs"
)

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	dir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	if err := Validate(DefaultConfig()); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadWithoutConfigReturnsDefaults(t *testing.T) {
	cfg, err := Load(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Accessors.Naming != Camel {
		t.Errorf("expected default naming %q, got %q", Camel, cfg.Accessors.Naming)
	}
	if !cfg.Formatting.IndentNamespaces() {
		t.Error("expected namespace bodies to be indented by default")
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, `
accessors:
  naming: snake
  getter_location: below_class
definitions:
  brace_style: same_line
formatting:
  indent_namespace_body: false
`)
	nested := filepath.Join(root, "src", "lib")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(context.Background(), nested)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Accessors.Naming != Snake {
		t.Errorf("expected naming snake, got %q", cfg.Accessors.Naming)
	}
	if cfg.Accessors.GetterLocation != BelowClass {
		t.Errorf("expected getter location below_class, got %q", cfg.Accessors.GetterLocation)
	}
	if cfg.Accessors.SetterLocation != Inline {
		t.Errorf("expected default setter location, got %q", cfg.Accessors.SetterLocation)
	}
	if cfg.Definitions.BraceStyle != SameLine {
		t.Errorf("expected same_line, got %q", cfg.Definitions.BraceStyle)
	}
	if cfg.Definitions.Location != SourceFile {
		t.Errorf("expected default definition location, got %q", cfg.Definitions.Location)
	}
	if cfg.Formatting.IndentNamespaces() {
		t.Error("expected namespace indentation to be disabled")
	}
	if len(cfg.Pairing.HeaderExtensions) == 0 {
		t.Error("expected default header extensions")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
accessors:
  naming: hungarian
definitions:
  location: inline
`)

	_, err := LoadFromPath(context.Background(), path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, "accessors: [unterminated")

	if _, err := LoadFromPath(context.Background(), path); err == nil {
		t.Error("expected parse error")
	}
}

func TestFindConfigDirNotFound(t *testing.T) {
	_, err := FindConfigDir(t.TempDir())
	if err == nil {
		// a .cppgen directory above the temp dir would make this pass legitimately
		t.Skip("found a config directory above the temp dir")
	}
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestParseChoices(t *testing.T) {
	if loc, err := ParseDefinitionLocation(""); err != nil || loc != "" {
		t.Errorf("empty location = %q, %v", loc, err)
	}
	if loc, err := ParseDefinitionLocation("below_class"); err != nil || loc != BelowClass {
		t.Errorf("below_class = %q, %v", loc, err)
	}
	if _, err := ParseDefinitionLocation("elsewhere"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
	if style, err := ParseNamingStyle("snake"); err != nil || style != Snake {
		t.Errorf("snake = %q, %v", style, err)
	}
	if _, err := ParseBraceStyle("k&r"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadFromPathMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Accessors.Naming != Camel {
		t.Errorf("expected default naming, got %q", cfg.Accessors.Naming)
	}
}

func TestLoadFromPathMemoryURL(t *testing.T) {
	ctx := context.Background()
	url := "mem://localhost/cppgen-config-test/config.yaml"
	fs := afs.New()
	if err := fs.Upload(ctx, url, 0644, strings.NewReader("accessors:\n  naming: snake\n")); err != nil {
		t.Fatalf("failed to upload config: %v", err)
	}
	t.Cleanup(func() { _ = fs.Delete(ctx, url) })

	cfg, err := LoadFromPath(ctx, url)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if cfg.Accessors.Naming != Snake {
		t.Errorf("naming = %q, want snake", cfg.Accessors.Naming)
	}
}
