// Package config loads cppgen settings from .cppgen/config.yaml.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the cppgen configuration file
const ConfigFileName = "config.yaml"

// ConfigDirName is the name of the cppgen configuration directory
const ConfigDirName = ".cppgen"

// DefinitionLocation selects where a generated function body goes.
type DefinitionLocation string

const (
	Inline     DefinitionLocation = "inline"
	BelowClass DefinitionLocation = "below_class"
	SourceFile DefinitionLocation = "source_file"
)

// ValidLocations lists the accepted DefinitionLocation values.
var ValidLocations = []DefinitionLocation{Inline, BelowClass, SourceFile}

// BraceStyle selects where the opening brace of a function body goes.
type BraceStyle string

const (
	SameLine           BraceStyle = "same_line"
	NewLine            BraceStyle = "new_line"
	NewLineForCtorDtor BraceStyle = "new_line_for_ctor_dtor"
)

// ValidBraceStyles lists the accepted BraceStyle values.
var ValidBraceStyles = []BraceStyle{SameLine, NewLine, NewLineForCtorDtor}

// NamingStyle selects how accessor names are derived from a member name.
type NamingStyle string

const (
	// Camel produces getX / setX.
	Camel NamingStyle = "camel"
	// Snake produces get_x / set_x.
	Snake NamingStyle = "snake"
	// Bare produces x / setX.
	Bare NamingStyle = "bare"
)

// ValidNamingStyles lists the accepted NamingStyle values.
var ValidNamingStyles = []NamingStyle{Camel, Snake, Bare}

// Config holds all cppgen configuration
type Config struct {
	Accessors   AccessorConfig   `yaml:"accessors"`
	Definitions DefinitionConfig `yaml:"definitions"`
	Formatting  FormattingConfig `yaml:"formatting"`
	Pairing     PairingConfig    `yaml:"pairing"`
	Logging     LoggingConfig    `yaml:"logging"`
}

// AccessorConfig holds getter/setter generation settings
type AccessorConfig struct {
	Naming         NamingStyle        `yaml:"naming"`
	GetterLocation DefinitionLocation `yaml:"getter_location"`
	SetterLocation DefinitionLocation `yaml:"setter_location"`
}

// DefinitionConfig holds settings for generated function definitions
type DefinitionConfig struct {
	Location   DefinitionLocation `yaml:"location"`
	BraceStyle BraceStyle         `yaml:"brace_style"`
}

// FormattingConfig holds text layout settings
type FormattingConfig struct {
	IndentNamespaceBody *bool  `yaml:"indent_namespace_body"`
	Indent              string `yaml:"indent"` // empty means detect from the document
}

// PairingConfig holds header/source matching settings
type PairingConfig struct {
	HeaderExtensions []string `yaml:"header_extensions"`
	SourceExtensions []string `yaml:"source_extensions"`
	SearchWorkspace  *bool    `yaml:"search_workspace"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// IndentNamespaces reports whether namespace bodies are indented.
func (f FormattingConfig) IndentNamespaces() bool {
	return f.IndentNamespaceBody == nil || *f.IndentNamespaceBody
}

// Search reports whether the workspace is searched when no sibling pair exists.
func (p PairingConfig) Search() bool {
	return p.SearchWorkspace == nil || *p.SearchWorkspace
}

// ErrConfigNotFound is returned when no config file can be found
var ErrConfigNotFound = errors.New("config file not found")

// ErrInvalidConfig is returned when config validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads config from .cppgen/config.yaml, falling back to defaults.
// It searches for the config directory starting from workDir and walking up
// the directory tree.
func Load(ctx context.Context, workDir string) (*Config, error) {
	configDir, err := FindConfigDir(workDir)
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFromPath(ctx, filepath.Join(configDir, ConfigFileName))
}

// LoadFromPath reads config from a specific path or afs URL, merges it over the
// defaults and validates the result.
func LoadFromPath(ctx context.Context, path string) (*Config, error) {
	fs := afs.New()
	ok, err := fs.Exists(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if !ok {
		return DefaultConfig(), nil
	}
	data, err := fs.DownloadWithURL(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	loaded := &Config{}
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(loaded, DefaultConfig())
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// FindConfigDir locates the .cppgen directory by walking up from startDir.
func FindConfigDir(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	currentDir := absDir
	for {
		configDir := filepath.Join(currentDir, ConfigDirName)
		info, err := os.Stat(configDir)
		if err == nil && info.IsDir() {
			return configDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", ErrConfigNotFound
		}
		currentDir = parentDir
	}
}

// Validate checks that config values are valid.
func Validate(cfg *Config) error {
	var errs []error

	if !slices.Contains(ValidNamingStyles, cfg.Accessors.Naming) {
		errs = append(errs, fmt.Errorf("%w: accessors.naming must be one of %v, got %q",
			ErrInvalidConfig, ValidNamingStyles, cfg.Accessors.Naming))
	}
	for key, loc := range map[string]DefinitionLocation{
		"accessors.getter_location": cfg.Accessors.GetterLocation,
		"accessors.setter_location": cfg.Accessors.SetterLocation,
	} {
		if !slices.Contains(ValidLocations, loc) {
			errs = append(errs, fmt.Errorf("%w: %s must be one of %v, got %q",
				ErrInvalidConfig, key, ValidLocations, loc))
		}
	}
	if cfg.Definitions.Location != BelowClass && cfg.Definitions.Location != SourceFile {
		errs = append(errs, fmt.Errorf("%w: definitions.location must be %q or %q, got %q",
			ErrInvalidConfig, BelowClass, SourceFile, cfg.Definitions.Location))
	}
	if !slices.Contains(ValidBraceStyles, cfg.Definitions.BraceStyle) {
		errs = append(errs, fmt.Errorf("%w: definitions.brace_style must be one of %v, got %q",
			ErrInvalidConfig, ValidBraceStyles, cfg.Definitions.BraceStyle))
	}
	for _, ext := range append(slices.Clone(cfg.Pairing.HeaderExtensions), cfg.Pairing.SourceExtensions...) {
		if len(ext) < 2 || ext[0] != '.' {
			errs = append(errs, fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidConfig, ext))
		}
	}
	if len(cfg.Pairing.HeaderExtensions) == 0 || len(cfg.Pairing.SourceExtensions) == 0 {
		errs = append(errs, fmt.Errorf("%w: pairing needs at least one header and one source extension", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ParseDefinitionLocation validates a location given on the command line or
// by a tool call. An empty string is returned as is and means "use the
// configured default".
func ParseDefinitionLocation(s string) (DefinitionLocation, error) {
	return parseChoice(s, ValidLocations, "location")
}

// ParseNamingStyle validates a naming style override.
func ParseNamingStyle(s string) (NamingStyle, error) {
	return parseChoice(s, ValidNamingStyles, "naming style")
}

// ParseBraceStyle validates a brace style override.
func ParseBraceStyle(s string) (BraceStyle, error) {
	return parseChoice(s, ValidBraceStyles, "brace style")
}

func parseChoice[T ~string](s string, valid []T, what string) (T, error) {
	if s == "" || slices.Contains(valid, T(s)) {
		return T(s), nil
	}
	return "", fmt.Errorf("%w: %s must be one of %v, got %q", ErrInvalidConfig, what, valid, s)
}
