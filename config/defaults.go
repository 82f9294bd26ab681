package config

// DefaultConfig returns configuration with sensible defaults.
// These defaults are used when no config file exists or when
// config file is missing specific fields.
func DefaultConfig() *Config {
	indent := true
	search := true
	return &Config{
		Accessors: AccessorConfig{
			Naming:         Camel,
			GetterLocation: Inline,
			SetterLocation: Inline,
		},
		Definitions: DefinitionConfig{
			Location:   SourceFile,
			BraceStyle: NewLine,
		},
		Formatting: FormattingConfig{
			IndentNamespaceBody: &indent,
		},
		Pairing: PairingConfig{
			HeaderExtensions: []string{".h", ".hpp", ".hh", ".hxx", ".h++"},
			SourceExtensions: []string{".cpp", ".cc", ".cxx", ".c++", ".c"},
			SearchWorkspace:  &search,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Merge merges loaded config with defaults.
// Values from loaded config take precedence over defaults.
// Returns a new Config with merged values.
func Merge(loaded, defaults *Config) *Config {
	result := &Config{}

	result.Accessors = defaults.Accessors
	if loaded.Accessors.Naming != "" {
		result.Accessors.Naming = loaded.Accessors.Naming
	}
	if loaded.Accessors.GetterLocation != "" {
		result.Accessors.GetterLocation = loaded.Accessors.GetterLocation
	}
	if loaded.Accessors.SetterLocation != "" {
		result.Accessors.SetterLocation = loaded.Accessors.SetterLocation
	}

	result.Definitions = defaults.Definitions
	if loaded.Definitions.Location != "" {
		result.Definitions.Location = loaded.Definitions.Location
	}
	if loaded.Definitions.BraceStyle != "" {
		result.Definitions.BraceStyle = loaded.Definitions.BraceStyle
	}

	result.Formatting = defaults.Formatting
	if loaded.Formatting.IndentNamespaceBody != nil {
		result.Formatting.IndentNamespaceBody = loaded.Formatting.IndentNamespaceBody
	}
	if loaded.Formatting.Indent != "" {
		result.Formatting.Indent = loaded.Formatting.Indent
	}

	result.Pairing = defaults.Pairing
	if len(loaded.Pairing.HeaderExtensions) > 0 {
		result.Pairing.HeaderExtensions = loaded.Pairing.HeaderExtensions
	}
	if len(loaded.Pairing.SourceExtensions) > 0 {
		result.Pairing.SourceExtensions = loaded.Pairing.SourceExtensions
	}
	if loaded.Pairing.SearchWorkspace != nil {
		result.Pairing.SearchWorkspace = loaded.Pairing.SearchWorkspace
	}

	result.Logging = defaults.Logging
	if loaded.Logging.Level != "" {
		result.Logging.Level = loaded.Logging.Level
	}

	return result
}
