package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/roveo/cppgen/config"
	"github.com/roveo/cppgen/document"
	"github.com/roveo/cppgen/refactor"
	"github.com/roveo/cppgen/tools"
)

// configOverrides holds command line values that take precedence over the
// config file.
type configOverrides struct {
	naming         string
	getterLocation string
	setterLocation string
	braceStyle     string
}

func (o *configOverrides) register(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.naming, "naming", "",
		"Accessor naming style: camel, snake or bare")
	flags.StringVar(&o.getterLocation, "getter-location", "",
		"Where getter bodies go: inline, below_class or source_file")
	flags.StringVar(&o.setterLocation, "setter-location", "",
		"Where setter bodies go: inline, below_class or source_file")
	flags.StringVar(&o.braceStyle, "brace-style", "",
		"Opening brace of new definitions: same_line, new_line or new_line_for_ctor_dtor")
}

func (o *configOverrides) apply(cfg *config.Config) error {
	naming, err := config.ParseNamingStyle(o.naming)
	if err != nil {
		return err
	}
	getter, err := config.ParseDefinitionLocation(o.getterLocation)
	if err != nil {
		return err
	}
	setter, err := config.ParseDefinitionLocation(o.setterLocation)
	if err != nil {
		return err
	}
	braces, err := config.ParseBraceStyle(o.braceStyle)
	if err != nil {
		return err
	}

	if naming != "" {
		cfg.Accessors.Naming = naming
	}
	if getter != "" {
		cfg.Accessors.GetterLocation = getter
	}
	if setter != "" {
		cfg.Accessors.SetterLocation = setter
	}
	if braces != "" {
		cfg.Definitions.BraceStyle = braces
	}
	return nil
}

// loadEngine reads the configuration, applies flag overrides and returns an
// engine rooted at the project directory: the parent of .cppgen when one is
// found, the working directory otherwise.
func loadEngine(ctx context.Context) (*refactor.Engine, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	root := cwd
	var cfg *config.Config
	if configPath != "" {
		path := configPath
		if !strings.Contains(path, "://") {
			if path, err = filepath.Abs(path); err != nil {
				return nil, fmt.Errorf("failed to resolve config path: %w", err)
			}
		}
		cfg, err = config.LoadFromPath(ctx, path)
	} else {
		if dir, findErr := config.FindConfigDir(cwd); findErr == nil {
			root = filepath.Dir(dir)
		}
		cfg, err = config.Load(ctx, cwd)
	}
	if err != nil {
		return nil, err
	}

	if err := overrides.apply(cfg); err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if logLevel == "" {
		if err := applyLogLevel(cfg.Logging.Level); err != nil {
			return nil, err
		}
	}

	log.Debug().Str("root", root).Msg("engine ready")
	return refactor.NewEngine(cfg, root), nil
}

// target selects the symbol a command works on
type target struct {
	symbol string
	line   int
	column int
}

func (t *target) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&t.symbol, "symbol", "s", "",
		"Symbol name, optionally qualified (e.g. Widget::m_size)")
	cmd.Flags().IntVarP(&t.line, "line", "l", 0, "1-based line of the symbol")
	cmd.Flags().IntVarP(&t.column, "column", "c", 0, "1-based column of the symbol")
}

func (t *target) request(file string) (refactor.Request, error) {
	return tools.NewRequest(file, t.symbol, t.line, t.column)
}

func newAccessorCmd(use, short string, typ refactor.AccessorType) *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   use + " <file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			req, err := t.request(args[0])
			if err != nil {
				return err
			}
			res, err := engine.GenerateAccessors(cmd.Context(), req, typ)
			if err != nil {
				return err
			}
			return commit(cmd, engine, res)
		},
	}
	t.register(cmd)
	return cmd
}

func newDefineCmd() *cobra.Command {
	var t target
	var location string
	cmd := &cobra.Command{
		Use:   "define <file>",
		Short: "Add an empty out-of-line definition for a function declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := config.ParseDefinitionLocation(location)
			if err != nil {
				return err
			}
			engine, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			req, err := t.request(args[0])
			if err != nil {
				return err
			}
			res, err := engine.AddDefinition(cmd.Context(), req, loc)
			if err != nil {
				return err
			}
			return commit(cmd, engine, res)
		},
	}
	t.register(cmd)
	cmd.Flags().StringVar(&location, "location", "",
		"below_class or source_file (default: definitions.location from config)")
	return cmd
}

func newFindCmd() *cobra.Command {
	var t target
	cmd := &cobra.Command{
		Use:   "find <file>",
		Short: "Print the definition of a function declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			req, err := t.request(args[0])
			if err != nil {
				return err
			}
			res, err := engine.FindDefinition(cmd.Context(), req)
			if err != nil {
				return err
			}
			text, err := tools.DescribeDefinition(cmd.Context(), engine.Store, res)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	t.register(cmd)
	return cmd
}

func newSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <file>",
		Short: "Print the source file of a header, or the header of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := loadEngine(cmd.Context())
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			paired, err := engine.SwitchHeaderSource(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), paired)
			return nil
		},
	}
}

func addCommands(root *cobra.Command) {
	root.AddCommand(
		newAccessorCmd("getter", "Generate a getter for a member variable", refactor.Getter),
		newAccessorCmd("setter", "Generate a setter for a member variable", refactor.Setter),
		newAccessorCmd("accessors", "Generate a getter and a setter for a member variable", refactor.Both),
		newDefineCmd(),
		newFindCmd(),
		newSwitchCmd(),
	)
}

// commit applies or previews the result and prints a summary
func commit(cmd *cobra.Command, engine *refactor.Engine, res *refactor.Result) error {
	text, err := tools.Commit(cmd.Context(), engine, res, dryRun)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), text)
	return nil
}

func runMap(cmd *cobra.Command, path string, skipPatterns []string, filter string, lineLimit int) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	files, err := tools.IndexDirectory(cmd.Context(), document.NewStore(), path)
	if err != nil {
		return fmt.Errorf("failed to index directory: %w", err)
	}

	output := tools.FormatCodemap(files, tools.FormatOptions{
		SkipPatterns: skipPatterns,
		Filter:       filter,
		LineLimit:    lineLimit,
	})
	if output == "" {
		output = tools.NoSymbolsMessage() + "\n"
	}

	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}
