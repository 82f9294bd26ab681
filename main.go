package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/roveo/cppgen/tools"
)

var skipPatterns []string
var lineLimit int

// Settings shared by the generation commands
var (
	configPath string
	logLevel   string
	dryRun     bool
	overrides  configOverrides
)

var rootCmd = &cobra.Command{
	Use:   "cppgen",
	Short: "C++ getter, setter and definition generator",
	Long: `cppgen generates C++ accessors and out-of-line function definitions.
It finds existing declarations and definitions in a header and its paired
source file, picks an insertion point that respects namespaces, access
sections and the file's formatting, and applies all edits at once.

Run "cppgen mcp" to expose the same operations as MCP tools over stdio.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(logLevel)
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as MCP server (communicates via stdio)",
	Long: `Run as an MCP server that communicates via stdio.
Exposes tools: index, generate_accessors, add_definition, find_definition,
switch_header_source.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context(), skipPatterns, lineLimit)
	},
}

var mapCmd = &cobra.Command{
	Use:   "map [path]",
	Short: "Index a directory and print the map to stdout",
	Long: `Index a C++ codebase directory and print a compact listing of its
namespaces, classes, functions and members with their line ranges to stdout.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		filter, _ := cmd.Flags().GetString("filter")
		return runMap(cmd, path, skipPatterns, filter, lineLimit)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()

	// Add --skip flag to root (inherited by all subcommands)
	flags.StringArrayVar(&skipPatterns, "skip", nil,
		"Path prefixes to skip by default (can be specified multiple times)")

	// Add --limit flag to root (inherited by all subcommands)
	flags.IntVar(&lineLimit, "limit", tools.DefaultLineLimit,
		"Maximum lines in output (0 = no limit)")

	flags.StringVar(&configPath, "config", "",
		"Path to config.yaml (default: .cppgen/config.yaml in the working directory or above)")
	flags.StringVar(&logLevel, "log-level", "",
		"Log level: debug, info, warn, error (default: logging.level from config)")
	flags.BoolVarP(&dryRun, "dry-run", "n", false,
		"Print a unified diff instead of writing files")
	overrides.register(rootCmd)

	// Add --filter flag to map command
	mapCmd.Flags().StringP("filter", "f", "",
		"Only show symbols for files matching this path prefix (file or directory)")

	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(mapCmd)
	addCommands(rootCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
