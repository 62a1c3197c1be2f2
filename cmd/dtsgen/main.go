// Command dtsgen generates TypeScript declaration files from JSON Schema and
// OpenAPI documents.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/dtsgen/dtsgen"
	"github.com/dtsgen/dtsgen/generator"
	"github.com/dtsgen/dtsgen/internal/mcpserver"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "version", "-v", "--version":
		fmt.Printf("dtsgen v%s\n", dtsgen.Version())
	case "help", "-h", "--help":
		printUsage()
	case "generate":
		if err := handleGenerate(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := handleServe(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

// generateFlags contains flags for the generate command
type generateFlags struct {
	output    string
	namespace string
	verbose   bool
	stats     bool
}

func setupGenerateFlags() (*flag.FlagSet, *generateFlags) {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	flags := &generateFlags{}

	fs.StringVar(&flags.output, "o", "", "output file for generated declarations (default: stdout)")
	fs.StringVar(&flags.output, "output", "", "output file for generated declarations (default: stdout)")
	fs.StringVar(&flags.namespace, "n", "", "root namespace name (default: derived from each document's base URL)")
	fs.StringVar(&flags.namespace, "namespace", "", "root namespace name (default: derived from each document's base URL)")
	fs.BoolVar(&flags.verbose, "verbose", false, "log resolution and generation progress to stderr")
	fs.BoolVar(&flags.stats, "stats", false, "print generation statistics to stderr")

	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: dtsgen generate [flags] <file|url|glob>...\n\n")
		_, _ = fmt.Fprintf(output, "Generate TypeScript declarations from JSON Schema or OpenAPI documents.\n\n")
		_, _ = fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, "\nExamples:\n")
		_, _ = fmt.Fprintf(output, "  dtsgen generate schema.json\n")
		_, _ = fmt.Fprintf(output, "  dtsgen generate -o types.d.ts 'schemas/*.json'\n")
		_, _ = fmt.Fprintf(output, "  dtsgen generate https://example.com/api/openapi.yaml\n")
	}

	return fs, flags
}

func handleGenerate(args []string) error {
	fs, flags := setupGenerateFlags()

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("generate command requires at least one file path, URL, or glob")
	}

	inputs, err := expandInputs(fs.Args())
	if err != nil {
		return err
	}

	opts := make([]generator.Option, 0, len(inputs)+2)
	for _, input := range inputs {
		opts = append(opts, generator.WithFilePath(input))
	}
	if flags.namespace != "" {
		opts = append(opts, generator.WithRootNamespace(flags.namespace))
	}
	if flags.verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		opts = append(opts, generator.WithLogger(dtsgen.NewSlogAdapter(logger)))
	}

	result, err := generator.GenerateWithOptions(opts...)
	if err != nil {
		return err
	}

	if flags.output != "" {
		if err := result.WriteFile(flags.output); err != nil {
			return err
		}
	} else {
		fmt.Print(result.Declarations)
	}

	if flags.stats {
		fmt.Fprintf(os.Stderr, "Schemas: %d\n", result.SchemaCount)
		fmt.Fprintf(os.Stderr, "Declarations: %d\n", result.DeclarationCount)
		fmt.Fprintf(os.Stderr, "Operations: %d\n", result.OperationCount)
		fmt.Fprintf(os.Stderr, "Load Time: %v\n", result.LoadTime)
		fmt.Fprintf(os.Stderr, "Generate Time: %v\n", result.GenerateTime)
	}
	return nil
}

// expandInputs expands glob patterns in the argument list. URLs and plain
// paths pass through unchanged; a glob pattern matching nothing is an error.
func expandInputs(args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") ||
			!strings.ContainsAny(arg, "*?[") {
			inputs = append(inputs, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match pattern %q", arg)
		}
		inputs = append(inputs, matches...)
	}
	return inputs, nil
}

func handleServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.Usage = func() {
		output := fs.Output()
		_, _ = fmt.Fprintf(output, "Usage: dtsgen serve\n\n")
		_, _ = fmt.Fprintf(output, "Start an MCP server over stdio exposing generate and inspect tools.\n")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return mcpserver.Run(ctx)
}

func printUsage() {
	fmt.Println(`dtsgen - TypeScript declaration generator for JSON Schema and OpenAPI

Usage:
  dtsgen <command> [options]

Commands:
  generate    Generate TypeScript declarations from schema files or URLs
  serve       Start an MCP server over stdio
  version     Show version information
  help        Show this help message

Examples:
  dtsgen generate schema.json
  dtsgen generate -o types.d.ts swagger.yaml
  dtsgen generate https://example.com/api/openapi.yaml
  dtsgen serve

Run 'dtsgen <command> --help' for more information on a command.`)
}
