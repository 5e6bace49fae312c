package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/toyz/synapse/internal/cli"
	"github.com/toyz/synapse/internal/logging"
	"github.com/toyz/synapse/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	module     string
	configPath string
	outputFile string
	logLevel   string
	logFormat  string
	verbose    bool
	quiet      bool
	clean      bool
	strict     bool
	dump       bool
	noColor    bool
	help       bool
}

func newFlagSet(opts *options, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("synapse", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.module, "module", "", "Custom module name for imports (defaults to go.mod module)")
	fs.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&opts.outputFile, "output", "", "Name of the generated file in each package (default "+utils.DefaultOutputFile+")")
	fs.StringVar(&opts.logLevel, "log-level", "", "Structured log level: debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "", "Structured log format: console or json")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output and detailed error reporting")
	fs.BoolVar(&opts.quiet, "quiet", false, "Only show errors and final results")
	fs.BoolVar(&opts.clean, "clean", false, "Delete the generated files from the specified directories")
	fs.BoolVar(&opts.strict, "strict", false, "Fail on middleware classes that are not declared in the scanned packages")
	fs.BoolVar(&opts.dump, "dump", false, "Print the collected middleware table as JSON instead of writing files")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable coloured output (NO_COLOR is honoured as well)")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: synapse [options] <directory-paths...>\n\n")
		fmt.Fprintf(stderr, "Synapse Middleware Generator\n")
		fmt.Fprintf(stderr, "Scans Go files for synapse:: annotations and generates middleware registrations.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nArguments:\n")
		fmt.Fprintf(stderr, "  directory-paths    One or more directories to scan for annotated Go files\n")
		fmt.Fprintf(stderr, "                     Supports Go-style patterns like './...' for recursive scanning\n")
		fmt.Fprintf(stderr, "\nAnnotations:\n")
		fmt.Fprintf(stderr, "  //synapse::middleware Auth            Single middleware, prepended\n")
		fmt.Fprintf(stderr, "  //synapse::middlewares Auth,Logging   Middleware group, appended\n")
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  synapse ./...                                  # Scan everything recursively\n")
		fmt.Fprintf(stderr, "  synapse --strict ./internal/...               # Reject unknown middleware classes\n")
		fmt.Fprintf(stderr, "  synapse --dump ./controllers                   # Print the collected table\n")
		fmt.Fprintf(stderr, "  synapse --config synapse.yaml                  # Read settings from a file\n")
		fmt.Fprintf(stderr, "  synapse --clean ./...                          # Delete the generated files\n")
	}
	return fs
}

// run executes the CLI and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	var opts options
	fs := newFlagSet(&opts, stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if opts.help {
		fs.Usage()
		return 0
	}

	config, err := loadConfig(fs, opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		if len(fs.Args()) == 0 && opts.configPath == "" {
			fs.Usage()
		}
		return 1
	}

	// stdout carries the JSON table when dumping
	diagnosticsOut := stdout
	if config.Dump {
		diagnosticsOut = stderr
	}

	var level utils.DiagnosticLevel
	switch {
	case opts.quiet:
		level = utils.DiagnosticError
	case opts.verbose:
		level = utils.DiagnosticVerbose
	default:
		level = utils.DiagnosticInfo
	}
	diagnostics := utils.NewDiagnosticSystemWithWriters(level, diagnosticsOut, stderr)
	if opts.noColor {
		diagnostics.SetColors(false)
		color.NoColor = true
	}

	logger, err := logging.NewWithWriter(config.Log.Level, config.Log.Format, stderr)
	if err != nil {
		diagnostics.Error("Invalid log configuration: %v", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if opts.clean {
		return clean(config, diagnostics, logger)
	}

	diagnostics.Header("Generating middleware registrations")
	if opts.verbose {
		diagnostics.Verbose("Configuration:")
		diagnostics.Indent()
		diagnostics.List("Target directories: %s", strings.Join(config.Directories, ", "))
		if config.ModuleName != "" {
			diagnostics.List("Custom module: %s", config.ModuleName)
		}
		diagnostics.List("Output file: %s", config.OutputFile)
		diagnostics.List("Strict: %t", config.Strict)
		diagnostics.Unindent()
	}

	generator := cli.NewGenerator(diagnostics,
		cli.WithLogger(logger),
		cli.WithOutput(stdout),
	)

	if err := generator.Run(config); err != nil {
		reporter := cli.NewDiagnosticReporterTo(opts.verbose, stderr)
		reporter.ReportError(err)
		return 1
	}

	summary := generator.GetSummary()
	if !opts.quiet {
		reporter := cli.NewDiagnosticReporterTo(opts.verbose, stderr)
		for _, warning := range summary.Warnings {
			reporter.ReportWarning(warning)
		}
	}

	if config.Dump {
		return 0
	}

	diagnostics.Summary("Generation Complete!", summary.Stats())
	if opts.verbose {
		cli.NewDiagnosticReporterTo(true, diagnosticsOut).ReportSuccess(summary)
	}
	diagnostics.GenerationComplete()
	return 0
}

// loadConfig merges the optional config file with the flags, flags winning
func loadConfig(fs *flag.FlagSet, opts options) (cli.Config, error) {
	loader := cli.NewConfigLoader()

	config := loader.Defaults()
	if opts.configPath != "" {
		loaded, err := loader.LoadFromFile(opts.configPath)
		if err != nil {
			return cli.Config{}, err
		}
		config = loaded
	}

	if args := fs.Args(); len(args) > 0 {
		config.Directories = args
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "module":
			config.ModuleName = opts.module
		case "output":
			config.OutputFile = opts.outputFile
		case "strict":
			config.Strict = opts.strict
		case "log-level":
			config.Log.Level = opts.logLevel
		case "log-format":
			config.Log.Format = opts.logFormat
		}
	})
	config.Verbose = opts.verbose
	config.Dump = opts.dump

	if len(config.Directories) == 0 {
		return cli.Config{}, fmt.Errorf("at least one directory path is required")
	}
	if err := loader.Validate(config); err != nil {
		return cli.Config{}, err
	}
	return config, nil
}

func clean(config cli.Config, diagnostics *utils.DiagnosticSystem, logger *zap.Logger) int {
	diagnostics.Header("Removing generated files")

	cleaner := cli.NewCleaner(utils.NewFileProcessor(config.OutputFile))
	removed, err := cleaner.CleanGeneratedFiles(config.Directories)
	for _, file := range removed {
		diagnostics.PhaseProgress("Removed " + file)
		logger.Debug("removed generated file", zap.String("file", file))
	}
	if err != nil {
		diagnostics.Error("Clean operation failed: %v", err)
		return 1
	}

	diagnostics.Success("Removed %d generated file(s)", len(removed))
	return 0
}
