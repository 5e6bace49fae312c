package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/toyz/synapse/internal/annotations"
	synerrors "github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/internal/registry"
	"github.com/toyz/synapse/internal/scanner"
	"github.com/toyz/synapse/internal/templates"
	"github.com/toyz/synapse/internal/utils"
	"github.com/toyz/synapse/pkg/synapse"
)

// Generator coordinates the CLI generation process
type Generator struct {
	fileReader     *utils.FileReader
	moduleResolver *ModuleResolver
	diagnostics    *utils.DiagnosticSystem
	logger         *zap.Logger
	output         io.Writer
	summary        GenerationSummary
	collector      *synapse.MiddlewareCollector
}

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithLogger sets the structured logger
func WithLogger(logger *zap.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithOutput sets where -dump writes the collected table
func WithOutput(w io.Writer) GeneratorOption {
	return func(g *Generator) {
		g.output = w
	}
}

// WithModuleResolver replaces the resolver, mainly to pin the module root
func WithModuleResolver(resolver *ModuleResolver) GeneratorOption {
	return func(g *Generator) {
		g.moduleResolver = resolver
	}
}

// NewGenerator creates a new CLI generator
func NewGenerator(diagnostics *utils.DiagnosticSystem, opts ...GeneratorOption) *Generator {
	fileReader := utils.NewFileReader()
	g := &Generator{
		fileReader:     fileReader,
		moduleResolver: NewModuleResolver(fileReader),
		diagnostics:    diagnostics,
		logger:         zap.NewNop(),
		output:         os.Stdout,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.diagnostics == nil {
		g.diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return g
}

// GetSummary returns the summary of the last run
func (g *Generator) GetSummary() GenerationSummary {
	return g.summary
}

// Collector returns the collector filled by the last run
func (g *Generator) Collector() *synapse.MiddlewareCollector {
	return g.collector
}

// Run scans the configured directories, replays every declaration through
// a fresh collector and writes one registration file per annotated package
func (g *Generator) Run(config Config) error {
	startTime := time.Now()
	g.summary = GenerationSummary{}
	if config.OutputFile == "" {
		config.OutputFile = utils.DefaultOutputFile
	}

	g.logger.Debug("starting generation",
		zap.Strings("directories", config.Directories),
		zap.Bool("strict", config.Strict),
		zap.String("output_file", config.OutputFile),
	)

	moduleName, err := g.moduleResolver.ResolveModuleName(config.ModuleName)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: "failed to resolve module name",
			Cause:   err,
			Suggestions: []string{
				"Run synapse inside a module, next to or below its go.mod",
				"Or name the module explicitly with -module",
			},
		}
	}
	g.diagnostics.Verbose("Module: %s", moduleName)

	fileProcessor := utils.NewFileProcessor(config.OutputFile)
	packageDirs, err := NewDirectoryScanner(fileProcessor).ScanDirectories(config.Directories)
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			Message: "failed to scan directories",
			Cause:   err,
			Suggestions: []string{
				"Every directory argument must exist and be readable",
			},
		}
	}

	if len(packageDirs) == 0 {
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: "no Go packages found in specified directories",
			Suggestions: []string{
				"Point synapse at directories holding non-test .go files",
				"Use the './...' pattern to scan subdirectories",
			},
		}
	}

	g.diagnostics.PhaseHeader("Scanning")
	packages, classes, err := g.scanPackages(moduleName, packageDirs, config.OutputFile)
	if err != nil {
		return err
	}
	g.summary.PackagesProcessed = len(packages)

	g.collector = synapse.NewMiddlewareCollector(synapse.WithCollectorLogger(g.logger))
	for _, pkg := range packages {
		scanner.Apply(g.collector, pkg.Declarations)
		g.summary.DeclarationsFound += len(pkg.Declarations)
	}

	if err := g.validateClasses(packages, classes); err != nil {
		if config.Strict {
			return err
		}
		g.summary.Warnings = warnings(err)
	}

	if config.Dump {
		return g.dump()
	}

	g.diagnostics.PhaseHeader("Generating")
	for _, pkg := range packages {
		if err := g.writePackage(pkg, config.OutputFile); err != nil {
			return err
		}
	}

	g.summary.Duration = time.Since(startTime)
	g.logger.Info("generation finished",
		zap.Int("packages", g.summary.PackagesProcessed),
		zap.Int("declarations", g.summary.DeclarationsFound),
		zap.Int("files", len(g.summary.GeneratedFiles)),
		zap.Duration("duration", g.summary.Duration),
	)
	return nil
}

// scanPackages scans every directory and registers the struct types found
func (g *Generator) scanPackages(moduleName string, packageDirs []string, outputFile string) ([]*models.PackageMetadata, registry.ClassRegistry, error) {
	sourceScanner := scanner.NewScanner(scanner.WithSkipFiles(outputFile))
	classes := registry.NewClassRegistry()

	var packages []*models.PackageMetadata
	for _, dir := range packageDirs {
		importPath, err := g.moduleResolver.BuildPackagePath(moduleName, dir)
		if err != nil {
			return nil, nil, &models.GeneratorError{
				Type:    models.ErrorTypeFileSystem,
				File:    dir,
				Message: "failed to build import path",
				Cause:   err,
			}
		}

		g.logger.Debug("scanning package", zap.String("dir", dir), zap.String("import_path", importPath))
		metadata, err := sourceScanner.ScanDirectory(dir, importPath)
		if err != nil {
			return nil, nil, annotationFailure(dir, err)
		}

		for _, class := range metadata.Classes {
			if err := classes.Register(class); err != nil {
				return nil, nil, &models.GeneratorError{
					Type:    models.ErrorTypeValidation,
					File:    class.File,
					Line:    class.Line,
					Message: "duplicate class",
					Cause:   err,
				}
			}
		}

		g.diagnostics.PhaseItem(fmt.Sprintf("%s (%d declarations)", importPath, len(metadata.Declarations)))
		packages = append(packages, metadata)
	}

	g.summary.ClassesFound = len(classes.Names())
	return packages, classes, nil
}

// annotationFailure turns a scan error into a user-facing error, keeping the
// location of the first annotation problem
func annotationFailure(dir string, err error) error {
	genErr := &models.GeneratorError{
		Type:    models.ErrorTypeAnnotationSyntax,
		File:    dir,
		Message: "failed to scan package",
		Cause:   err,
		Suggestions: []string{
			"Single format: //synapse::middleware Auth",
			"Group format: //synapse::middlewares Auth,Logging",
		},
	}

	var annotationErr annotations.AnnotationError
	if errors.As(err, &annotationErr) {
		loc := annotationErr.Location()
		genErr.File = loc.File
		genErr.Line = loc.Line
		if hint := annotationErr.Suggestion(); hint != "" {
			genErr.Suggestions = append([]string{hint}, genErr.Suggestions...)
		}
	}
	return genErr
}

// validateClasses checks every declared middleware class against the
// scanned tree. Outside strict mode the failures only become warnings.
func (g *Generator) validateClasses(packages []*models.PackageMetadata, classes registry.ClassRegistry) error {
	var all []models.Declaration
	for _, pkg := range packages {
		all = append(all, pkg.Declarations...)
	}

	if err := classes.ValidateDeclarations(all); err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeValidation,
			Message: "unknown middleware classes in strict mode",
			Cause:   err,
			Suggestions: []string{
				"Include the packages declaring the middleware types in the scanned directories",
				"Run without --strict to allow classes from outside the scanned tree",
			},
		}
	}
	return nil
}

// warnings flattens a class validation failure into one line per problem
func warnings(err error) []string {
	var list synerrors.List
	if !errors.As(err, &list) {
		return []string{err.Error()}
	}
	lines := make([]string, 0, len(list))
	for _, e := range list {
		lines = append(lines, e.Error())
	}
	return lines
}

func (g *Generator) dump() error {
	data, err := sonic.ConfigStd.MarshalIndent(g.collector.Collector(), "", "  ")
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			Message: "failed to encode middleware table",
			Cause:   err,
		}
	}
	_, err = fmt.Fprintln(g.output, string(data))
	return err
}

// writePackage writes the registration file of an annotated package and
// removes a stale one from a package that lost its annotations
func (g *Generator) writePackage(pkg *models.PackageMetadata, outputFile string) error {
	target := filepath.Join(pkg.PackagePath, outputFile)

	if !pkg.HasDeclarations() {
		if _, err := os.Stat(target); err == nil {
			if err := os.Remove(target); err != nil {
				return &models.GeneratorError{
					Type:    models.ErrorTypeFileSystem,
					File:    target,
					Message: "failed to remove stale generated file",
					Cause:   err,
				}
			}
			g.summary.RemovedFiles = append(g.summary.RemovedFiles, target)
			g.diagnostics.PhaseProgress(fmt.Sprintf("Removed %s", target))
		}
		return nil
	}

	source, err := templates.GenerateMiddlewareInit(pkg, "")
	if err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeGeneration,
			File:    target,
			Message: "failed to render registration file",
			Cause:   err,
		}
	}

	g.diagnostics.PhaseProgress(fmt.Sprintf("Writing %s", target))
	if err := os.WriteFile(target, []byte(source), 0644); err != nil {
		return &models.GeneratorError{
			Type:    models.ErrorTypeFileSystem,
			File:    target,
			Message: "failed to write registration file",
			Cause:   err,
			Suggestions: []string{
				"Check write permissions for the package directory",
			},
		}
	}

	g.summary.GeneratedFiles = append(g.summary.GeneratedFiles, target)
	return nil
}
