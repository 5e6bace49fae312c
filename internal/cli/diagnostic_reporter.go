package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/toyz/synapse/internal/annotations"
	synerrors "github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
)

// GenerationSummary contains information about the generation process
type GenerationSummary struct {
	PackagesProcessed int
	DeclarationsFound int
	ClassesFound      int
	GeneratedFiles    []string
	RemovedFiles      []string
	// Warnings lists classes that could not be verified outside strict mode
	Warnings          []string
	Duration          time.Duration
}

// Stats returns the summary as labelled values for display
func (s GenerationSummary) Stats() map[string]interface{} {
	return map[string]interface{}{
		"Packages processed": s.PackagesProcessed,
		"Declarations found": s.DeclarationsFound,
		"Classes found":      s.ClassesFound,
		"Files generated":    len(s.GeneratedFiles),
		"Files removed":      len(s.RemovedFiles),
		"Warnings":           len(s.Warnings),
	}
}

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a reporter writing to stderr
func NewDiagnosticReporter(verbose bool) *DiagnosticReporter {
	return NewDiagnosticReporterTo(verbose, os.Stderr)
}

// NewDiagnosticReporterTo creates a reporter writing to out
func NewDiagnosticReporterTo(verbose bool, out io.Writer) *DiagnosticReporter {
	return &DiagnosticReporter{
		verbose: verbose,
		out:     out,
	}
}

// ReportWarning prints a single warning line, marked with a yellow "!"
func (r *DiagnosticReporter) ReportWarning(message string) {
	color.New(color.FgYellow, color.Bold).Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err with every location, hint and cause it carries
func (r *DiagnosticReporter) ReportError(err error) {
	fmt.Fprintf(r.out, "\nERROR: Code Generation Failed\n")
	fmt.Fprintf(r.out, "=============================\n\n")

	var genErr *models.GeneratorError
	if errors.As(err, &genErr) {
		r.reportGeneratorError(genErr)
	} else {
		fmt.Fprintf(r.out, "Message: %s\n\n", err.Error())
	}

	r.reportDetails(err)
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) reportGeneratorError(genErr *models.GeneratorError) {
	errorTypeStr := errorTitle(genErr.Type)
	fmt.Fprintf(r.out, "Type: %s\n", errorTypeStr)
	fmt.Fprintf(r.out, "%s\n\n", strings.Repeat("-", len(errorTypeStr)+6))

	fmt.Fprintf(r.out, "Message: %s\n\n", genErr.Message)

	if genErr.File != "" {
		if genErr.Line > 0 {
			fmt.Fprintf(r.out, "Location: %s:%d\n\n", genErr.File, genErr.Line)
		} else {
			fmt.Fprintf(r.out, "File: %s\n\n", genErr.File)
		}
	}

	if len(genErr.Suggestions) > 0 {
		r.printSuggestions(genErr.Suggestions)
	}

	if r.verbose && genErr.Cause != nil {
		r.printErrorChain(genErr.Cause)
	}
}

// reportDetails lists the individual problems collected behind err
func (r *DiagnosticReporter) reportDetails(err error) {
	var problems []string

	var multiAnnotation *annotations.MultipleAnnotationErrors
	var list synerrors.List
	var annotationErr annotations.AnnotationError
	switch {
	case errors.As(err, &list):
		for _, e := range list {
			problems = append(problems, e.Error())
			for _, hint := range e.Hints {
				problems = append(problems, "  hint: "+hint)
			}
		}
	case errors.As(err, &multiAnnotation):
		for _, e := range multiAnnotation.Errors {
			problems = append(problems, e.Error())
		}
	case errors.As(err, &annotationErr):
		problems = append(problems, annotationErr.Error())
	}

	if len(problems) == 0 {
		return
	}

	fmt.Fprintf(r.out, "Problems:\n")
	for _, problem := range problems {
		fmt.Fprintf(r.out, "   %s\n", problem)
	}
	fmt.Fprintf(r.out, "\n")
}

func errorTitle(errorType models.ErrorType) string {
	switch errorType {
	case models.ErrorTypeAnnotationSyntax:
		return "Annotation Syntax Error"
	case models.ErrorTypeValidation:
		return "Validation Error"
	case models.ErrorTypeGeneration:
		return "Code Generation Error"
	case models.ErrorTypeFileSystem:
		return "File System Error"
	default:
		return "Unknown Error"
	}
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for i, suggestion := range suggestions {
		lines := strings.Split(suggestion, "\n")
		fmt.Fprintf(r.out, "   %d. %s\n", i+1, lines[0])
		for _, line := range lines[1:] {
			if strings.TrimSpace(line) != "" {
				fmt.Fprintf(r.out, "      %s\n", line)
			}
		}
	}
	fmt.Fprintf(r.out, "\n")
}

func (r *DiagnosticReporter) printErrorChain(err error) {
	fmt.Fprintf(r.out, "Error Chain:\n")
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "   %d. %s\n", level, err.Error())
		err = errors.Unwrap(err)
		level++
	}
	fmt.Fprintf(r.out, "\n")
}

// ReportSuccess prints the generated and removed files
func (r *DiagnosticReporter) ReportSuccess(summary GenerationSummary) {
	files := append([]string(nil), summary.GeneratedFiles...)
	sort.Strings(files)

	if len(files) > 0 {
		fmt.Fprintf(r.out, "Generated files:\n")
		for _, file := range files {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
	if len(summary.RemovedFiles) > 0 {
		fmt.Fprintf(r.out, "Removed stale files:\n")
		for _, file := range summary.RemovedFiles {
			fmt.Fprintf(r.out, "  - %s\n", file)
		}
	}
}
