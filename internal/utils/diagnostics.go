package utils

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
)

// DiagnosticLevel orders console verbosity. Each level includes the ones
// before it.
type DiagnosticLevel int

const (
	DiagnosticSilent DiagnosticLevel = iota
	DiagnosticError
	DiagnosticWarn
	DiagnosticInfo
	DiagnosticVerbose
	DiagnosticDebug
)

// DiagnosticSystem is the human-facing console of the generator. Errors go
// to errorOut, everything else to output.
type DiagnosticSystem struct {
	level     DiagnosticLevel
	useColors bool
	showTime  bool
	output    io.Writer
	errorOut  io.Writer
	indent    int
}

func NewDiagnosticSystem(level DiagnosticLevel) *DiagnosticSystem {
	return NewDiagnosticSystemWithWriters(level, os.Stdout, os.Stderr)
}

// NewDiagnosticSystemWithWriters colours output when the environment asks
// for it and timestamps messages from DiagnosticVerbose up.
func NewDiagnosticSystemWithWriters(level DiagnosticLevel, output, errorOut io.Writer) *DiagnosticSystem {
	return &DiagnosticSystem{
		level:     level,
		useColors: colorsWanted(),
		showTime:  level >= DiagnosticVerbose,
		output:    output,
		errorOut:  errorOut,
	}
}

func (d *DiagnosticSystem) SetColors(enabled bool) { d.useColors = enabled }

func (d *DiagnosticSystem) Error(format string, args ...interface{}) {
	d.tagged(DiagnosticError, "ERROR", color.FgRed, format, args...)
}

func (d *DiagnosticSystem) Warn(format string, args ...interface{}) {
	d.tagged(DiagnosticWarn, "WARN", color.FgYellow, format, args...)
}

func (d *DiagnosticSystem) Info(format string, args ...interface{}) {
	d.tagged(DiagnosticInfo, "INFO", color.FgBlue, format, args...)
}

func (d *DiagnosticSystem) Success(format string, args ...interface{}) {
	d.tagged(DiagnosticInfo, "SUCCESS", color.FgGreen, format, args...)
}

func (d *DiagnosticSystem) Verbose(format string, args ...interface{}) {
	d.tagged(DiagnosticVerbose, "VERBOSE", color.FgHiBlack, format, args...)
}

func (d *DiagnosticSystem) Debug(format string, args ...interface{}) {
	d.tagged(DiagnosticDebug, "DEBUG", color.FgMagenta, format, args...)
}

// List prints a bullet at the current indentation.
func (d *DiagnosticSystem) List(format string, args ...interface{}) {
	if d.enabled(DiagnosticInfo) {
		fmt.Fprintf(d.output, "%s- %s\n", d.prefix(), fmt.Sprintf(format, args...))
	}
}

func (d *DiagnosticSystem) Indent() { d.indent++ }

func (d *DiagnosticSystem) Unindent() {
	d.indent = max(d.indent-1, 0)
}

// Summary prints title followed by stats in key order.
func (d *DiagnosticSystem) Summary(title string, stats map[string]interface{}) {
	if !d.enabled(DiagnosticInfo) {
		return
	}
	fmt.Fprintf(d.output, "\n%s\n", title)
	for _, key := range slices.Sorted(maps.Keys(stats)) {
		fmt.Fprintf(d.output, "   %s: %v\n", key, stats[key])
	}
	fmt.Fprintln(d.output)
}

func (d *DiagnosticSystem) Header(message string) {
	if d.enabled(DiagnosticInfo) {
		d.paint(color.FgCyan).Fprintf(d.output, "Synapse: %s\n", message)
	}
}

func (d *DiagnosticSystem) PhaseHeader(phase string) {
	if d.enabled(DiagnosticInfo) {
		d.paint(color.FgBlue).Fprintf(d.output, "%s:\n", phase)
	}
}

func (d *DiagnosticSystem) PhaseItem(message string) {
	d.mark(color.FgGreen, "✓", message)
}

// PhaseProgress prints a step of the current phase; file writes get a
// pencil, anything else a dash.
func (d *DiagnosticSystem) PhaseProgress(message string) {
	if strings.HasPrefix(message, "Writing") {
		d.mark(color.FgMagenta, "✏", message)
		return
	}
	if d.enabled(DiagnosticInfo) {
		fmt.Fprintf(d.output, "- %s\n", message)
	}
}

func (d *DiagnosticSystem) GenerationComplete() {
	if d.enabled(DiagnosticInfo) {
		fmt.Fprintln(d.output)
		d.paint(color.FgGreen).Fprintln(d.output, "Synapse: Generation complete!")
	}
}

func (d *DiagnosticSystem) enabled(level DiagnosticLevel) bool {
	return d.level >= level
}

func (d *DiagnosticSystem) mark(attr color.Attribute, symbol, message string) {
	if d.enabled(DiagnosticInfo) {
		d.paint(attr).Fprint(d.output, symbol+" ")
		fmt.Fprintln(d.output, message)
	}
}

// tagged prints "[TAG] message" when level is enabled.
func (d *DiagnosticSystem) tagged(level DiagnosticLevel, tag string, attr color.Attribute, format string, args ...interface{}) {
	if !d.enabled(level) {
		return
	}
	w := d.output
	if level == DiagnosticError {
		w = d.errorOut
	}

	line := d.prefix()
	if d.showTime {
		line += time.Now().Format("15:04:05 ")
	}
	line += d.paint(attr).Sprintf("[%s]", tag) + " " + fmt.Sprintf(format, args...)
	fmt.Fprintln(w, line)
}

func (d *DiagnosticSystem) paint(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if d.useColors {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (d *DiagnosticSystem) prefix() string {
	return strings.Repeat("  ", d.indent)
}

// colorsWanted honours NO_COLOR, then FORCE_COLOR, then TERM.
func colorsWanted() bool {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return false
	case os.Getenv("FORCE_COLOR") != "":
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}
