// Package errors holds the generator's structured errors. Each error has a
// kind, an optional source location and hints shown by the CLI reporter.
package errors

import (
	"fmt"
	"sort"
	"strings"
)

// Kind classifies an Error
type Kind string

const (
	KindClass         Kind = "class"
	KindFileSystem    Kind = "filesystem"
	KindTemplate      Kind = "template"
	KindConfiguration Kind = "configuration"
)

// SourceLocation is a position in a scanned Go file. Column is optional.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (s SourceLocation) String() string {
	switch {
	case s.File == "":
		return "unknown location"
	case s.Line == 0:
		return s.File
	case s.Column == 0:
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Error is a generator failure
type Error struct {
	Kind   Kind
	Msg    string
	Loc    SourceLocation
	Cause  error
	Fields map[string]string
	Hints  []string
}

func newError(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Loc.File != "" {
		b.WriteString(e.Loc.String())
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// At sets the source location
func (e *Error) At(loc SourceLocation) *Error {
	e.Loc = loc
	return e
}

// With records a field, e.g. the path or class involved
func (e *Error) With(key, value string) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[key] = value
	return e
}

// Hint appends a suggested fix
func (e *Error) Hint(format string, args ...any) *Error {
	e.Hints = append(e.Hints, fmt.Sprintf(format, args...))
	return e
}

// List is every error found by one pass, e.g. all unknown classes of a scan
type List []*Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}

	lines := make([]string, len(l))
	for i, err := range l {
		lines[i] = fmt.Sprintf("  %d. %s", i+1, err)
	}
	return fmt.Sprintf("%d errors:\n%s", len(l), strings.Join(lines, "\n"))
}

func (l List) Unwrap() []error {
	errs := make([]error, len(l))
	for i, err := range l {
		errs[i] = err
	}
	return errs
}

// Has reports whether any error in the list is of kind
func (l List) Has(kind Kind) bool {
	for _, err := range l {
		if err.Kind == kind {
			return true
		}
	}
	return false
}

// Err returns the list as an error, nil when it is empty
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// WrapFileSystemError reports a failed file or directory operation
func WrapFileSystemError(operation, path string, cause error) *Error {
	return newError(KindFileSystem, cause, "failed to %s file '%s'", operation, path).
		With("path", path)
}

// WrapTemplateError reports a failure rendering generated code
func WrapTemplateError(templateName, operation string, cause error) *Error {
	return newError(KindTemplate, cause, "failed to %s template '%s'", operation, templateName)
}

// WrapConfigurationError reports an unreadable config file
func WrapConfigurationError(format, operation string, cause error) *Error {
	return newError(KindConfiguration, cause, "failed to %s %s configuration", operation, format)
}

// UnknownClassError reports a middleware class that names no scanned type
func UnknownClassError(class string, loc SourceLocation, known []string) *Error {
	err := newError(KindClass, nil, "unknown middleware class '%s'", class).At(loc).With("class", class)
	if len(known) > 0 {
		sorted := append([]string(nil), known...)
		sort.Strings(sorted)
		err.Hint("Known middleware classes: %s", strings.Join(sorted, ", "))
	}
	return err.Hint("Qualify the class with its package alias or import path")
}

// DuplicateClassError reports a type scanned twice under one qualified name
func DuplicateClassError(class string, loc, existing SourceLocation) *Error {
	return newError(KindClass, nil, "class '%s' is already registered at %s", class, existing).
		At(loc).With("class", class)
}
