package annotations

import (
	"fmt"
	"strings"
)

// AnnotationType names an annotation kind, the word after "synapse::"
type AnnotationType string

const (
	// MiddlewareAnnotation declares a single middleware class
	MiddlewareAnnotation AnnotationType = "middleware"
	// MiddlewaresAnnotation declares an ordered group of middleware classes
	MiddlewaresAnnotation AnnotationType = "middlewares"
)

// Prefix starts every annotation comment
const Prefix = "synapse::"

func (a AnnotationType) String() string {
	if a == "" {
		return "unknown"
	}
	return string(a)
}

// SourceLocation points at an annotation comment. Line and Column are 1-based.
type SourceLocation struct {
	File   string
	Line   int
	Column int
}

func (l SourceLocation) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// ParsedAnnotation is an annotation whose parameters have been checked and
// converted to their schema types. Raw keeps the comment as written.
type ParsedAnnotation struct {
	Type       AnnotationType
	Parameters map[string]interface{}
	Location   SourceLocation
	Raw        string
}

func (p *ParsedAnnotation) GetString(name string, fallback ...string) string {
	return param(p, name, fallback)
}

func (p *ParsedAnnotation) GetBool(name string, fallback ...bool) bool {
	return param(p, name, fallback)
}

func (p *ParsedAnnotation) GetStringSlice(name string, fallback ...[]string) []string {
	return param(p, name, fallback)
}

// param returns the named parameter when it holds a T, else the first
// fallback, else the zero value.
func param[T any](p *ParsedAnnotation, name string, fallback []T) T {
	if v, ok := p.Parameters[name].(T); ok {
		return v
	}
	var zero T
	if len(fallback) > 0 {
		return fallback[0]
	}
	return zero
}

func (p *ParsedAnnotation) HasParameter(name string) bool {
	_, ok := p.Parameters[name]
	return ok
}

// Classes returns the middleware classes named by the annotation, in the
// order they were written
func (p *ParsedAnnotation) Classes() []string {
	switch p.Type {
	case MiddlewareAnnotation:
		if class := p.GetString(ClassParam); class != "" {
			return []string{class}
		}
	case MiddlewaresAnnotation:
		return p.GetStringSlice(ClassesParam)
	}
	return nil
}

type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	StringSliceType
)

func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case StringSliceType:
		return "[]string"
	default:
		return "unknown"
	}
}

type ParameterSpec struct {
	Type         ParameterType
	Required     bool
	DefaultValue interface{}
	Description  string
	// Validator runs after the type check passes
	Validator func(interface{}) error
}

// CustomValidator inspects the annotation as a whole once every parameter
// has passed its own checks.
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema describes the parameters an annotation type accepts.
// Bare arguments are collected into the Positional parameter; a schema
// without one rejects them.
type AnnotationSchema struct {
	Type        AnnotationType
	Description string
	Positional  string
	Parameters  map[string]ParameterSpec
	Validators  []CustomValidator
	Examples    []string
}

// parseCommaSeparated splits a comma separated list, dropping blanks
func parseCommaSeparated(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
