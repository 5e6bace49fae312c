package annotations

import (
	"fmt"
	"strings"
)

// AnnotationError is implemented by every error the parser, validator and
// schema registry return. Location is zero for errors not tied to source.
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode classifies annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
	RegistrationErrorCode
)

var errorCodeNames = map[ErrorCode]string{
	SyntaxErrorCode:       "SyntaxError",
	ValidationErrorCode:   "ValidationError",
	SchemaErrorCode:       "SchemaError",
	RegistrationErrorCode: "RegistrationError",
}

func (e ErrorCode) String() string {
	if name, ok := errorCodeNames[e]; ok {
		return name
	}
	return "UnknownError"
}

// describe renders "<location>: <kind> error: <msg>. <hint>"
func describe(loc SourceLocation, kind, msg, hint string) string {
	var b strings.Builder
	if loc.File != "" || loc.Line > 0 {
		b.WriteString(loc.String())
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "%s error: %s", kind, msg)
	if hint != "" {
		b.WriteString(". ")
		b.WriteString(hint)
	}
	return b.String()
}

// ValidationError reports a parameter that is missing, unknown or of the
// wrong type
type ValidationError struct {
	Parameter string
	Expected  string
	Actual    string
	Loc       SourceLocation
	Hint      string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("parameter '%s': expected %s, got %s", e.Parameter, e.Expected, e.Actual)
	return describe(e.Loc, "validation", msg, e.Hint)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SyntaxError reports annotation text the grammar rejects
type SyntaxError struct {
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *SyntaxError) Error() string            { return describe(e.Loc, "syntax", e.Msg, e.Hint) }
func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// SchemaError reports an annotation type or argument shape no schema allows
type SchemaError struct {
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *SchemaError) Error() string            { return describe(e.Loc, "schema", e.Msg, e.Hint) }
func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// RegistrationError reports an invalid or duplicate schema
type RegistrationError struct {
	Msg  string
	Loc  SourceLocation
	Hint string
}

func (e *RegistrationError) Error() string            { return describe(e.Loc, "registration", e.Msg, e.Hint) }
func (e *RegistrationError) Location() SourceLocation { return e.Loc }
func (e *RegistrationError) Suggestion() string       { return e.Hint }
func (e *RegistrationError) Code() ErrorCode          { return RegistrationErrorCode }

// MultipleAnnotationErrors is every problem the validator found in one
// annotation
type MultipleAnnotationErrors struct {
	Errors []AnnotationError
}

func (e *MultipleAnnotationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "multiple annotation errors (%d total):", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, err)
	}
	return b.String()
}

func (e *MultipleAnnotationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, err := range e.Errors {
		errs = append(errs, err)
	}
	return errs
}

// HasType reports whether any collected error has code
func (e *MultipleAnnotationErrors) HasType(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.Code() == code {
			return true
		}
	}
	return false
}

func (e *MultipleAnnotationErrors) orNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewSyntaxErrorWithContext creates a syntax error with a suggestion
// derived from the message and the annotation text
func NewSyntaxErrorWithContext(msg string, loc SourceLocation, context string) *SyntaxError {
	return &SyntaxError{
		Msg:  msg,
		Loc:  loc,
		Hint: generateSyntaxSuggestion(msg, context),
	}
}

// NewSchemaErrorWithContext creates a schema error with a suggestion
func NewSchemaErrorWithContext(msg string, loc SourceLocation, annotationType AnnotationType) *SchemaError {
	return &SchemaError{
		Msg:  msg,
		Loc:  loc,
		Hint: generateSchemaSuggestion(msg, annotationType),
	}
}

func generateSyntaxSuggestion(msg, context string) string {
	msg = strings.ToLower(msg)
	context = strings.ToLower(context)

	switch {
	case strings.Contains(msg, "prefix"):
		return "Annotation must start with '//synapse::' (note the double colon)"
	case strings.Contains(msg, "empty annotation"):
		return "Try: //synapse::middleware Auth or //synapse::middlewares Auth,Logging"
	case strings.Contains(context, "middlewares"):
		return "Group format: //synapse::middlewares A,B[,C] [-Classes=A,B]"
	case strings.Contains(context, "middleware"):
		return "Single format: //synapse::middleware Class [-Class=Class]"
	default:
		return "Check annotation syntax and parameter format"
	}
}

func generateSchemaSuggestion(msg string, annotationType AnnotationType) string {
	msg = strings.ToLower(msg)

	switch {
	case strings.Contains(msg, "not registered"):
		return supportedTypes(DefaultRegistry())
	case strings.Contains(msg, "positional"):
		return fmt.Sprintf("Annotation '%s' takes no positional arguments, use -Name=Value", annotationType.String())
	default:
		return "Check annotation schema and parameter definitions"
	}
}

func supportedTypes(registry AnnotationRegistry) string {
	var names []string
	for _, t := range registry.ListTypes() {
		names = append(names, t.String())
	}
	return "Supported annotation types: " + strings.Join(names, ", ")
}
