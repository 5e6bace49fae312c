package models

import "fmt"

// ErrorType classifies a GeneratorError for the console report.
type ErrorType int

const (
	ErrorTypeAnnotationSyntax ErrorType = iota
	ErrorTypeValidation
	ErrorTypeGeneration
	ErrorTypeFileSystem
)

var errorTypeNames = [...]string{
	ErrorTypeAnnotationSyntax: "annotation syntax",
	ErrorTypeValidation:       "validation",
	ErrorTypeGeneration:       "generation",
	ErrorTypeFileSystem:       "file system",
}

func (t ErrorType) String() string {
	if t < 0 || int(t) >= len(errorTypeNames) {
		return "unknown"
	}
	return errorTypeNames[t]
}

// GeneratorError is a failure of a generation run as a whole, as opposed
// to a problem with one annotation. File and Line are optional.
type GeneratorError struct {
	Type        ErrorType
	File        string
	Line        int
	Message     string
	Cause       error
	Suggestions []string
}

func (e *GeneratorError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}

	switch {
	case e.File == "":
		return msg
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, msg)
	}
	return e.File + ": " + msg
}

func (e *GeneratorError) Unwrap() error { return e.Cause }
