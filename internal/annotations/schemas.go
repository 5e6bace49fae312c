package annotations

import (
	"fmt"
	"regexp"
)

const (
	// ClassParam holds the class of a single middleware annotation
	ClassParam = "Class"
	// ClassesParam holds the classes of a middleware group annotation
	ClassesParam = "Classes"
)

// classPattern accepts Auth, mw.Auth and example.com/app/mw.Auth
var classPattern = regexp.MustCompile(`^([A-Za-z0-9_.\-]+(/[A-Za-z0-9_.\-]+)*\.)?[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateClassName checks that v names a Go type, optionally qualified by
// a package alias or import path
func ValidateClassName(v interface{}) error {
	name, ok := v.(string)
	if !ok {
		return fmt.Errorf("class name must be a string, got %T", v)
	}
	if !classPattern.MatchString(name) {
		return fmt.Errorf("'%s' is not a type name", name)
	}
	return nil
}

// ValidateClassNames applies ValidateClassName to every element
func ValidateClassNames(v interface{}) error {
	names, ok := v.([]string)
	if !ok {
		return fmt.Errorf("class list must be []string, got %T", v)
	}
	if len(names) == 0 {
		return fmt.Errorf("at least one class is required")
	}
	for _, name := range names {
		if err := ValidateClassName(name); err != nil {
			return err
		}
	}
	return nil
}

// MiddlewareAnnotationSchema defines //synapse::middleware
var MiddlewareAnnotationSchema = AnnotationSchema{
	Type:        MiddlewareAnnotation,
	Description: "Attaches one middleware class to a struct (every action) or to a method (one action)",
	Positional:  ClassParam,
	Parameters: map[string]ParameterSpec{
		ClassParam: {
			Type:        StringType,
			Required:    true,
			Description: "Middleware type; bare names resolve against the annotated package",
			Validator:   ValidateClassName,
		},
	},
	Examples: []string{
		"//synapse::middleware Auth",
		"//synapse::middleware mw.RateLimit",
		"//synapse::middleware -Class=github.com/acme/app/mw.Auth",
	},
}

// MiddlewaresAnnotationSchema defines //synapse::middlewares
var MiddlewaresAnnotationSchema = AnnotationSchema{
	Type:        MiddlewaresAnnotation,
	Description: "Attaches an ordered group of middleware classes; repeats inside the group are dropped",
	Positional:  ClassesParam,
	Parameters: map[string]ParameterSpec{
		ClassesParam: {
			Type:        StringSliceType,
			Required:    true,
			Description: "Comma-separated middleware types",
			Validator:   ValidateClassNames,
		},
	},
	Examples: []string{
		"//synapse::middlewares Auth,Logging",
		"//synapse::middlewares -Classes=Auth,mw.Audit",
	},
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type.String(), err)
		}
	}
	return nil
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		MiddlewareAnnotationSchema,
		MiddlewaresAnnotationSchema,
	}
}
