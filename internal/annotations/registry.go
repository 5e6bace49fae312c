package annotations

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// AnnotationRegistry maps annotation types to the schema their
// parameters are checked against.
type AnnotationRegistry interface {
	Register(annotationType AnnotationType, schema AnnotationSchema) error
	GetSchema(annotationType AnnotationType) (AnnotationSchema, error)
	// ListTypes returns the registered types in name order
	ListTypes() []AnnotationType
	IsRegistered(annotationType AnnotationType) bool
}

type registry struct {
	mu      sync.RWMutex
	schemas map[AnnotationType]AnnotationSchema
}

func NewRegistry() AnnotationRegistry {
	return &registry{schemas: make(map[AnnotationType]AnnotationSchema)}
}

var DefaultRegistry = sync.OnceValue(func() AnnotationRegistry {
	r := NewRegistry()
	if err := RegisterBuiltinSchemas(r); err != nil {
		panic(fmt.Sprintf("failed to register built-in schemas: %v", err))
	}
	return r
})

func (r *registry) Register(annotationType AnnotationType, schema AnnotationSchema) error {
	if annotationType == "" {
		return &RegistrationError{Msg: "annotation type cannot be empty", Hint: "Name the annotation, e.g. middleware"}
	}
	if schema.Type != annotationType {
		return &RegistrationError{Msg: fmt.Sprintf("schema type %s does not match annotation type %s", schema.Type, annotationType)}
	}
	if err := checkSchema(schema); err != nil {
		return &RegistrationError{Msg: fmt.Sprintf("invalid schema for %s: %v", annotationType, err)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.schemas[annotationType]; taken {
		return &RegistrationError{
			Msg:  fmt.Sprintf("annotation type %s is already registered", annotationType),
			Hint: "Pick a different annotation name",
		}
	}
	r.schemas[annotationType] = schema
	return nil
}

func (r *registry) GetSchema(annotationType AnnotationType) (AnnotationSchema, error) {
	r.mu.RLock()
	schema, ok := r.schemas[annotationType]
	r.mu.RUnlock()

	if !ok {
		return AnnotationSchema{}, fmt.Errorf("annotation type %s is not registered", annotationType)
	}
	return schema, nil
}

func (r *registry) ListTypes() []AnnotationType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.schemas))
}

func (r *registry) IsRegistered(annotationType AnnotationType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.schemas[annotationType]
	return ok
}

func checkSchema(schema AnnotationSchema) error {
	for name, spec := range schema.Parameters {
		switch {
		case name == "":
			return fmt.Errorf("parameter name cannot be empty")
		case spec.Type < StringType || spec.Type > StringSliceType:
			return fmt.Errorf("invalid parameter type for %s: %d", name, spec.Type)
		case spec.DefaultValue != nil && !spec.Type.accepts(spec.DefaultValue):
			return fmt.Errorf("default value for %s parameter %s has type %T", spec.Type, name, spec.DefaultValue)
		}
	}

	if schema.Positional != "" {
		if _, ok := schema.Parameters[schema.Positional]; !ok {
			return fmt.Errorf("positional parameter %s is not defined", schema.Positional)
		}
	}
	return nil
}
