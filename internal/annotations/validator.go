package annotations

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// SchemaValidator checks parsed annotations against their schema.
type SchemaValidator interface {
	Validate(annotation *ParsedAnnotation, schema AnnotationSchema) error
	ApplyDefaults(annotation *ParsedAnnotation, schema AnnotationSchema) error
	TransformParameters(annotation *ParsedAnnotation, schema AnnotationSchema) error
}

type validator struct{}

func NewValidator() SchemaValidator {
	return &validator{}
}

// Validate reports every problem with the annotation at once: missing
// required parameters, unknown parameters, wrongly typed values, values
// refused by a parameter validator and failures of the schema validators.
// Parameters are visited in name order so the report is stable.
func (v *validator) Validate(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	errs := &MultipleAnnotationErrors{}
	reject := func(param, expected, actual, hint string) {
		errs.Errors = append(errs.Errors, &ValidationError{
			Parameter: param,
			Expected:  expected,
			Actual:    actual,
			Loc:       annotation.Location,
			Hint:      hint,
		})
	}

	for _, name := range slices.Sorted(maps.Keys(schema.Parameters)) {
		spec := schema.Parameters[name]
		if _, ok := annotation.Parameters[name]; spec.Required && !ok {
			reject(name, "required parameter of type "+spec.Type.String(), "missing",
				fmt.Sprintf("Add -%s=<value> to the annotation", name))
		}
	}

	for _, name := range slices.Sorted(maps.Keys(annotation.Parameters)) {
		value := annotation.Parameters[name]
		spec, known := schema.Parameters[name]
		switch {
		case !known:
			reject(name, "known parameter", fmt.Sprintf("unknown parameter '%s'", name),
				fmt.Sprintf("Remove -%s or check parameter name spelling", name))
		case !spec.Type.accepts(value):
			reject(name, spec.Type.String(), fmt.Sprintf("%T", value), spec.Type.hint())
		case spec.Validator != nil:
			if err := spec.Validator(value); err != nil {
				reject(name, "valid value", fmt.Sprintf("%v", value), err.Error())
			}
		}
	}

	for _, check := range schema.Validators {
		if err := check(annotation); err != nil {
			errs.Errors = append(errs.Errors, &SchemaError{
				Msg:  err.Error(),
				Loc:  annotation.Location,
				Hint: "Check annotation parameters and their combinations",
			})
		}
	}

	return errs.orNil()
}

// ApplyDefaults fills absent parameters that declare a default value.
func (v *validator) ApplyDefaults(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	if annotation.Parameters == nil {
		annotation.Parameters = make(map[string]interface{})
	}
	for name, spec := range schema.Parameters {
		if _, ok := annotation.Parameters[name]; !ok && spec.DefaultValue != nil {
			annotation.Parameters[name] = spec.DefaultValue
		}
	}
	return nil
}

// TransformParameters coerces the raw values produced by the grammar into
// the declared parameter types. Unknown parameters are left for Validate.
func (v *validator) TransformParameters(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	for name, value := range annotation.Parameters {
		spec, known := schema.Parameters[name]
		if !known {
			continue
		}

		converted, err := spec.Type.coerce(value)
		if err != nil {
			return &ValidationError{
				Parameter: name,
				Expected:  "value convertible to " + spec.Type.String(),
				Actual:    fmt.Sprintf("%v (%T)", value, value),
				Loc:       annotation.Location,
				Hint:      fmt.Sprintf("Ensure the value can be converted to %s", spec.Type),
			}
		}
		annotation.Parameters[name] = converted
	}
	return nil
}

func (t ParameterType) accepts(value interface{}) bool {
	switch t {
	case StringType:
		_, ok := value.(string)
		return ok
	case BoolType:
		_, ok := value.(bool)
		return ok
	case StringSliceType:
		_, ok := value.([]string)
		return ok
	}
	return false
}

func (t ParameterType) hint() string {
	switch t {
	case StringType:
		return "Provide a single value"
	case BoolType:
		return "Use true/false or provide as a flag"
	case StringSliceType:
		return "Provide comma-separated values"
	}
	return "The schema declares an unknown parameter type"
}

// coerce converts a grammar value. A multi-element list stays a list for
// a string parameter so that Validate reports the mismatch.
func (t ParameterType) coerce(value interface{}) (interface{}, error) {
	list, isList := value.([]string)
	switch t {
	case StringType:
		if isList && len(list) == 1 {
			return list[0], nil
		}
	case BoolType:
		switch typed := value.(type) {
		case string:
			return strconv.ParseBool(typed)
		case []string:
			if len(typed) == 1 {
				return strconv.ParseBool(typed[0])
			}
		}
	case StringSliceType:
		if s, ok := value.(string); ok {
			return parseCommaSeparated(s), nil
		}
	}
	return value, nil
}
