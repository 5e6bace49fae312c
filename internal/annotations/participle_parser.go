package annotations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// ParserEngine parses annotation comments into typed annotations
type ParserEngine interface {
	ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error)
}

// ParticipleParser parses annotations with an alecthomas/participle grammar
// and checks them against the schemas of a registry
type ParticipleParser struct {
	parser    *participle.Parser[annotationGrammar]
	registry  AnnotationRegistry
	validator SchemaValidator
}

// annotationGrammar is the root of //synapse::<type> [args...]
type annotationGrammar struct {
	Synapse string        `parser:"'//'? @'synapse' '::'"`
	Type    string        `parser:"@Ident"`
	Args    []*argGrammar `parser:"@@*"`
}

// argGrammar is either a named parameter or a positional class list
type argGrammar struct {
	Named *namedGrammar `parser:"  @@"`
	List  []string      `parser:"| @(Ident | String) (',' @(Ident | String))*"`
}

// namedGrammar is -Name or -Name=a,b
type namedGrammar struct {
	Name   string   `parser:"'-' @Ident"`
	Values []string `parser:"('=' @(Ident | String) (',' @(Ident | String))*)?"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//`},
	{Name: "Separator", Pattern: `::`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_./\-]*`},
	{Name: "Punct", Pattern: `[-=,]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// NewParticipleParser creates a parser validating against registry. A nil
// registry uses DefaultRegistry.
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	if registry == nil {
		registry = DefaultRegistry()
	}

	return &ParticipleParser{
		parser: participle.MustBuild[annotationGrammar](
			participle.Lexer(annotationLexer),
			participle.Elide("Whitespace"),
			participle.Unquote("String"),
		),
		registry:  registry,
		validator: NewValidator(),
	}
}

// NewParser returns the default ParserEngine
func NewParser(registry AnnotationRegistry) ParserEngine {
	return NewParticipleParser(registry)
}

// IsAnnotation reports whether a comment line is meant as an annotation
func IsAnnotation(comment string) bool {
	body := strings.TrimSpace(comment)
	if !strings.HasPrefix(body, "//") {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(body[2:]), Prefix)
}

// ParseAnnotation parses and validates a single annotation comment
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	text := strings.TrimSpace(comment)
	if !IsAnnotation(text) {
		return nil, NewSyntaxErrorWithContext("annotation must start with '//"+Prefix+"' prefix", location, text)
	}

	body := strings.TrimSpace(text[2:])
	// trailing "// note" comments are not part of the annotation
	if idx := strings.Index(body, " //"); idx >= 0 {
		body = strings.TrimSpace(body[:idx])
	}

	ast, err := p.parser.ParseString(location.File, body)
	if err != nil {
		return nil, p.syntaxError(err, location, body)
	}

	annotationType := AnnotationType(ast.Type)
	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		schemaErr := NewSchemaErrorWithContext(err.Error(), location, annotationType)
		schemaErr.Hint = supportedTypes(p.registry)
		return nil, schemaErr
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        text,
	}

	for _, arg := range ast.Args {
		switch {
		case arg.Named != nil:
			addParameter(parsed, arg.Named.Name, arg.Named.Values)
		default:
			if schema.Positional == "" {
				return nil, NewSchemaErrorWithContext("unexpected positional arguments", location, annotationType)
			}
			addParameter(parsed, schema.Positional, arg.List)
		}
	}

	if err := p.validator.ApplyDefaults(parsed, schema); err != nil {
		return nil, err
	}
	if err := p.validator.TransformParameters(parsed, schema); err != nil {
		return nil, err
	}
	if err := p.validator.Validate(parsed, schema); err != nil {
		return nil, err
	}

	return parsed, nil
}

// addParameter records values for name. A bare flag is true; repeated
// list values accumulate.
func addParameter(parsed *ParsedAnnotation, name string, values []string) {
	if len(values) == 0 {
		parsed.Parameters[name] = true
		return
	}
	if existing, ok := parsed.Parameters[name].([]string); ok {
		values = append(existing, values...)
	}
	parsed.Parameters[name] = values
}

func (p *ParticipleParser) syntaxError(err error, location SourceLocation, body string) error {
	msg := err.Error()
	loc := location

	var perr participle.Error
	if errors.As(err, &perr) {
		msg = perr.Message()
		pos := perr.Position()
		if pos.Column > 0 {
			// offset by "//" and the whitespace trimmed before the body
			loc.Column = location.Column + pos.Column + 1
		}
	}

	return NewSyntaxErrorWithContext(fmt.Sprintf("invalid annotation: %s", msg), loc, body)
}
