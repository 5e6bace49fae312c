package templates

// MiddlewareInitTemplateName names the template of the generated init file
const MiddlewareInitTemplateName = "middleware-init"

// MiddlewareInitTemplate renders one package's registration file. Every
// declaration becomes a Collect call, in source order.
const MiddlewareInitTemplate = `// Code generated by synapse. DO NOT EDIT.

package {{.PackageName}}

{{.Imports}}
func init() {
{{- range .Calls}}
	// {{.File}}:{{.Line}}
	{{$.Runtime}}.Collect({{quote .ClassName}}, {{annotation $.Runtime .}}, {{quote .MethodName}})
{{- end}}
}
`

// TemplateRegistry looks templates up by name.
type TemplateRegistry struct {
	templates map[string]string
}

func NewTemplateRegistry() *TemplateRegistry {
	return &TemplateRegistry{templates: map[string]string{
		MiddlewareInitTemplateName: MiddlewareInitTemplate,
	}}
}

func (tr *TemplateRegistry) Get(name string) (string, bool) {
	text, ok := tr.templates[name]
	return text, ok
}

// MustGet is Get for names known to exist.
func (tr *TemplateRegistry) MustGet(name string) string {
	if text, ok := tr.Get(name); ok {
		return text
	}
	panic("template not found: " + name)
}
