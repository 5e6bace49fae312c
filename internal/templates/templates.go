package templates

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	synerrors "github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
)

// RuntimeImportPath is the package the generated code registers through
const RuntimeImportPath = "github.com/toyz/synapse/pkg/synapse"

const runtimeName = "synapse"

// InitData is the input of the middleware init template
type InitData struct {
	PackageName string
	Imports     string
	Runtime     string // identifier of the runtime package in the file
	Calls       []models.Declaration
}

// GenerateMiddlewareInit renders and formats the registration file of a
// package. runtimeImport overrides RuntimeImportPath when not empty.
func GenerateMiddlewareInit(pkg *models.PackageMetadata, runtimeImport string) (string, error) {
	if pkg == nil || pkg.PackageName == "" {
		return "", fmt.Errorf("package name is required")
	}
	if runtimeImport == "" {
		runtimeImport = RuntimeImportPath
	}

	importManager := NewImportManager()
	runtime := runtimeName
	if pkg.PackageName == runtimeName {
		// the generated file lives in a package that shadows the runtime name
		runtime = "synapseruntime"
		importManager.AddPackageImport(runtime, runtimeImport)
	} else {
		importManager.AddImport(runtimeImport)
	}

	calls := make([]models.Declaration, len(pkg.Declarations))
	for i, decl := range pkg.Declarations {
		decl.File = filepath.Base(decl.File)
		calls[i] = decl
	}

	data := InitData{
		PackageName: pkg.PackageName,
		Imports:     importManager.GenerateImports(),
		Runtime:     runtime,
		Calls:       calls,
	}

	registry := NewTemplateRegistry()
	source, err := executeTemplate(MiddlewareInitTemplateName, registry.MustGet(MiddlewareInitTemplateName), data)
	if err != nil {
		return "", err
	}

	return FormatSource(filepath.Join(pkg.PackagePath, "autogen_middlewares.go"), source)
}

// FormatSource runs goimports formatting over generated source
func FormatSource(filename, source string) (string, error) {
	formatted, err := imports.Process(filename, []byte(source), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return source, synerrors.WrapTemplateError(MiddlewareInitTemplateName, "format", err)
	}
	return string(formatted), nil
}

// executeTemplate executes a Go template with the given data
func executeTemplate(name, templateStr string, data interface{}) (string, error) {
	funcMap := template.FuncMap{
		"quote":      strconv.Quote,
		"annotation": annotationLiteral,
	}

	tmpl, err := template.New(name).Funcs(funcMap).Parse(templateStr)
	if err != nil {
		return "", synerrors.WrapTemplateError(name, "parse", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", synerrors.WrapTemplateError(name, "execute", err)
	}

	return buf.String(), nil
}

// annotationLiteral renders the runtime value of a declaration
func annotationLiteral(runtime string, decl models.Declaration) string {
	if decl.Kind == "middleware" && len(decl.Middlewares) == 1 {
		return fmt.Sprintf("%s.Middleware{Class: %s}", runtime, strconv.Quote(decl.Middlewares[0]))
	}

	quoted := make([]string, len(decl.Middlewares))
	for i, class := range decl.Middlewares {
		quoted[i] = strconv.Quote(class)
	}
	return fmt.Sprintf("%s.NewMiddlewares(%s)", runtime, strings.Join(quoted, ", "))
}
