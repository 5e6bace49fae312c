package scanner

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/toyz/synapse/internal/annotations"
	"github.com/toyz/synapse/internal/models"
	"github.com/toyz/synapse/pkg/synapse"
)

// Scanner extracts middleware declarations and struct types from Go source
type Scanner struct {
	fileSet   *token.FileSet
	parser    annotations.ParserEngine
	skipFiles map[string]bool
}

// Option configures a Scanner
type Option func(*Scanner)

// WithParser replaces the annotation parser
func WithParser(engine annotations.ParserEngine) Option {
	return func(s *Scanner) {
		s.parser = engine
	}
}

// WithSkipFiles excludes files by base name, typically the generated output
func WithSkipFiles(names ...string) Option {
	return func(s *Scanner) {
		for _, name := range names {
			s.skipFiles[name] = true
		}
	}
}

// NewScanner creates a scanner using the default annotation registry
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		fileSet:   token.NewFileSet(),
		parser:    annotations.NewParser(nil),
		skipFiles: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseSource scans one file. src follows go/parser.ParseFile: nil reads
// filename from disk, a string or []byte is used as the file contents.
// When annotations are malformed the metadata extracted so far is returned
// alongside the error; a nil metadata means the file is not valid Go.
func (s *Scanner) ParseSource(filename string, src any, importPath string) (*models.PackageMetadata, error) {
	file, err := parser.ParseFile(s.fileSet, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source %s: %w", filename, err)
	}

	metadata := &models.PackageMetadata{
		PackageName: file.Name.Name,
		PackagePath: filepath.Dir(filename),
		ImportPath:  importPath,
	}
	return metadata, s.extract(file, filename, metadata)
}

// ScanDirectory scans the non-test Go files of one package directory.
// Files are visited by name and declarations keep their source order.
func (s *Scanner) ScanDirectory(dir, importPath string) (*models.PackageMetadata, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var fileNames []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		if s.skipFiles[name] {
			continue
		}
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	if len(fileNames) == 0 {
		return nil, fmt.Errorf("no Go files found in directory %s", dir)
	}

	metadata := &models.PackageMetadata{
		PackagePath: dir,
		ImportPath:  importPath,
	}

	var errs []error
	for _, name := range fileNames {
		fileMeta, err := s.ParseSource(filepath.Join(dir, name), nil, importPath)
		if fileMeta == nil {
			return nil, err
		}
		if err != nil {
			errs = append(errs, err)
		}

		if metadata.PackageName == "" {
			metadata.PackageName = fileMeta.PackageName
		} else if metadata.PackageName != fileMeta.PackageName {
			return nil, fmt.Errorf("multiple packages found in directory %s: %s and %s",
				dir, metadata.PackageName, fileMeta.PackageName)
		}
		metadata.Classes = append(metadata.Classes, fileMeta.Classes...)
		metadata.Declarations = append(metadata.Declarations, fileMeta.Declarations...)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return metadata, nil
}

// extract appends the classes and declarations of one file to metadata
func (s *Scanner) extract(file *ast.File, fileName string, metadata *models.PackageMetadata) error {
	imports := fileImports(file)
	var errs []error

	for _, decl := range file.Decls {
		switch node := decl.(type) {
		case *ast.GenDecl:
			if node.Tok != token.TYPE {
				continue
			}
			for _, spec := range node.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := typeSpec.Doc
				if doc == nil && len(node.Specs) == 1 {
					doc = node.Doc
				}

				className := qualifyLocal(metadata.ImportPath, typeSpec.Name.Name)
				_, isStruct := typeSpec.Type.(*ast.StructType)
				if isStruct {
					pos := s.fileSet.Position(typeSpec.Pos())
					metadata.Classes = append(metadata.Classes, models.ClassMetadata{
						Name:          typeSpec.Name.Name,
						QualifiedName: className,
						File:          fileName,
						Line:          pos.Line,
					})
				}

				for _, comment := range annotationComments(doc) {
					if !isStruct {
						loc := s.location(comment)
						errs = append(errs, fmt.Errorf("%s: middleware annotations must be attached to a struct type, %s is not a struct",
							loc, typeSpec.Name.Name))
						continue
					}
					if err := s.addDeclaration(comment, className, "", imports, fileName, metadata); err != nil {
						errs = append(errs, err)
					}
				}
			}

		case *ast.FuncDecl:
			comments := annotationComments(node.Doc)
			if len(comments) == 0 {
				continue
			}

			receiver := receiverName(node)
			if receiver == "" {
				loc := s.location(comments[0])
				errs = append(errs, fmt.Errorf("%s: middleware annotations must be attached to a method, %s is a function",
					loc, node.Name.Name))
				continue
			}

			className := qualifyLocal(metadata.ImportPath, receiver)
			for _, comment := range comments {
				if err := s.addDeclaration(comment, className, node.Name.Name, imports, fileName, metadata); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	return errors.Join(errs...)
}

func (s *Scanner) addDeclaration(comment *ast.Comment, className, methodName string, imports map[string]string, fileName string, metadata *models.PackageMetadata) error {
	loc := s.location(comment)
	parsed, err := s.parser.ParseAnnotation(comment.Text, loc)
	if err != nil {
		return err
	}

	switch parsed.Type {
	case annotations.MiddlewareAnnotation, annotations.MiddlewaresAnnotation:
	default:
		// annotation kinds registered by other tools are not middleware
		return nil
	}

	classes := parsed.Classes()
	qualified := make([]string, 0, len(classes))
	for _, class := range classes {
		name, err := qualify(class, metadata.ImportPath, imports)
		if err != nil {
			return fmt.Errorf("%s: %w", loc, err)
		}
		qualified = append(qualified, name)
	}

	metadata.Declarations = append(metadata.Declarations, models.Declaration{
		ClassName:   className,
		MethodName:  methodName,
		Kind:        string(parsed.Type),
		Middlewares: qualified,
		File:        fileName,
		Line:        loc.Line,
	})
	return nil
}

func (s *Scanner) location(comment *ast.Comment) annotations.SourceLocation {
	pos := s.fileSet.Position(comment.Pos())
	return annotations.SourceLocation{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// Apply replays declarations through a collector in order
func Apply(collector *synapse.MiddlewareCollector, decls []models.Declaration) {
	for _, decl := range decls {
		collector.Collect(decl.ClassName, Annotation(decl), decl.MethodName)
	}
}

// Annotation converts a declaration back to its runtime annotation value
func Annotation(decl models.Declaration) any {
	if decl.Kind == string(annotations.MiddlewareAnnotation) && len(decl.Middlewares) == 1 {
		return synapse.Middleware{Class: decl.Middlewares[0]}
	}
	return synapse.NewMiddlewares(decl.Middlewares...)
}

func annotationComments(doc *ast.CommentGroup) []*ast.Comment {
	if doc == nil {
		return nil
	}
	var comments []*ast.Comment
	for _, comment := range doc.List {
		if annotations.IsAnnotation(comment.Text) {
			comments = append(comments, comment)
		}
	}
	return comments
}

// receiverName returns the receiver type name of a method, or "" for a function
func receiverName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return ""
	}

	expr := fn.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	switch typed := expr.(type) {
	case *ast.IndexExpr:
		expr = typed.X
	case *ast.IndexListExpr:
		expr = typed.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

// fileImports maps each package name of a file to its import path. Blank
// imports resolve under their default name so annotations can reference
// packages the file does not otherwise use.
func fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	blank := make(map[string]string)
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		name := defaultPackageName(importPath)
		if spec.Name != nil {
			switch spec.Name.Name {
			case ".":
				continue
			case "_":
				blank[name] = importPath
				continue
			default:
				name = spec.Name.Name
			}
		}
		imports[name] = importPath
	}
	for name, importPath := range blank {
		if _, ok := imports[name]; !ok {
			imports[name] = importPath
		}
	}
	return imports
}

// defaultPackageName guesses the package name from an import path, skipping
// major version suffixes and gopkg.in style versions
func defaultPackageName(importPath string) string {
	base := path.Base(importPath)
	if len(base) > 1 && base[0] == 'v' {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			base = path.Base(path.Dir(importPath))
		}
	}
	if idx := strings.Index(base, ".v"); idx > 0 {
		base = base[:idx]
	}
	return strings.ReplaceAll(base, "-", "_")
}

func qualifyLocal(importPath, typeName string) string {
	if importPath == "" {
		return typeName
	}
	return importPath + "." + typeName
}

// qualify resolves a class as written in an annotation to import/path.Type
func qualify(class, importPath string, imports map[string]string) (string, error) {
	if strings.Contains(class, "/") {
		return class, nil
	}

	idx := strings.LastIndex(class, ".")
	if idx < 0 {
		return qualifyLocal(importPath, class), nil
	}

	alias, typeName := class[:idx], class[idx+1:]
	if resolved, ok := imports[alias]; ok {
		return resolved + "." + typeName, nil
	}
	return "", fmt.Errorf("middleware class %s uses package %s which is not imported by this file", class, alias)
}
