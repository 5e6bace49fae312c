package models

// ClassMetadata describes a struct type found while scanning
type ClassMetadata struct {
	Name          string // type name as declared
	QualifiedName string // import path plus type name
	File          string
	Line          int
}

// PackageMetadata represents everything scanned from one package directory
type PackageMetadata struct {
	PackageName  string          // name of the Go package
	PackagePath  string          // file system path to the package
	ImportPath   string          // import path of the package
	Classes      []ClassMetadata // every struct type in the package
	Declarations []Declaration   // middleware annotations in source order
}

// HasDeclarations returns true if the package carries any middleware annotation
func (p *PackageMetadata) HasDeclarations() bool {
	return len(p.Declarations) > 0
}

// MiddlewareClasses returns the distinct middleware classes referenced by
// the package, in first-seen order
func (p *PackageMetadata) MiddlewareClasses() []string {
	seen := make(map[string]bool)
	var classes []string
	for _, decl := range p.Declarations {
		for _, class := range decl.Middlewares {
			if !seen[class] {
				seen[class] = true
				classes = append(classes, class)
			}
		}
	}
	return classes
}
