package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/toyz/synapse/internal/utils"
)

// ModuleResolver handles resolving Go module information
type ModuleResolver struct {
	goModParser *utils.GoModParser
	workDir     string
	moduleRoot  string
}

// NewModuleResolver creates a module resolver rooted at the working directory
func NewModuleResolver(fileReader *utils.FileReader) *ModuleResolver {
	workDir, _ := os.Getwd()
	return NewModuleResolverAt(fileReader, workDir)
}

// NewModuleResolverAt creates a module resolver that searches from workDir
func NewModuleResolverAt(fileReader *utils.FileReader, workDir string) *ModuleResolver {
	return &ModuleResolver{
		goModParser: utils.NewGoModParser(fileReader),
		workDir:     workDir,
	}
}

// ResolveModuleName resolves the module name for imports
// If customModule is provided, it uses that; otherwise reads from go.mod
func (r *ModuleResolver) ResolveModuleName(customModule string) (string, error) {
	goModPath, findErr := r.goModParser.FindGoModFile(r.workDir)
	if findErr == nil {
		r.moduleRoot = filepath.Dir(goModPath)
	} else {
		r.moduleRoot = r.workDir
	}

	if customModule != "" {
		return customModule, nil
	}

	if findErr != nil {
		return "", fmt.Errorf("failed to determine module name: %w (consider using --module flag)", findErr)
	}

	moduleName, err := r.goModParser.ParseModuleName(goModPath)
	if err != nil {
		return "", fmt.Errorf("failed to determine module name: %w", err)
	}
	return moduleName, nil
}

// ModuleRoot returns the directory import paths are computed from. It is
// set by ResolveModuleName.
func (r *ModuleResolver) ModuleRoot() string {
	if r.moduleRoot == "" {
		return r.workDir
	}
	return r.moduleRoot
}

// BuildPackagePath builds the full import path for a package directory
func (r *ModuleResolver) BuildPackagePath(moduleName, packageDir string) (string, error) {
	absPackageDir, err := filepath.Abs(packageDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve package directory: %w", err)
	}

	root, err := filepath.Abs(r.ModuleRoot())
	if err != nil {
		return "", fmt.Errorf("failed to resolve module root: %w", err)
	}

	relPath, err := filepath.Rel(root, absPackageDir)
	if err != nil {
		return "", fmt.Errorf("failed to calculate relative path: %w", err)
	}

	importPath := filepath.ToSlash(relPath)
	if importPath == "." {
		return moduleName, nil
	}
	if importPath == ".." || len(importPath) > 3 && importPath[:3] == "../" {
		return "", fmt.Errorf("package directory %s is outside the module at %s", packageDir, root)
	}

	return fmt.Sprintf("%s/%s", moduleName, importPath), nil
}
