package utils

import (
	"fmt"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// GoModParser answers module questions from go.mod files, read through a
// shared FileReader so repeated lookups during one run hit the cache.
type GoModParser struct {
	fileReader *FileReader
}

func NewGoModParser(fileReader *FileReader) *GoModParser {
	return &GoModParser{fileReader: fileReader}
}

// ParseModuleName returns the module path declared by goModPath.
func (p *GoModParser) ParseModuleName(goModPath string) (string, error) {
	path := filepath.Clean(goModPath)
	if filepath.Base(path) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := p.fileReader.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}

	mf, err := modfile.ParseLax(path, []byte(content), nil)
	switch {
	case err != nil:
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	case mf.Module == nil:
		return "", fmt.Errorf("no module declaration found in %s", path)
	}
	return mf.Module.Mod.Path, nil
}

// FindGoModFile returns the go.mod governing startDir: the first one found
// walking from startDir towards the filesystem root.
func (p *GoModParser) FindGoModFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", startDir, err)
	}

	for ; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "go.mod")
		if _, err := p.fileReader.ReadFile(candidate); err == nil {
			return candidate, nil
		}
		if filepath.Dir(dir) == dir {
			return "", fmt.Errorf("go.mod file not found from %s", startDir)
		}
	}
}
