package templates

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ImportManager accumulates the import block of a generated file. Plain
// imports are rendered before aliased ones, each group sorted.
type ImportManager struct {
	plain   map[string]struct{}
	aliased map[string]string // alias -> path
}

func NewImportManager() *ImportManager {
	return &ImportManager{
		plain:   make(map[string]struct{}),
		aliased: make(map[string]string),
	}
}

func (im *ImportManager) AddImport(importPath string) {
	if importPath != "" {
		im.plain[importPath] = struct{}{}
	}
}

func (im *ImportManager) AddPackageImport(alias, path string) {
	if alias != "" && path != "" {
		im.aliased[alias] = path
	}
}

func (im *ImportManager) GenerateImports() string {
	var specs []string
	for _, path := range slices.Sorted(maps.Keys(im.plain)) {
		specs = append(specs, fmt.Sprintf("%q", path))
	}
	for _, alias := range slices.Sorted(maps.Keys(im.aliased)) {
		specs = append(specs, fmt.Sprintf("%s %q", alias, im.aliased[alias]))
	}

	switch len(specs) {
	case 0:
		return ""
	case 1:
		return "import " + specs[0] + "\n"
	}
	return "import (\n\t" + strings.Join(specs, "\n\t") + "\n)\n"
}
