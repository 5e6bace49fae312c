package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	synerrors "github.com/toyz/synapse/internal/errors"
	"github.com/toyz/synapse/internal/models"
)

// classRegistry implements the ClassRegistry interface
type classRegistry struct {
	mu      sync.RWMutex
	classes map[string]models.ClassMetadata
}

// NewClassRegistry creates a new class registry
func NewClassRegistry() ClassRegistry {
	return &classRegistry{
		classes: make(map[string]models.ClassMetadata),
	}
}

// Register adds a class under its qualified name
func (r *classRegistry) Register(class models.ClassMetadata) error {
	if class.QualifiedName == "" {
		return fmt.Errorf("class name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, exists := r.classes[class.QualifiedName]; exists {
		return synerrors.DuplicateClassError(class.QualifiedName,
			synerrors.SourceLocation{File: class.File, Line: class.Line},
			synerrors.SourceLocation{File: existing.File, Line: existing.Line})
	}

	r.classes[class.QualifiedName] = class
	return nil
}

// Validate checks that all class names exist in the registry
func (r *classRegistry) Validate(classNames []string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs synerrors.List
	seen := make(map[string]bool)
	for _, name := range classNames {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		if _, exists := r.classes[name]; !exists {
			errs = append(errs, synerrors.UnknownClassError(name, synerrors.SourceLocation{}, r.namesLocked()))
		}
	}

	return errs.Err()
}

// ValidateDeclarations checks every middleware class referenced by the
// declarations, reporting each unknown class at the annotation that names it
func (r *classRegistry) ValidateDeclarations(decls []models.Declaration) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs synerrors.List
	for _, decl := range decls {
		for _, name := range decl.Middlewares {
			if _, exists := r.classes[name]; exists {
				continue
			}
			loc := synerrors.SourceLocation{File: decl.File, Line: decl.Line}
			errs = append(errs, synerrors.UnknownClassError(name, loc, r.namesLocked()).
				With("target", decl.Target()))
		}
	}

	return errs.Err()
}

// Get retrieves a class by qualified name
func (r *classRegistry) Get(name string) (models.ClassMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	class, exists := r.classes[name]
	return class, exists
}

// Names returns every registered qualified name, sorted
func (r *classRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *classRegistry) namesLocked() []string {
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
