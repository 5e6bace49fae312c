package registry

import "github.com/toyz/synapse/internal/models"

// ClassRegistry tracks the struct types found while scanning so middleware
// references can be checked against them
type ClassRegistry interface {
	Register(class models.ClassMetadata) error
	Validate(classNames []string) error
	ValidateDeclarations(decls []models.Declaration) error
	Get(name string) (models.ClassMetadata, bool)
	Names() []string
}
