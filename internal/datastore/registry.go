package datastore

import (
	"fmt"
	"reflect"

	"github.com/simp-lee/glowingstore/internal/domain"
)

// Registry is a static table mapping entity types to their delete behavior.
// It is built once at wiring time; the store consults it instead of scanning
// types at runtime or dispatching on inheritance.
type Registry struct {
	softDelete map[reflect.Type]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{softDelete: make(map[reflect.Type]bool)}
}

// Register records the delete behavior for the given entity type.
// Panics when softDelete is requested for a type that cannot carry the
// soft-delete fields; registration happens at startup, so this is a wiring
// error, not a runtime condition.
func (r *Registry) Register(model domain.Entity, softDelete bool) *Registry {
	if softDelete {
		if _, ok := model.(domain.SoftDeletable); !ok {
			panic(fmt.Sprintf("datastore: %T registered as soft-deletable but does not embed DeletableEntity", model))
		}
	}
	r.softDelete[entityType(model)] = softDelete
	return r
}

// SoftDelete reports whether the given entity's type is registered as
// soft-deletable. Unregistered types default to physical deletes.
func (r *Registry) SoftDelete(model any) bool {
	return r.softDelete[entityType(model)]
}

// entityType normalizes pointer types so &Product{} and Product{} map to the
// same entry.
func entityType(model any) reflect.Type {
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// DefaultRegistry returns the registry for the application's entity set.
// This is the single place that decides which tables are soft-deleted.
func DefaultRegistry() *Registry {
	return NewRegistry().
		Register(&domain.Category{}, false).
		Register(&domain.Product{}, true).
		Register(&domain.Image{}, false).
		Register(&domain.User{}, false).
		Register(&domain.Role{}, false)
}
