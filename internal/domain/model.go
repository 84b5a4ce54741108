package domain

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity is the common base struct for all persisted entities.
// It replaces gorm.Model: primary keys are UUIDs generated at insert time and
// deletion is decided by the datastore registry instead of gorm's implicit
// DeletedAt handling. The ID is immutable once assigned.
type BaseEntity struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreationDate         time.Time  `gorm:"not null" json:"creation_date"`
	LastModificationDate *time.Time `json:"last_modification_date,omitempty"`
}

// DeletableEntity extends BaseEntity with soft-delete bookkeeping.
// Invariant: IsDeleted == true exactly when DeletedDate != nil.
type DeletableEntity struct {
	BaseEntity
	IsDeleted   bool       `gorm:"not null;default:false" json:"-"`
	DeletedDate *time.Time `json:"-"`
}

// Entity is the capability surface the datastore needs on every persisted
// type. BaseEntity implements it, so embedding is enough.
type Entity interface {
	EntityID() uuid.UUID
	MarkCreated(id uuid.UUID, at time.Time)
	MarkModified(at time.Time)
}

// SoftDeletable is the mutation surface the datastore uses when rewriting a
// staged physical delete into a logical one. Whether the rewrite applies is
// decided by the datastore registry, not by this interface.
type SoftDeletable interface {
	Entity
	MarkDeleted(at time.Time)
	ClearDeleted()
}

// EntityID returns the primary key.
func (e *BaseEntity) EntityID() uuid.UUID { return e.ID }

// MarkCreated assigns the primary key (only when still unset) and stamps the
// creation time.
func (e *BaseEntity) MarkCreated(id uuid.UUID, at time.Time) {
	if e.ID == uuid.Nil {
		e.ID = id
	}
	e.CreationDate = at
}

// MarkModified stamps the last modification time.
func (e *BaseEntity) MarkModified(at time.Time) {
	t := at
	e.LastModificationDate = &t
}

// MarkDeleted flags the entity as logically deleted.
func (e *DeletableEntity) MarkDeleted(at time.Time) {
	t := at
	e.IsDeleted = true
	e.DeletedDate = &t
}

// ClearDeleted removes the logical-delete flags. Called on every update of a
// soft-deletable entity, so updating a previously deleted row un-deletes it.
func (e *DeletableEntity) ClearDeleted() {
	e.IsDeleted = false
	e.DeletedDate = nil
}
