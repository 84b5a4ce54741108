// Package datastore implements the unit-of-work persistence gateway: typed
// CRUD over any domain entity, with soft-delete interception and audit
// stamping applied in a single pre-commit rewrite pass.
package datastore

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/glowingstore/internal/domain"
)

// ErrNilEntity is returned when a nil entity is staged.
var ErrNilEntity = errors.New("datastore: entity is nil")

type opKind int

const (
	opInsert opKind = iota
	opUpdate
	opDelete
)

type operation struct {
	kind   opKind
	entity domain.Entity
}

// Store is a request-scoped unit of work over a gorm connection. Mutations
// are staged with Insert/Update/Delete and written atomically by Save. A
// Store is not safe for concurrent use; every request gets its own.
type Store struct {
	db       *gorm.DB
	registry *Registry
	pending  []operation
}

// NewStore creates a Store over the given connection and delete-behavior
// registry.
func NewStore(db *gorm.DB, registry *Registry) *Store {
	return &Store{db: db, registry: registry}
}

// DB exposes the underlying connection for health checks and wiring.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Session returns a fresh unit of work over the same connection and registry.
// Long-lived services hold a root Store and mint a session per operation so
// staged mutations never leak across requests.
func (s *Store) Session() *Store {
	return &Store{db: s.db, registry: s.registry}
}

// Insert stages an entity for creation. The ID and creation timestamp are
// assigned during Save.
func (s *Store) Insert(entity domain.Entity) error {
	if isNil(entity) {
		return ErrNilEntity
	}
	s.pending = append(s.pending, operation{kind: opInsert, entity: entity})
	return nil
}

// Update stages an entity for modification. Fetch the row first, mutate it in
// place, then stage it here; this is the explicit replacement for a tracked
// change set. The modification timestamp is stamped during Save.
func (s *Store) Update(entity domain.Entity) error {
	if isNil(entity) {
		return ErrNilEntity
	}
	s.pending = append(s.pending, operation{kind: opUpdate, entity: entity})
	return nil
}

// Delete stages an entity for removal. Whether the removal is physical or a
// logical rewrite is decided during Save from the registry.
func (s *Store) Delete(entity domain.Entity) error {
	if isNil(entity) {
		return ErrNilEntity
	}
	s.pending = append(s.pending, operation{kind: opDelete, entity: entity})
	return nil
}

// DeleteAll stages multiple entities for removal.
func (s *Store) DeleteAll(entities ...domain.Entity) error {
	if entities == nil {
		return ErrNilEntity
	}
	for _, entity := range entities {
		if err := s.Delete(entity); err != nil {
			return err
		}
	}
	return nil
}

// Save applies the audit/soft-delete rewrite pass to every staged operation
// and then persists them in one transaction, returning the number of affected
// rows. Staged operations are cleared only on success.
//
// The rewrite runs in a single pass per operation, mirroring the commit
// behavior of the original change tracker:
//
//   - updates of a soft-deletable entity unconditionally clear the deleted
//     flags, so updating a previously soft-deleted row un-deletes it. This is
//     documented behavior, not an accident.
//   - every update stamps LastModificationDate.
//   - deletes of a soft-deletable entity are converted into updates that set
//     the deleted flags. The conversion happens after the update branch, so
//     converted deletes keep their flags and receive no modification stamp.
//   - deletes of any other entity remain physical.
func (s *Store) Save(ctx context.Context) (int64, error) {
	now := time.Now().UTC()

	for i := range s.pending {
		op := &s.pending[i]

		switch op.kind {
		case opInsert:
			op.entity.MarkCreated(uuid.New(), now)

		case opUpdate:
			if s.registry.SoftDelete(op.entity) {
				op.entity.(domain.SoftDeletable).ClearDeleted()
			}
			op.entity.MarkModified(now)

		case opDelete:
			if s.registry.SoftDelete(op.entity) {
				op.kind = opUpdate
				op.entity.(domain.SoftDeletable).MarkDeleted(now)
			}
		}
	}

	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range s.pending {
			var res *gorm.DB

			// Associations are read-only joins here; the gateway never
			// cascades writes through them.
			switch op.kind {
			case opInsert:
				res = tx.Omit(clause.Associations).Create(op.entity)
			case opUpdate:
				res = tx.Omit(clause.Associations).Save(op.entity)
			case opDelete:
				res = tx.Delete(op.entity)
			}

			if res.Error != nil {
				return res.Error
			}
			affected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, mapError(err)
	}

	s.pending = s.pending[:0]
	return affected, nil
}

// ExecuteInTransaction runs fn inside a single database transaction,
// committing on success and rolling back on error or panic. Transient-fault
// retry is the driver's concern, so fn must be idempotent or free of side
// effects outside the transaction.
func (s *Store) ExecuteInTransaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, registry: s.registry})
	})
}

// mapError converts gorm errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeConflict, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by examining the
// error message. This is needed because not all gorm dialectors translate
// driver-level errors to gorm.ErrDuplicatedKey (e.g. the pure-Go SQLite
// driver).
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// isNil reports whether the entity interface holds no value or a typed nil
// pointer.
func isNil(entity domain.Entity) bool {
	if entity == nil {
		return true
	}
	v := reflect.ValueOf(entity)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
