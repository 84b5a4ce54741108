package datastore

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/glowingstore/internal/domain"
)

type queryConfig struct {
	ignoreFilters bool
	rawSQL        string
	rawArgs       []any
}

// QueryOption adjusts how Query builds its handle.
type QueryOption func(*queryConfig)

// IgnoreFilters bypasses the standing soft-delete filter, exposing logically
// deleted rows.
func IgnoreFilters() QueryOption {
	return func(c *queryConfig) { c.ignoreFilters = true }
}

// RawSQL replaces the generated base query with the given statement. Raw
// statements do not compose with the standing soft-delete filter; callers
// embed any conditions themselves.
func RawSQL(sql string, args ...any) QueryOption {
	return func(c *queryConfig) {
		c.rawSQL = sql
		c.rawArgs = args
	}
}

// Query returns a lazily-evaluated query handle over entities of type T.
// For types registered soft-deletable, rows with the deleted flags set are
// excluded by a standing filter unless IgnoreFilters is supplied. The handle
// is a plain gorm chain, so callers add conditions, ordering, and paging and
// finish with Find/Count/First.
func Query[T any](s *Store, opts ...QueryOption) *gorm.DB {
	var cfg queryConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.rawSQL != "" {
		return s.db.Raw(cfg.rawSQL, cfg.rawArgs...)
	}

	var model T
	tx := s.db.Model(&model)
	if !cfg.ignoreFilters && s.registry.SoftDelete(&model) {
		tx = tx.Where("is_deleted = ? AND deleted_date IS NULL", false)
	}
	return tx
}

// GetByID performs a point lookup by primary key. Absence is reported as
// domain.ErrNotFound, never as an internal error. Point lookups do not apply
// the standing soft-delete filter: a logically deleted row is still found,
// matching identity-map lookup semantics.
func GetByID[T any](ctx context.Context, s *Store, id uuid.UUID) (*T, error) {
	var entity T
	if err := s.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, mapError(err)
	}
	return &entity, nil
}
