package category

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/simp-lee/glowingstore/internal/datastore"
	"github.com/simp-lee/glowingstore/internal/domain"
)

// Service exposes category operations to the HTTP layer.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*Category, error)
	GetList(ctx context.Context, name string) ([]Category, error)
	Create(ctx context.Context, req SaveCategoryRequest) (*Category, error)
	Update(ctx context.Context, id uuid.UUID, req SaveCategoryRequest) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	store *datastore.Store
}

// NewService creates a category Service over the given store.
func NewService(store *datastore.Store) Service {
	return &categoryService{store: store}
}

// Get retrieves a category by ID.
func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	dbCategory, err := datastore.GetByID[domain.Category](ctx, s.store, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeNotFound, "no category found", err)
		}
		return nil, err
	}
	return toCategory(dbCategory), nil
}

// GetList returns all categories ordered by name, optionally filtered by a
// name substring.
func (s *categoryService) GetList(ctx context.Context, name string) ([]Category, error) {
	query := datastore.Query[domain.Category](s.store).WithContext(ctx)
	if name = strings.TrimSpace(name); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	var dbCategories []domain.Category
	if err := query.Order("name").Find(&dbCategories).Error; err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to list categories", err)
	}

	categories := make([]Category, 0, len(dbCategories))
	for i := range dbCategories {
		categories = append(categories, *toCategory(&dbCategories[i]))
	}
	return categories, nil
}

// Create inserts a new category. A category with the same name and description
// already present is a conflict.
func (s *categoryService) Create(ctx context.Context, req SaveCategoryRequest) (*Category, error) {
	var count int64
	err := datastore.Query[domain.Category](s.store).WithContext(ctx).
		Where("name = ? AND description = ?", req.Name, req.Description).
		Count(&count).Error
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to check for existing category", err)
	}
	if count > 0 {
		return nil, domain.NewAppError(domain.CodeConflict, "this category already exists", nil)
	}

	dbCategory := &domain.Category{
		Name:        req.Name,
		Description: req.Description,
	}

	session := s.store.Session()
	if err := session.Insert(dbCategory); err != nil {
		return nil, err
	}
	affected, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewAppError(domain.CodeClientError, "an error occurred and no category was added", nil)
	}

	return toCategory(dbCategory), nil
}

// Update loads the category, applies the request, and persists the change.
func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req SaveCategoryRequest) (*Category, error) {
	dbCategory, err := datastore.GetByID[domain.Category](ctx, s.store, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeNotFound, "no category found", err)
		}
		return nil, err
	}

	dbCategory.Name = req.Name
	dbCategory.Description = req.Description

	session := s.store.Session()
	if err := session.Update(dbCategory); err != nil {
		return nil, err
	}
	affected, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewAppError(domain.CodeClientError, "an error occurred and no category was updated", nil)
	}

	return toCategory(dbCategory), nil
}

// Delete removes a category. Categories are not soft-deletable; the row is
// physically removed.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	dbCategory, err := datastore.GetByID[domain.Category](ctx, s.store, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeNotFound, "no category found", err)
		}
		return err
	}

	session := s.store.Session()
	if err := session.Delete(dbCategory); err != nil {
		return err
	}
	_, err = session.Save(ctx)
	return err
}

func toCategory(dbCategory *domain.Category) *Category {
	return &Category{
		ID:          dbCategory.ID,
		Name:        dbCategory.Name,
		Description: dbCategory.Description,
	}
}
