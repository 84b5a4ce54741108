package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/simp-lee/glowingstore/internal/datastore"
	"github.com/simp-lee/glowingstore/internal/domain"
	"github.com/simp-lee/glowingstore/internal/pkg"
)

// maxPrice is the exclusive upper bound of the numeric(8,2) price column.
var maxPrice = decimal.NewFromInt(1_000_000)

// Service exposes product operations to the HTTP layer.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	GetList(ctx context.Context, searchText, orderBy string, pageIndex, itemsPerPage int) (*pkg.ListResult[Product], error)
	Create(ctx context.Context, req SaveProductRequest) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, req SaveProductRequest) (*Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	store *datastore.Store
}

// NewService creates a product Service over the given store.
func NewService(store *datastore.Store) Service {
	return &productService{store: store}
}

// Get retrieves a product by ID. Soft-deleted products are not found.
func (s *productService) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	dbProduct, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProduct(dbProduct), nil
}

// GetList returns one page of products plus pagination metadata.
//
// itemsPerPage must be positive; the handler guards it. The pipeline issues
// one count and, when anything matched, one fetch of itemsPerPage+1 rows: the
// extra row only reveals whether a next page exists and is trimmed from the
// result.
func (s *productService) GetList(ctx context.Context, searchText, orderBy string, pageIndex, itemsPerPage int) (*pkg.ListResult[Product], error) {
	orderClause, err := parseOrderBy(orderBy)
	if err != nil {
		return nil, err
	}

	baseQuery := func() *gorm.DB {
		query := datastore.Query[domain.Product](s.store).WithContext(ctx)
		if searchText != "" {
			query = query.Where("name LIKE ?", "%"+searchText+"%")
		}
		return query
	}

	var totalCount int64
	if err := baseQuery().Count(&totalCount).Error; err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to count products", err)
	}

	if totalCount == 0 {
		result := pkg.NewListResult[Product](nil, 0, 0, false)
		return &result, nil
	}

	// The page count deliberately reproduces the arithmetic this API has
	// always exposed: the remainder is taken of the quotient, not of the
	// total, so it under-counts for some totals. Clients compensate with
	// hasNextPage.
	totalPages := totalCount / int64(itemsPerPage)
	if totalPages%int64(itemsPerPage) > 0 {
		totalPages++
	}

	var dbProducts []domain.Product
	err = baseQuery().
		Preload("Category").
		Order(orderClause).
		Offset(pageIndex * itemsPerPage).
		Limit(itemsPerPage + 1).
		Find(&dbProducts).Error
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to list products", err)
	}

	hasNextPage := len(dbProducts) > itemsPerPage
	if hasNextPage {
		dbProducts = dbProducts[:itemsPerPage]
	}

	products := make([]Product, 0, len(dbProducts))
	for i := range dbProducts {
		products = append(products, *toProduct(&dbProducts[i]))
	}

	result := pkg.NewListResult(products, totalCount, totalPages, hasNextPage)
	return &result, nil
}

// Create inserts a new product after verifying the category exists. The
// unique index on (category, name, price) is the authoritative duplicate
// guard; a commit-time conflict surfaces as Conflict.
func (s *productService) Create(ctx context.Context, req SaveProductRequest) (*Product, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	var categoryCount int64
	err := datastore.Query[domain.Category](s.store).WithContext(ctx).
		Where("id = ?", req.CategoryID).
		Count(&categoryCount).Error
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to check category", err)
	}
	if categoryCount == 0 {
		return nil, domain.NewAppError(domain.CodeClientError, "category not found, please specify an existing category", nil)
	}

	dbProduct := &domain.Product{
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Description:        req.Description,
		Quantity:           req.Quantity,
		Price:              req.Price,
		DiscountPercentage: req.DiscountPercentage,
	}

	session := s.store.Session()
	if err := session.Insert(dbProduct); err != nil {
		return nil, err
	}
	affected, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewAppError(domain.CodeClientError, "an error occurred and no product was added", nil)
	}

	return s.Get(ctx, dbProduct.ID)
}

// Update loads the product, applies the request, and persists the change.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req SaveProductRequest) (*Product, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	dbProduct, err := s.getProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	dbProduct.CategoryID = req.CategoryID
	dbProduct.Name = req.Name
	dbProduct.Description = req.Description
	dbProduct.Quantity = req.Quantity
	dbProduct.Price = req.Price
	dbProduct.DiscountPercentage = req.DiscountPercentage

	session := s.store.Session()
	if err := session.Update(dbProduct); err != nil {
		return nil, err
	}
	affected, err := session.Save(ctx)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewAppError(domain.CodeClientError, "an error occurred and no product was updated", nil)
	}

	return s.Get(ctx, dbProduct.ID)
}

// Delete soft-deletes a product. The row stays in the store with the deleted
// flags set and disappears from every filtered query.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	dbProduct, err := s.getProduct(ctx, id)
	if err != nil {
		return err
	}

	session := s.store.Session()
	if err := session.Delete(dbProduct); err != nil {
		return err
	}
	_, err = session.Save(ctx)
	return err
}

// getProduct fetches a product through the filtered query, so logically
// deleted rows read as absent.
func (s *productService) getProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var dbProduct domain.Product
	err := datastore.Query[domain.Product](s.store).WithContext(ctx).
		Preload("Category").
		First(&dbProduct, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewAppError(domain.CodeNotFound, "no product found", err)
		}
		return nil, domain.NewAppError(domain.CodeInternal, "failed to load product", err)
	}
	return &dbProduct, nil
}

// validateRequest enforces the business rules gin binding tags cannot
// express: price must fit numeric(8,2) and be positive, and a discount
// percentage must be positive when present.
func validateRequest(req *SaveProductRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.NewAppError(domain.CodeValidation, "the name is required", nil)
	}

	if !req.Price.IsPositive() {
		return domain.NewAppError(domain.CodeValidation, "the price is required", nil)
	}
	if req.Price.Exponent() < -2 || req.Price.GreaterThanOrEqual(maxPrice) {
		return domain.NewAppError(domain.CodeValidation, "insert a valid price", nil)
	}

	if req.DiscountPercentage != nil && *req.DiscountPercentage <= 0 {
		return domain.NewAppError(domain.CodeValidation, "the discount percentage must be greater than 0", nil)
	}

	return nil
}

func toProduct(dbProduct *domain.Product) *Product {
	return &Product{
		ID:                 dbProduct.ID,
		Category:           dbProduct.Category.Name,
		Name:               dbProduct.Name,
		Description:        dbProduct.Description,
		Quantity:           dbProduct.Quantity,
		Price:              dbProduct.Price,
		DiscountPercentage: dbProduct.DiscountPercentage,
	}
}
