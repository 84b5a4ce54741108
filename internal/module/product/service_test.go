package product

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/simp-lee/glowingstore/internal/datastore"
	"github.com/simp-lee/glowingstore/internal/domain"
)

// setupTestStore creates an in-memory SQLite database with the catalog schema
// and registers a callback that counts executed queries.
func setupTestStore(t *testing.T) (*datastore.Store, *int) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Category{}, &domain.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	queries := 0
	err = db.Callback().Query().After("gorm:query").Register("test:count_queries", func(*gorm.DB) {
		queries++
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	return datastore.NewStore(db, datastore.DefaultRegistry()), &queries
}

func seedCategory(t *testing.T, store *datastore.Store, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{Name: name}
	if err := store.Insert(c); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := store.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return c
}

func seedProduct(t *testing.T, store *datastore.Store, categoryID uuid.UUID, name, price string) *domain.Product {
	t.Helper()
	p := &domain.Product{
		CategoryID:  categoryID,
		Name:        name,
		Description: "seeded",
		Quantity:    5,
		Price:       decimal.RequireFromString(price),
	}
	if err := store.Insert(p); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := store.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return p
}

func seedThreeProducts(t *testing.T, store *datastore.Store) *domain.Category {
	t.Helper()
	cat := seedCategory(t, store, "Books")
	seedProduct(t, store, cat.ID, "A", "1.00")
	seedProduct(t, store, cat.ID, "B", "2.00")
	seedProduct(t, store, cat.ID, "C", "3.00")
	return cat
}

func TestGetList_FirstPageWithLookAhead(t *testing.T) {
	store, _ := setupTestStore(t)
	seedThreeProducts(t, store)
	svc := NewService(store)

	result, err := svc.GetList(context.Background(), "", "Name", 0, 2)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}

	if len(result.Content) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Content))
	}
	if result.Content[0].Name != "A" || result.Content[1].Name != "B" {
		t.Errorf("expected [A B], got [%s %s]", result.Content[0].Name, result.Content[1].Name)
	}
	if !result.HasNextPage {
		t.Error("expected hasNextPage=true")
	}
	if result.TotalCount != 3 {
		t.Errorf("expected totalCount=3, got %d", result.TotalCount)
	}
}

func TestGetList_LastPage(t *testing.T) {
	store, _ := setupTestStore(t)
	seedThreeProducts(t, store)
	svc := NewService(store)

	result, err := svc.GetList(context.Background(), "", "Name", 1, 2)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}

	if len(result.Content) != 1 || result.Content[0].Name != "C" {
		t.Fatalf("expected [C], got %+v", result.Content)
	}
	if result.HasNextPage {
		t.Error("expected hasNextPage=false")
	}
}

func TestGetList_NoMatchShortCircuits(t *testing.T) {
	store, queries := setupTestStore(t)
	seedThreeProducts(t, store)
	svc := NewService(store)

	*queries = 0
	result, err := svc.GetList(context.Background(), "zzz-no-match", "Name", 0, 2)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}

	if len(result.Content) != 0 {
		t.Errorf("expected empty content, got %d items", len(result.Content))
	}
	if result.TotalCount != 0 || result.TotalPages != 0 || result.HasNextPage {
		t.Errorf("expected zeroed metadata, got %+v", result)
	}
	if *queries != 1 {
		t.Errorf("expected exactly 1 query (the count), got %d", *queries)
	}
}

func TestGetList_SearchFiltersByName(t *testing.T) {
	store, _ := setupTestStore(t)
	cat := seedCategory(t, store, "Books")
	seedProduct(t, store, cat.ID, "Go in Action", "39.90")
	seedProduct(t, store, cat.ID, "Rust in Action", "44.90")
	svc := NewService(store)

	result, err := svc.GetList(context.Background(), "Go", "Name", 0, 10)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Name != "Go in Action" {
		t.Fatalf("expected only the Go title, got %+v", result.Content)
	}
}

func TestGetList_FlattensCategoryName(t *testing.T) {
	store, _ := setupTestStore(t)
	seedThreeProducts(t, store)
	svc := NewService(store)

	result, err := svc.GetList(context.Background(), "", "Name, Price", 0, 10)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	for _, p := range result.Content {
		if p.Category != "Books" {
			t.Errorf("product %s: expected category name Books, got %q", p.Name, p.Category)
		}
	}
}

func TestGetList_ExcludesSoftDeleted(t *testing.T) {
	store, _ := setupTestStore(t)
	cat := seedCategory(t, store, "Books")
	seedProduct(t, store, cat.ID, "A", "1.00")
	b := seedProduct(t, store, cat.ID, "B", "2.00")
	svc := NewService(store)

	if err := svc.Delete(context.Background(), b.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	result, err := svc.GetList(context.Background(), "", "Name", 0, 10)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(result.Content) != 1 || result.Content[0].Name != "A" {
		t.Fatalf("expected only A after soft delete, got %+v", result.Content)
	}
	if result.TotalCount != 1 {
		t.Errorf("expected totalCount=1, got %d", result.TotalCount)
	}
}

func TestGetList_RejectsUnknownSortField(t *testing.T) {
	store, _ := setupTestStore(t)
	svc := NewService(store)

	_, err := svc.GetList(context.Background(), "", "Name; DROP TABLE products", 0, 10)
	if !domain.IsValidation(err) {
		t.Errorf("expected Validation, got %v", err)
	}
}

func TestCreate_UnknownCategoryIsClientError(t *testing.T) {
	store, _ := setupTestStore(t)
	svc := NewService(store)

	_, err := svc.Create(context.Background(), SaveProductRequest{
		CategoryID:  uuid.New(),
		Name:        "Orphan",
		Description: "no category",
		Quantity:    1,
		Price:       decimal.RequireFromString("9.99"),
	})
	if !domain.IsClientError(err) {
		t.Errorf("expected ClientError, got %v", err)
	}

	var count int64
	if err := store.DB().Model(&domain.Product{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no row inserted, got %d", count)
	}
}

func TestCreate_ReturnsFlattenedCategory(t *testing.T) {
	store, _ := setupTestStore(t)
	cat := seedCategory(t, store, "Books")
	svc := NewService(store)

	p, err := svc.Create(context.Background(), SaveProductRequest{
		CategoryID:  cat.ID,
		Name:        "Go in Action",
		Description: "a book",
		Quantity:    3,
		Price:       decimal.RequireFromString("39.90"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Category != "Books" {
		t.Errorf("expected category Books, got %q", p.Category)
	}
	if p.ID == uuid.Nil {
		t.Error("expected non-nil product ID")
	}
}

func TestCreate_InvalidPrice(t *testing.T) {
	store, _ := setupTestStore(t)
	cat := seedCategory(t, store, "Books")
	svc := NewService(store)

	for _, price := range []string{"9.999", "1000000.00", "-1.00"} {
		_, err := svc.Create(context.Background(), SaveProductRequest{
			CategoryID:  cat.ID,
			Name:        "Bad price",
			Description: "x",
			Quantity:    1,
			Price:       decimal.RequireFromString(price),
		})
		if !domain.IsValidation(err) {
			t.Errorf("price %s: expected Validation, got %v", price, err)
		}
	}
}

func TestDelete_HidesProductFromGet(t *testing.T) {
	store, _ := setupTestStore(t)
	cat := seedCategory(t, store, "Books")
	p := seedProduct(t, store, cat.ID, "Go in Action", "39.90")
	svc := NewService(store)
	ctx := context.Background()

	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := svc.Get(ctx, p.ID); !domain.IsNotFound(err) {
		t.Errorf("expected NotFound after soft delete, got %v", err)
	}

	// Deleting again reads as absent too.
	if err := svc.Delete(ctx, p.ID); !domain.IsNotFound(err) {
		t.Errorf("expected NotFound on second delete, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)
	cat := seedCategory(t, store, "Books")
	svc := NewService(store)

	_, err := svc.Update(context.Background(), uuid.New(), SaveProductRequest{
		CategoryID:  cat.ID,
		Name:        "Ghost",
		Description: "x",
		Quantity:    1,
		Price:       decimal.RequireFromString("1.00"),
	})
	if !domain.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestUpdate_PersistsChanges(t *testing.T) {
	store, _ := setupTestStore(t)
	cat := seedCategory(t, store, "Books")
	p := seedProduct(t, store, cat.ID, "Go in Action", "39.90")
	svc := NewService(store)

	got, err := svc.Update(context.Background(), p.ID, SaveProductRequest{
		CategoryID:  cat.ID,
		Name:        "Go in Action, Second Edition",
		Description: "updated",
		Quantity:    7,
		Price:       decimal.RequireFromString("44.90"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Name != "Go in Action, Second Edition" || got.Quantity != 7 {
		t.Errorf("unexpected result: %+v", got)
	}
}
