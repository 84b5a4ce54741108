package image

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/simp-lee/glowingstore/internal/datastore"
	"github.com/simp-lee/glowingstore/internal/domain"
	"github.com/simp-lee/glowingstore/internal/storage"
)

func setupTestService(t *testing.T) Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Image{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	provider, err := storage.NewFileSystemProvider(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileSystemProvider: %v", err)
	}

	store := datastore.NewStore(db, datastore.DefaultRegistry())
	return NewService(store, provider, nil)
}

func TestSaveReadDeleteRoundTrip(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	content := []byte("\x89PNG\r\n\x1a\nfake image bytes")
	saved, err := svc.Save(ctx, "photo.png", bytes.NewReader(content), int64(len(content)), "a photo")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.ID == uuid.Nil {
		t.Fatal("expected non-nil image ID")
	}
	if saved.Length != int64(len(content)) {
		t.Errorf("expected length %d, got %d", len(content), saved.Length)
	}
	if !strings.HasSuffix(saved.Path, "/photo.png") {
		t.Errorf("expected date-prefixed path ending in /photo.png, got %q", saved.Path)
	}

	stream, err := svc.Read(ctx, saved.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, err := io.ReadAll(stream.Stream)
	stream.Stream.Close()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("round-tripped bytes differ: got %q", got)
	}

	if err := svc.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Read(ctx, saved.ID); !domain.IsNotFound(err) {
		t.Errorf("expected NotFound after delete, got %v", err)
	}
}

func TestSave_DuplicatePathIsConflict(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "photo.png", strings.NewReader("one"), 3, ""); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	// Same file name on the same day lands on the same path.
	_, err := svc.Save(ctx, "photo.png", strings.NewReader("two"), 3, "")
	if !domain.IsConflict(err) {
		t.Errorf("expected Conflict, got %v", err)
	}
}

func TestSave_DetectsContentType(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	saved, err := svc.Save(ctx, "notes.txt", strings.NewReader("plain text body"), 15, "")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(saved.ContentType, "text/plain") {
		t.Errorf("expected text/plain content type, got %q", saved.ContentType)
	}
}

func TestGetList_OrderedByPath(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	for _, name := range []string{"b.txt", "a.txt"} {
		if _, err := svc.Save(ctx, name, strings.NewReader("x"), 1, ""); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	images, err := svc.GetList(ctx)
	if err != nil {
		t.Fatalf("GetList: %v", err)
	}
	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}
	if images[0].Path > images[1].Path {
		t.Errorf("expected paths in ascending order, got %q then %q", images[0].Path, images[1].Path)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := setupTestService(t)

	if _, err := svc.Get(context.Background(), uuid.New()); !domain.IsNotFound(err) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
