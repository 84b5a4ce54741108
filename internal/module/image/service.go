package image

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/simp-lee/glowingstore/internal/datastore"
	"github.com/simp-lee/glowingstore/internal/domain"
	"github.com/simp-lee/glowingstore/internal/storage"
)

// Service exposes image operations to the HTTP layer.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*Image, error)
	GetList(ctx context.Context) ([]Image, error)
	Read(ctx context.Context, id uuid.UUID) (*StreamContent, error)
	Save(ctx context.Context, fileName string, content io.Reader, length int64, description string) (*Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type imageService struct {
	store    *datastore.Store
	provider storage.Provider
	logger   *slog.Logger
}

// NewService creates an image Service over the given store and storage
// provider.
func NewService(store *datastore.Store, provider storage.Provider, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &imageService{store: store, provider: provider, logger: logger}
}

// Get retrieves image metadata by ID.
func (s *imageService) Get(ctx context.Context, id uuid.UUID) (*Image, error) {
	dbImage, err := s.getImage(ctx, id)
	if err != nil {
		return nil, err
	}
	return toImage(dbImage), nil
}

// GetList returns all images ordered by path.
func (s *imageService) GetList(ctx context.Context) ([]Image, error) {
	var dbImages []domain.Image
	err := datastore.Query[domain.Image](s.store).WithContext(ctx).
		Order("path").
		Find(&dbImages).Error
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to list images", err)
	}

	images := make([]Image, 0, len(dbImages))
	for i := range dbImages {
		images = append(images, *toImage(&dbImages[i]))
	}
	return images, nil
}

// Read opens the stored bytes of an image. The row existing without a
// readable blob is reported as not found, matching the delete contract.
func (s *imageService) Read(ctx context.Context, id uuid.UUID) (*StreamContent, error) {
	dbImage, err := s.getImage(ctx, id)
	if err != nil {
		return nil, err
	}

	stream, err := s.provider.ReadAsStream(ctx, dbImage.Path)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return nil, domain.NewAppError(domain.CodeNotFound, "no stream found for the specified image", err)
		}
		return nil, domain.NewAppError(domain.CodeInternal, "failed to read image content", err)
	}

	return &StreamContent{Stream: stream, ContentType: dbImage.ContentType}, nil
}

// Save stores the uploaded bytes under a date-based path and records the
// metadata row. A path collision in the storage provider is a conflict, and
// the blob is removed again if the metadata insert fails.
func (s *imageService) Save(ctx context.Context, fileName string, content io.Reader, length int64, description string) (*Image, error) {
	path := storage.CreatePath(fileName)

	// Sniff the content type from the leading bytes, then stitch them back
	// in front of the remaining stream.
	header := make([]byte, 3072)
	n, err := io.ReadFull(content, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to read upload", err)
	}
	contentType := mimetype.Detect(header[:n]).String()
	full := io.MultiReader(bytes.NewReader(header[:n]), content)

	if err := s.provider.Save(ctx, path, full, false); err != nil {
		if errors.Is(err, storage.ErrFileExists) {
			return nil, domain.NewAppError(domain.CodeConflict, "an image already exists at this path", err)
		}
		return nil, domain.NewAppError(domain.CodeInternal, "failed to store image content", err)
	}

	dbImage := &domain.Image{
		Path:        path,
		ContentType: contentType,
		Length:      length,
		Description: description,
	}

	session := s.store.Session()
	if err := session.Insert(dbImage); err != nil {
		return nil, err
	}
	if _, err := session.Save(ctx); err != nil {
		if deleteErr := s.provider.Delete(ctx, path); deleteErr != nil {
			s.logger.ErrorContext(ctx, "failed to remove orphaned blob",
				slog.String("path", path), slog.Any("error", deleteErr))
		}
		return nil, err
	}

	return toImage(dbImage), nil
}

// Delete removes the metadata row and then the stored bytes. Provider deletes
// are idempotent, so a missing blob does not fail the operation.
func (s *imageService) Delete(ctx context.Context, id uuid.UUID) error {
	dbImage, err := s.getImage(ctx, id)
	if err != nil {
		return err
	}

	session := s.store.Session()
	if err := session.Delete(dbImage); err != nil {
		return err
	}
	if _, err := session.Save(ctx); err != nil {
		return err
	}

	if err := s.provider.Delete(ctx, dbImage.Path); err != nil {
		return domain.NewAppError(domain.CodeInternal, "failed to delete image content", err)
	}
	return nil
}

func (s *imageService) getImage(ctx context.Context, id uuid.UUID) (*domain.Image, error) {
	dbImage, err := datastore.GetByID[domain.Image](ctx, s.store, id)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeNotFound, "no image found", err)
		}
		return nil, err
	}
	return dbImage, nil
}

func toImage(dbImage *domain.Image) *Image {
	return &Image{
		ID:          dbImage.ID,
		Path:        dbImage.Path,
		ContentType: dbImage.ContentType,
		Length:      dbImage.Length,
		Description: dbImage.Description,
	}
}
