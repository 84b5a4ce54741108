package image

import (
	"io"

	"github.com/google/uuid"
)

// Image is the API representation of an uploaded image.
type Image struct {
	ID          uuid.UUID `json:"id"`
	Path        string    `json:"path"`
	ContentType string    `json:"contentType"`
	Length      int64     `json:"length"`
	Description string    `json:"description,omitempty"`
}

// StreamContent couples an image's bytes with its content type for download
// responses. The caller owns the stream and must close it.
type StreamContent struct {
	Stream      io.ReadCloser
	ContentType string
}
