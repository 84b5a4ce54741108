// Package storage abstracts byte-stream persistence behind save, read and
// delete-by-path operations. Implementations exist for the local filesystem
// and for S3-compatible object stores; callers never depend on which one is
// wired.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrFileExists is returned by Save when the path is already taken and
// overwrite was not requested. This is an I/O condition, not a domain result;
// calling services handle it explicitly.
var ErrFileExists = errors.New("storage: file already exists")

// ErrFileNotFound is returned by ReadAsStream when no content exists at the
// path.
var ErrFileNotFound = errors.New("storage: file not found")

// Provider is the byte-stream persistence contract.
type Provider interface {
	// Save writes content at path. When overwrite is false and the path
	// already exists, Save fails with ErrFileExists.
	Save(ctx context.Context, path string, content io.Reader, overwrite bool) error

	// ReadAsStream opens the content at path for reading. The caller owns the
	// returned stream and must close it. Missing content yields
	// ErrFileNotFound.
	ReadAsStream(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the content at path. Deleting a missing path is a no-op.
	Delete(ctx context.Context, path string) error
}
