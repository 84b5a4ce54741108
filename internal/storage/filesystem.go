package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileSystemProvider stores content under a configured root folder.
type FileSystemProvider struct {
	root   string
	logger *slog.Logger
}

// NewFileSystemProvider creates a provider rooted at folder, creating the
// folder when missing.
func NewFileSystemProvider(folder string, logger *slog.Logger) (*FileSystemProvider, error) {
	if strings.TrimSpace(folder) == "" {
		return nil, errors.New("storage folder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return nil, fmt.Errorf("create storage folder %q: %w", folder, err)
	}
	return &FileSystemProvider{root: folder, logger: logger}, nil
}

// Save writes content to the path below the root folder, creating
// intermediate directories as needed.
func (p *FileSystemProvider) Save(ctx context.Context, path string, content io.Reader, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := p.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return fmt.Errorf("create directory for %q: %w", path, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		// O_EXCL makes create-if-absent atomic; no separate existence check.
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}

	out, err := os.OpenFile(fullPath, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			p.logger.ErrorContext(ctx, "file already exists", slog.String("path", path))
			return ErrFileExists
		}
		return fmt.Errorf("open %q for writing: %w", path, err)
	}

	if _, err := io.Copy(out, content); err != nil {
		out.Close()
		os.Remove(fullPath)
		return fmt.Errorf("write %q: %w", path, err)
	}
	return out.Close()
}

// ReadAsStream opens the file at path for reading.
func (p *FileSystemProvider) ReadAsStream(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fullPath, err := p.resolve(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("open %q: %w", path, err)
	}
	return f, nil
}

// Delete removes the file at path; a missing file is not an error.
func (p *FileSystemProvider) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := p.resolve(path)
	if err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "deleting stored file", slog.String("path", path))
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %q: %w", path, err)
	}
	return nil
}

// resolve joins path onto the root and rejects anything escaping it.
func (p *FileSystemProvider) resolve(path string) (string, error) {
	fullPath := filepath.Join(p.root, filepath.FromSlash(path))
	root := filepath.Clean(p.root)
	if fullPath != root && !strings.HasPrefix(fullPath, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the storage folder", path)
	}
	return fullPath, nil
}
