package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures the S3-compatible provider. Path-style addressing is
// used so self-hosted object stores (CEPH, MinIO, Hetzner) work unchanged.
type S3Options struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
}

// S3Provider stores content in a single bucket of an S3-compatible store.
type S3Provider struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

// NewS3Provider creates a provider from static credentials.
func NewS3Provider(opts S3Options, logger *slog.Logger) (*S3Provider, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" {
		return nil, errors.New("s3 endpoint and credentials are required")
	}
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	endpoint := strings.TrimRight(opts.Endpoint, "/")

	client := s3.New(s3.Options{
		Region:       opts.Region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		UsePathStyle: true,
	})

	return &S3Provider{client: client, bucket: opts.Bucket, logger: logger}, nil
}

// Save uploads content under path. Without overwrite, an existing object at
// the same key fails the call. The existence check and the upload are two
// requests, so a concurrent writer can still slip between them; the unique
// path constraint on the image row is the backstop.
func (p *S3Provider) Save(ctx context.Context, path string, content io.Reader, overwrite bool) error {
	if !overwrite {
		exists, err := p.exists(ctx, path)
		if err != nil {
			return err
		}
		if exists {
			p.logger.ErrorContext(ctx, "object already exists", slog.String("path", path))
			return ErrFileExists
		}
	}

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(path),
		Body:   content,
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", p.bucket, path, err)
	}
	return nil
}

// ReadAsStream downloads the object at path. The caller must close the
// returned body.
func (p *S3Provider) ReadAsStream(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("s3 download %s/%s: %w", p.bucket, path, err)
	}
	return out.Body, nil
}

// Delete removes the object at path. S3 deletes are idempotent, so a missing
// key is already a no-op.
func (p *S3Provider) Delete(ctx context.Context, path string) error {
	p.logger.DebugContext(ctx, "deleting stored object", slog.String("path", path))
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s/%s: %w", p.bucket, path, err)
	}
	return nil
}

func (p *S3Provider) exists(ctx context.Context, path string) (bool, error) {
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %s/%s: %w", p.bucket, path, err)
	}
	return true, nil
}
