// Package storage keeps uploaded images in an S3-compatible bucket. Objects are
// streamed through; nothing is written to local disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrUnavailable is returned while the storage circuit breaker is open.
var ErrUnavailable = errors.New("object storage unavailable")

// PutOptions describe an upload. Size is -1 when unknown.
type PutOptions struct {
	Size         int64
	ContentType  string
	CacheControl string
	// Filename is recorded as object metadata for operators browsing the bucket.
	Filename string
}

// Object is a stored upload.
type Object struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Storage is the subset of bucket operations the media service needs.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (Object, error)
	// Delete removes key; deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited download URL.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
