// Package storage keeps generated documents in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrKeyRequired is returned when an operation is given an empty key
var ErrKeyRequired = errors.New("storage key is required")

// ObjectStorage stores documents and hands out time-limited download links
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)
}
