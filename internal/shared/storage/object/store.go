package object

import (
	"context"
	"io"
	"time"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
// Save returns the storage key (locator) under which the object can later be
// opened, deleted, or linked.
type ObjectStore interface {
	Save(ctx context.Context, userID string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
	Exists(ctx context.Context, storageKey string) (bool, error)
	SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error)
	PublicURL(storageKey string) string
}
