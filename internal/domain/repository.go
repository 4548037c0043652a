package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ProductStore defines the remote product store operations used by the core
type ProductStore interface {
	ListProducts(ctx context.Context) ([]ProductRecord, error)
	GetByBarcode(ctx context.Context, barcode string) (*ProductRecord, error)
	SetCategory(ctx context.Context, id string, category BucketName) error
}

// ReportingStore defines the read-only reporting endpoints of the remote store
type ReportingStore interface {
	Analytics(ctx context.Context) (*Analytics, error)
	Search(ctx context.Context, query SearchQuery) ([]ProductRecord, error)
}

// Recognizer extracts text from an image
type Recognizer interface {
	Recognize(ctx context.Context, input ScannedInput) (string, error)
}
