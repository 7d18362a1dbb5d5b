package storage

import "context"

// ObjectStorage is the contract the avatar pipeline needs from the object
// store: overwrite-puts, idempotent deletes, and time-limited read URLs.
// This interface allows for easy faking in tests.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// Ensure S3Client implements ObjectStorage
var _ ObjectStorage = (*S3Client)(nil)
