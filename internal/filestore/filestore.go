// Package filestore stores report artifacts behind a portable blob interface.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // local filesystem driver

	apperrors "github.com/allisson/tokenvault/internal/errors"
)

// Store reads and writes artifact blobs.
type Store interface {
	// Write stores data under the key and returns the key.
	Write(ctx context.Context, key string, data []byte) (string, error)

	// Read retrieves the blob stored under the key.
	Read(ctx context.Context, key string) ([]byte, error)

	// Hash returns the SHA-256 hex digest of the stored blob.
	Hash(ctx context.Context, key string) (string, error)
}

// BlobStore implements Store on a gocloud blob bucket. The bucket URL selects
// the backend; file://... serves local deployments.
type BlobStore struct {
	bucket *blob.Bucket
}

// OpenBlobStore opens the bucket behind the URL.
func OpenBlobStore(ctx context.Context, bucketURL string) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open artifact bucket")
	}
	return &BlobStore{bucket: bucket}, nil
}

// Close releases the bucket.
func (s *BlobStore) Close() error {
	return s.bucket.Close()
}

// Write stores data under the key.
func (s *BlobStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if err := s.bucket.WriteAll(ctx, key, data, nil); err != nil {
		return "", apperrors.Wrap(err, "failed to write artifact")
	}
	return key, nil
}

// Read retrieves the blob stored under the key.
func (s *BlobStore) Read(ctx context.Context, key string) ([]byte, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read artifact")
	}
	return data, nil
}

// Hash returns the SHA-256 hex digest of the stored blob.
func (s *BlobStore) Hash(ctx context.Context, key string) (string, error) {
	data, err := s.Read(ctx, key)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
