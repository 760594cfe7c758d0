// Package storage provides the key-value persistence contract the study
// store writes through, plus memory and MongoDB implementations.
package storage

import "context"

// KV is the persistence contract: opaque byte blobs under string keys.
type KV interface {
	// Get returns the blob stored under key. The boolean reports whether the
	// key exists; a missing key is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
