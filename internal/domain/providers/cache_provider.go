package providers

import (
	"context"
)

// CacheProvider stores serialized response and aggregate payloads with a TTL.
type CacheProvider interface {
	// Get returns the cached bytes for key, or an error when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for expirationSeconds.
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete evicts key so the next read rebuilds it.
	Delete(ctx context.Context, key string) error
}
