package ports

import "context"

// KVStore is a string key/value store.
// A store handed to the submission pipeline is already scoped to one session.
type KVStore interface {
	// Get returns the value for key, or domain.ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key currently stored.
	Keys(ctx context.Context) ([]string, error)
}
