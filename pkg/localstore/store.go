// Package localstore defines the durable key-value store the client keeps
// between sessions: the search-history list and the drive API-key rotation
// index. Values are JSON-encoded byte slices under fixed string keys.
package localstore

// Well-known storage keys.
const (
	// HistoryKey holds the search history as a JSON string array.
	HistoryKey = "uninav:search-history"
	// KeyRotationKey holds the drive API key rotation index as a JSON integer.
	KeyRotationKey = "uninav:gdrive-key-index"
)

// Store is a generic durable key-value store.
type Store interface {
	// Get retrieves a value by key.
	// Returns nil if key doesn't exist.
	Get(key string) ([]byte, error)

	// Set stores a key-value pair.
	Set(key string, value []byte) error

	// Delete removes a key-value pair.
	Delete(key string) error

	// Close releases any resources.
	Close() error
}
