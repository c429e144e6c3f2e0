package localstore

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
)

// KeyRotator hands out drive API keys round-robin and persists the rotation
// index so restarts continue where the last session stopped. Persistence is
// best effort: a failed write keeps the in-memory index advancing.
type KeyRotator struct {
	mu    sync.Mutex
	store Store
	keys  []string
	index int
}

// NewKeyRotator loads the persisted index, defaulting to 0 when the stored
// value is missing or malformed.
func NewKeyRotator(store Store, keys []string) *KeyRotator {
	r := &KeyRotator{store: store, keys: keys}

	raw, err := store.Get(KeyRotationKey)
	if err != nil {
		log.Warnf("Failed to read key rotation index: %v", err)
		return r
	}
	if raw == nil {
		return r
	}
	var index int
	if err := json.Unmarshal(raw, &index); err != nil {
		log.Warnf("Malformed key rotation index, resetting: %v", err)
		return r
	}
	if len(keys) > 0 {
		r.index = index % len(keys)
		if r.index < 0 {
			r.index = 0
		}
	}
	return r
}

// Next returns the current key and advances the index.
func (r *KeyRotator) Next() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.keys) == 0 {
		return "", false
	}
	key := r.keys[r.index]
	r.index = (r.index + 1) % len(r.keys)

	if data, err := json.Marshal(r.index); err == nil {
		if err := r.store.Set(KeyRotationKey, data); err != nil {
			log.Warnf("Failed to persist key rotation index: %v", err)
		}
	}
	return key, true
}

// Index returns the current rotation position.
func (r *KeyRotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}
