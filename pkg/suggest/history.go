package suggest

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/uninav/navcore/pkg/localstore"
)

const (
	// DefaultMaxHistory caps the most-recent-first history list.
	DefaultMaxHistory = 50
	// minSaveLength drops throwaway inputs before they pollute history.
	minSaveLength = 2
)

// HistoryStore keeps recent search strings, most recent first, persisted
// through the local store. Persistence is best effort: history is a
// convenience, so a failed write only logs and the in-memory list stays
// usable for the session.
type HistoryStore struct {
	mu      sync.Mutex
	store   localstore.Store
	entries []string
	max     int
}

// NewHistoryStore loads persisted history. Malformed stored JSON resets to
// an empty list rather than failing.
func NewHistoryStore(store localstore.Store, max int) *HistoryStore {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	h := &HistoryStore{store: store, max: max}

	raw, err := store.Get(localstore.HistoryKey)
	if err != nil {
		log.Warnf("Failed to read search history: %v", err)
		return h
	}
	if raw == nil {
		return h
	}
	if err := json.Unmarshal(raw, &h.entries); err != nil {
		log.Warnf("Malformed search history, starting empty: %v", err)
		h.entries = nil
		return h
	}
	if len(h.entries) > h.max {
		h.entries = h.entries[:h.max]
	}
	return h
}

// Save records a submitted search. The text is trimmed; anything under two
// characters is ignored. A case-insensitive duplicate moves to the front
// with the new casing instead of creating a second entry.
func (h *HistoryStore) Save(text string) {
	text = strings.TrimSpace(text)
	if len(text) < minSaveLength {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	lower := strings.ToLower(text)
	kept := make([]string, 0, len(h.entries)+1)
	kept = append(kept, text)
	for _, e := range h.entries {
		if strings.ToLower(e) == lower {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > h.max {
		kept = kept[:h.max]
	}
	h.entries = kept

	h.persistLocked()
}

// Entries returns a copy of the list, most recent first.
func (h *HistoryStore) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// MatchPrefix returns up to limit entries starting with the query,
// case-insensitively, in recency order.
func (h *HistoryStore) MatchPrefix(query string, limit int) []string {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" || limit <= 0 {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var out []string
	for _, e := range h.entries {
		if !strings.HasPrefix(strings.ToLower(e), lower) {
			continue
		}
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out
}

// Len returns the number of stored entries.
func (h *HistoryStore) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Clear empties the list and removes the persisted copy.
func (h *HistoryStore) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	if err := h.store.Delete(localstore.HistoryKey); err != nil {
		log.Warnf("Failed to clear persisted history: %v", err)
	}
}

// persistLocked writes the list through the local store. Caller holds h.mu.
func (h *HistoryStore) persistLocked() {
	data, err := json.Marshal(h.entries)
	if err != nil {
		log.Errorf("Failed to encode search history: %v", err)
		return
	}
	if err := h.store.Set(localstore.HistoryKey, data); err != nil {
		log.Warnf("Failed to persist search history: %v", err)
	}
}
