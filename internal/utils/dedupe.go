package utils

import (
	"strings"
)

// SeenFilter tracks suggestion texts already emitted so later, lower-priority
// sources cannot re-introduce them. Matching is case-insensitive.
type SeenFilter struct {
	seen map[string]bool
}

// NewSeenFilter creates a filter that optionally pre-marks the user's own input
func NewSeenFilter(input string) *SeenFilter {
	seen := make(map[string]bool)
	if input != "" {
		seen[strings.ToLower(input)] = true
	}
	return &SeenFilter{seen: seen}
}

// ShouldInclude checks if a text should be included in results (not a duplicate)
// Returns true on first sighting, false afterwards
func (f *SeenFilter) ShouldInclude(text string) bool {
	lower := strings.ToLower(text)
	if f.seen[lower] {
		return false
	}
	f.seen[lower] = true
	return true
}
