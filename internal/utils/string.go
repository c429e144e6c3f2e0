package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// HasPrefixFold checks if s starts with prefix case-insensitively
func HasPrefixFold(s, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
}

// ContainsFold checks if s contains substr case-insensitively
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// IsOnlyDigits reports whether s is non-empty and entirely numeric
func IsOnlyDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FormatConfidence renders a 0..1 confidence score for CLI output
func FormatConfidence(c float64) string {
	return strconv.FormatFloat(c, 'f', 2, 64)
}
