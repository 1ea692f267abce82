package domain

import (
	"strings"
)

// NormalizeWord prepares a vocabulary key for storage and comparison:
//   - trims leading/trailing whitespace
//   - converts to lowercase
//   - compresses runs of whitespace into one space
//
// Hyphens and apostrophes are preserved.
func NormalizeWord(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
