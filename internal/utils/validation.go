package utils

import (
	"regexp"
	"strings"
)

var inputPattern = regexp.MustCompile(`^[A-Za-z0-9äöüÄÖÜß\s\-]+$`)

// ValidInput reports whether text is a non-blank name or item: letters including German
// umlauts, digits, whitespace and dashes.
func ValidInput(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return inputPattern.MatchString(text)
}
