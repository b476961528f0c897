package bookstore

import "strings"

// Normalize prepares a field for identity comparison: trims surrounding
// whitespace, collapses internal whitespace runs to a single space, and
// lowercases the result.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
