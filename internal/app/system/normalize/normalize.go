// Package normalize centralizes field normalization so stores and
// handlers agree on canonical forms.
package normalize

import "strings"

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and collapses internal whitespace runs.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status trims and lowercases an account status.
func Status(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Tag trims one free-text tag.
func Tag(s string) string {
	return strings.TrimSpace(s)
}
