package services

import "strings"

const snippetLimit = 160

// Snippet collapses whitespace in an upstream response body and truncates
// it for inclusion in error messages.
func Snippet(body []byte) string {
	clean := strings.Join(strings.Fields(string(body)), " ")
	if clean == "" {
		return "<empty>"
	}
	if runes := []rune(clean); len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return clean
}
