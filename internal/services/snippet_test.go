package services

import (
	"strings"
	"testing"
)

func TestSnippet(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "<empty>"},
		{"whitespace", " \n\t", "<empty>"},
		{"collapses whitespace", "{\n  \"error\":  \"bad\"\n}", `{ "error": "bad" }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Snippet([]byte(tt.body)); got != tt.want {
				t.Fatalf("Snippet() = %q, want %q", got, tt.want)
			}
		})
	}

	long := strings.Repeat("é", 200)
	got := Snippet([]byte(long))
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != 163 {
		t.Fatalf("expected 160 runes plus ellipsis, got %d runes", len([]rune(got)))
	}
}
