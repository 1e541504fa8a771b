package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateCountsCharacters(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "abc..."},
		{strings.Repeat("ß", 5), 5, strings.Repeat("ß", 5)},
		{"Anmeldung für Benutzer", 15, "Anmeldung für B..."},
		{strings.Repeat("日", 300), 200, strings.Repeat("日", 200) + "..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.max)
		if got != tt.want || !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
