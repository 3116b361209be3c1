package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateName fuzzes TruncateName with random names and widths.
func FuzzTruncateName(f *testing.F) {
	seeds := []struct {
		name  string
		width int
	}{
		{"Tom Brady", 5},
		{"Ben Roethlisberger", 10},
		{"", 0},
		{"Jalen Hurts", -1},
	}
	for _, seed := range seeds {
		f.Add(seed.name, seed.width)
	}

	f.Fuzz(func(t *testing.T, name string, width int) {
		got := TruncateName(name, width)
		if width > 3 && utf8.ValidString(name) && utf8.RuneCountInString(got) > width {
			t.Errorf("TruncateName(%q, %d) = %q is wider than %d", name, width, got, width)
		}
	})
}
