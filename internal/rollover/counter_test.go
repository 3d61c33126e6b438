package rollover_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gtaskroll/internal/rollover"
)

func TestParseRolloverCount(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  int
		found bool
	}{
		{"empty", "", 0, false},
		{"prose only", "call the plumber\nask about Tuesday", 0, false},
		{"alone", "Rollover Count: 3", 3, true},
		{"embedded", "first line\n\nRollover Count: 12\n\nlast line", 12, true},
		{"first wins", "Rollover Count: 2 Rollover Count: 9", 2, true},
		{"wrong case", "rollover count: 4", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := rollover.ParseRolloverCount(tt.notes)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBumpRolloverCount_Insert(t *testing.T) {
	assert.Equal(t, "Rollover Count: 1", rollover.BumpRolloverCount(""))
	assert.Equal(t, "buy oat milk\n\nRollover Count: 1", rollover.BumpRolloverCount("buy oat milk"))
}

func TestBumpRolloverCount_InPlace(t *testing.T) {
	notes := "before\nRollover Count: 9\nafter"
	assert.Equal(t, "before\nRollover Count: 10\nafter", rollover.BumpRolloverCount(notes))
}

func TestBumpRolloverCount_RepeatedKeepsSingleFragment(t *testing.T) {
	prefixes := []string{"", "some notes", "multi\n\nparagraph\n---\nRollover notes: none"}
	for _, p := range prefixes {
		notes := p
		for i := 0; i < 7; i++ {
			notes = rollover.BumpRolloverCount(notes)
		}
		assert.Equal(t, 1, strings.Count(notes, "Rollover Count:"), "notes: %q", notes)
		n, ok := rollover.ParseRolloverCount(notes)
		assert.True(t, ok)
		assert.Equal(t, 7, n)
		assert.True(t, strings.HasPrefix(notes, p), "original text must be preserved")
	}
}

func TestBumpRolloverCount_TextAfterFragmentPreserved(t *testing.T) {
	notes := "Rollover Count: 1\n\n---\nOriginal Email: https://mail.example.com/m/1"
	for i := 0; i < 3; i++ {
		notes = rollover.BumpRolloverCount(notes)
	}
	assert.Equal(t, "Rollover Count: 4\n\n---\nOriginal Email: https://mail.example.com/m/1", notes)
}
