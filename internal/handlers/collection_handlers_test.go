package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompletionPct(t *testing.T) {
	cases := []struct {
		name  string
		owned int
		total int
		want  float64
	}{
		{"empty set", 0, 0, 0},
		{"nothing owned", 0, 60, 0},
		{"one third rounds down", 1, 3, 33.3},
		{"two thirds rounds up", 2, 3, 66.7},
		{"complete", 60, 60, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, completionPct(tc.owned, tc.total))
		})
	}
}
