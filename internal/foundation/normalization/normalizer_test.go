package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type color string

func TestNormalizer(t *testing.T) {
	n := New(map[string]color{"red": "red", "RED-ISH": "red", "blue": "blue"})

	tests := []struct {
		in   string
		want color
		ok   bool
	}{
		{"red", "red", true},
		{"  Red-ish ", "red", true},
		{"BLUE", "blue", true},
		{"green", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := n.Lookup(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, n.Normalize(tt.in), tt.in)
	}

	assert.Equal(t, []string{"blue", "red", "red-ish"}, n.Aliases())
}
