package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorsEquivalent(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"siyah", "siyah", true},
		{"Siyah", "SIYAH", true},
		{"blck", "black", true},
		{"black", "blck", true},
		{"syh", "siyah", true},
		{"lacivert", "laci", true},
		{"navy", "nav", true},
		{"beyaz", "beyz", true},
		{"blue", "black", false},
		{"siyah", "beyaz", false},
		{"red", "green", false},
		{"", "black", false},
		{"black", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ColorsEquivalent(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestColorsEquivalentIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"blck", "black"},
		{"syh", "siyah"},
		{"blue", "black"},
		{"lacivert", "laci"},
	}
	for _, p := range pairs {
		assert.Equal(t, ColorsEquivalent(p[0], p[1]), ColorsEquivalent(p[1], p[0]),
			"%q vs %q", p[0], p[1])
	}
}
