package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidInput(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"Erik", true},
		{"Jörg Müller-Lüdenscheidt", true},
		{"Weißwurst", true},
		{"Brötchen 12", true},
		{"", false},
		{"   ", false},
		{"<script>", false},
		{"Robert'); DROP TABLE", false},
		{"a@b.de", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidInput(tt.input))
		})
	}
}
