package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsWholeCents(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"100", true},
		{"100.1", true},
		{"100.01", true},
		{"100.500", true},
		{"100.005", false},
		{"0.001", false},
		{"-3.333", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWholeCents(decimal.RequireFromString(tt.in)))
		})
	}
}
