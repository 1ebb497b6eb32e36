package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, ClampLimit(20, MaxPageLimit))
	assert.Equal(t, 1, ClampLimit(0, MaxPageLimit))
	assert.Equal(t, 1, ClampLimit(-5, MaxPageLimit))
	assert.Equal(t, MaxPageLimit, ClampLimit(101, MaxPageLimit))
	assert.Equal(t, MaxPageLimit, ClampLimit(99999, MaxPageLimit))
	assert.Equal(t, MaxTrendLimit, ClampLimit(5000, MaxTrendLimit))
}

func TestClampPage(t *testing.T) {
	assert.Equal(t, 1, ClampPage(0))
	assert.Equal(t, 1, ClampPage(-3))
	assert.Equal(t, 7, ClampPage(7))
}

func TestPages(t *testing.T) {
	tests := []struct {
		total, limit, expected int
	}{
		{45, 20, 3},
		{40, 20, 2},
		{41, 20, 3},
		{0, 20, 0},
		{1, 100, 1},
		{100, 100, 1},
		{101, 100, 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Pages(tt.total, tt.limit),
			"total=%d limit=%d", tt.total, tt.limit)
	}
}
