package tokens

import (
	"errors"
	"testing"

	"github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"12345678", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Estimate(tt.text), tt.text)
	}
}

func TestEstimator(t *testing.T) {
	c := NewEstimator()

	assert.False(t, c.Exact())
	assert.Equal(t, 0, c.Count(""))
	assert.Equal(t, 3, c.Count("hello world"))

	stats := c.Stats("abcd", "abcdefghijkl")
	assert.Equal(t, Stats{Original: 1, Optimized: 3, Delta: 2, Exact: false}, stats)
}

func TestCounter_FallsBackWhenEncodingFails(t *testing.T) {
	calls := 0
	c := &Counter{load: func() (*tiktoken.Tiktoken, error) {
		calls++
		return nil, errors.New("offline")
	}}

	assert.Equal(t, Estimate("some prompt text"), c.Count("some prompt text"))
	assert.Equal(t, Estimate("again"), c.Count("again"))
	assert.False(t, c.Exact())
	assert.Equal(t, 1, calls)
}
