package external

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelsURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:1234/v1", "http://localhost:1234/v1/models"},
		{"http://localhost:1234/v1/", "http://localhost:1234/v1/models"},
		{"http://localhost:1234", "http://localhost:1234/v1/models"},
		{"https://api.example.com/openai/v1", "https://api.example.com/openai/v1/models"},
		{"https://v1.example.com", "https://v1.example.com/v1/models"},
		{"https://v1.example.com/v1", "https://v1.example.com/v1/models"},
		{"https://example.com/v10", "https://example.com/v10/v1/models"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, modelsURL(tt.base))
		})
	}
}
