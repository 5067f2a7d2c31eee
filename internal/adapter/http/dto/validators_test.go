package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidIdempotencyKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{"simple", "K1", true},
		{"uuid style", "a9f3c1d2-5e6f-4a7b-8c9d-0e1f2a3b4c5d", true},
		{"derived reversal key", "reversal-a9f3c1d2-5e6f-4a7b-8c9d-0e1f2a3b4c5d", true},
		{"namespaced", "pos-7:shift.3:receipt_42", true},
		{"empty", "", false},
		{"whitespace", "key with spaces", false},
		{"injection chars", "key;DROP TABLE", false},
		{"too long", strings.Repeat("a", 256), false},
		{"max length", strings.Repeat("a", 255), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidIdempotencyKey(tt.key))
		})
	}
}
