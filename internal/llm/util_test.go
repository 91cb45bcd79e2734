package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Plain JSON untouched", `{"a": 1}`, `{"a": 1}`},
		{"json fence stripped", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Generic fence stripped", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Fence with language id", "```javascript\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Surrounding whitespace trimmed", "  {\"a\": 1}  ", `{"a": 1}`},
		{"Empty string", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
