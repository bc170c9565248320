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
		{"json fence", "```json\n{\"caption\": \"hi\"}\n```", `{"caption": "hi"}`},
		{"bare fence", "```\n{\"caption\": \"hi\"}\n```", `{"caption": "hi"}`},
		{"other language tag", "```javascript\n{\"caption\": \"hi\"}\n```", `{"caption": "hi"}`},
		{"plain", `{"industry": "Retail"}`, `{"industry": "Retail"}`},
		{"preamble", "Here is the brand profile:\n{\"posting_style\": \"casual\"}", `{"posting_style": "casual"}`},
		{"trailing chatter", "{\"hook\": \"Wake up\"}\n\nLet me know if you need changes!", `{"hook": "Wake up"}`},
		{"array with preamble", "Hashtags:\n[\"coffee\", \"roast\"]", `["coffee", "roast"]`},
		{"escaped quotes", `Result: {"caption": "She said \"wow\""}`, `{"caption": "She said \"wow\""}`},
		{"nested", `Output: {"lighting": {"shadows": {"type": "soft"}}}`, `{"lighting": {"shadows": {"type": "soft"}}}`},
		{"no json", "sorry, I cannot help", "sorry, I cannot help"},
		{"unbalanced", `{"caption": "cut off`, `{"caption": "cut off`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 1}}`, extractJSONObject(`{"a": {"b": 1}} tail`))
	assert.Equal(t, `{"tpl": "Hi {name}!"}`, extractJSONObject(`{"tpl": "Hi {name}!"}`))
	assert.Equal(t, "", extractJSONObject(""))
	assert.Equal(t, "", extractJSONObject("text"))
	assert.Equal(t, "", extractJSONObject(`{"open": true`))
}

func TestExtractJSONArray(t *testing.T) {
	assert.Equal(t, `[[1, 2], [3]]`, extractJSONArray(`[[1, 2], [3]] more`))
	assert.Equal(t, `[{"id": "]"}]`, extractJSONArray(`[{"id": "]"}]`))
	assert.Equal(t, "", extractJSONArray(""))
	assert.Equal(t, "", extractJSONArray("nope"))
}
