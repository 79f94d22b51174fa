package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_JSONFence(t *testing.T) {
	text := "Sure, here you go:\n```json\n{\"a\": 1}\n```\nLet me know if you need more."

	got, err := ExtractJSON(text)

	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestExtractJSON_PlainFence(t *testing.T) {
	text := "```\n{\"a\": 1}\n```"

	got, err := ExtractJSON(text)

	require.NoError(t, err)
	assert.Equal(t, `{"a": 1}`, got)
}

func TestExtractJSON_BraceSubstring(t *testing.T) {
	text := `The classification is {"priority": "high"} based on the content.`

	got, err := ExtractJSON(text)

	require.NoError(t, err)
	assert.Equal(t, `{"priority": "high"}`, got)
}

func TestExtractJSON_PrefersJSONFence(t *testing.T) {
	text := "{\"outside\": true}\n```json\n{\"inside\": true}\n```"

	got, err := ExtractJSON(text)

	require.NoError(t, err)
	assert.Equal(t, `{"inside": true}`, got)
}

func TestExtractJSON_MultilineObject(t *testing.T) {
	text := "```json\n{\n  \"a\": 1,\n  \"b\": [2, 3]\n}\n```"

	got, err := ExtractJSON(text)

	require.NoError(t, err)
	assert.Contains(t, got, `"b": [2, 3]`)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON("there is no object here")

	assert.ErrorIs(t, err, ErrNoJSON)
}
