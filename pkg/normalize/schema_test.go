package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONListSpacing(t *testing.T) {
	assert.Equal(t, "", jsonList(nil))
	assert.Equal(t, `["a"]`, jsonList([]string{"a"}))
	assert.Equal(t, `["a", "b", ""]`, jsonList([]string{"a", "b", ""}))
}

func TestJSONListDecodesBack(t *testing.T) {
	items := []string{"line\nbreak", "tab\there", "quote \"inside\"", "naïve & <b>"}
	cell := jsonList(items)

	var decoded []string
	require.NoError(t, json.Unmarshal([]byte(cell), &decoded))
	assert.Equal(t, items, decoded)

	// No HTML escaping of & < >
	assert.Contains(t, cell, "naïve & <b>")
}

func TestJSONListControlCharacters(t *testing.T) {
	// Control characters must come out as JSON escapes, never Go ones
	cell := jsonList([]string{"bell\x07"})
	assert.Equal(t, "[\"bell\\u0007\"]", cell)

	var decoded []string
	require.NoError(t, json.Unmarshal([]byte(cell), &decoded))
	assert.Equal(t, []string{"bell\x07"}, decoded)
}
