package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	t.Run("bare object", func(t *testing.T) {
		obj, ok := ExtractJSONObject(`{"urgency": 0.9}`)
		require.True(t, ok)
		assert.Equal(t, 0.9, obj["urgency"])
	})

	t.Run("fenced code block", func(t *testing.T) {
		obj, ok := ExtractJSONObject("```json\n{\"urgency\": 0.5}\n```")
		require.True(t, ok)
		assert.Equal(t, 0.5, obj["urgency"])
	})

	t.Run("object buried in prose", func(t *testing.T) {
		obj, ok := ExtractJSONObject(`Sure! Based on the task, I'd say {"urgency": 0.2, "note": "low {urgency}"} overall.`)
		require.True(t, ok)
		assert.Equal(t, 0.2, obj["urgency"])
		assert.Equal(t, "low {urgency}", obj["note"])
	})

	t.Run("nested structures", func(t *testing.T) {
		obj, ok := ExtractJSONObject(`{"outer": {"inner": [1, 2, 3]}}`)
		require.True(t, ok)
		assert.Contains(t, obj, "outer")
	})

	t.Run("escaped quotes inside strings", func(t *testing.T) {
		obj, ok := ExtractJSONObject(`{"title": "Fix the \"big\" bug}"}`)
		require.True(t, ok)
		assert.Equal(t, `Fix the "big" bug}`, obj["title"])
	})

	t.Run("plain prose", func(t *testing.T) {
		_, ok := ExtractJSONObject("I cannot help with that.")
		assert.False(t, ok)
	})

	t.Run("unterminated object", func(t *testing.T) {
		_, ok := ExtractJSONObject(`{"urgency": 0.9`)
		assert.False(t, ok)
	})

	t.Run("empty input", func(t *testing.T) {
		_, ok := ExtractJSONObject("")
		assert.False(t, ok)
	})

	t.Run("array is not an object", func(t *testing.T) {
		_, ok := ExtractJSONObject(`[1, 2]`)
		assert.False(t, ok)
	})
}

func TestExtractJSONArray(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		arr, ok := ExtractJSONArray(`[{"title": "a"}, {"title": "b"}]`)
		require.True(t, ok)
		assert.Len(t, arr, 2)
	})

	t.Run("array after prose", func(t *testing.T) {
		arr, ok := ExtractJSONArray("Here are your tasks:\n[{\"title\": \"a\"}]\nEnjoy!")
		require.True(t, ok)
		assert.Len(t, arr, 1)
	})

	t.Run("object is not an array", func(t *testing.T) {
		_, ok := ExtractJSONArray(`{"title": "a"}`)
		assert.False(t, ok)
	})
}
