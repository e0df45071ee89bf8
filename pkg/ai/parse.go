package ai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the first well-formed JSON object or array out of
// arbitrary model output. Models wrap JSON in prose, markdown code fences
// or trailing commentary; none of that should reach callers. Returns false
// when no parsable JSON is present.
func ExtractJSON(s string) (interface{}, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}

	// Exact parse first
	var v interface{}
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v, true
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return nil, false
	}

	end := balancedEnd(s, start)
	if end < 0 {
		return nil, false
	}

	if err := json.Unmarshal([]byte(s[start:end+1]), &v); err != nil {
		return nil, false
	}
	return v, true
}

// ExtractJSONObject is ExtractJSON narrowed to objects.
func ExtractJSONObject(s string) (map[string]interface{}, bool) {
	v, ok := ExtractJSON(s)
	if !ok {
		return nil, false
	}
	obj, ok := v.(map[string]interface{})
	return obj, ok
}

// ExtractJSONArray is ExtractJSON narrowed to arrays.
func ExtractJSONArray(s string) ([]interface{}, bool) {
	v, ok := ExtractJSON(s)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]interface{})
	return arr, ok
}

// balancedEnd walks from the opening bracket at start to its matching
// close, skipping brackets inside JSON strings. Returns -1 when the text
// ends before the structure closes.
func balancedEnd(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
