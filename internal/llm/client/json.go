package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedOutput means the generator reply had no usable JSON object.
var ErrMalformedOutput = errors.New("malformed generator output")

// ExtractJSONObject returns the first balanced top-level JSON object in text.
// Braces inside string literals are ignored.
func ExtractJSONObject(text string) (string, error) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
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
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start < 0 {
				continue
			}
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	if start < 0 {
		return "", fmt.Errorf("%w: no json object found", ErrMalformedOutput)
	}
	return "", fmt.Errorf("%w: unterminated json object", ErrMalformedOutput)
}

// DecodeJSON extracts the first object from text and unmarshals it into T.
func DecodeJSON[T any](text string) (T, error) {
	var out T
	raw, err := ExtractJSONObject(text)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	return out, nil
}
