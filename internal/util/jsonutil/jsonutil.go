package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ErrNoObject is returned when a text contains no balanced JSON object.
var ErrNoObject = errors.New("jsonutil: no JSON object found")

var reFence = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```")

// MarshalNoEscapeIndent encodes v with two-space indentation without
// escaping <, > and & into < etc.
func MarshalNoEscapeIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ExtractObject returns the first balanced JSON object in text. A fenced
// ```json block wins over bare braces.
func ExtractObject(text string) (json.RawMessage, error) {
	if m := reFence.FindStringSubmatch(text); len(m) > 1 {
		inner := strings.TrimSpace(m[1])
		if strings.HasPrefix(inner, "{") {
			text = inner
		}
	}
	start := strings.IndexByte(text, '{')
	if start == -1 {
		return nil, ErrNoObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return json.RawMessage(text[start : i+1]), nil
			}
		}
	}
	return nil, ErrNoObject
}

// UnmarshalFlex unmarshals raw into v, retrying once after unwrapping a
// payload the model returned as a quoted JSON string.
func UnmarshalFlex(raw []byte, v any) error {
	err := json.Unmarshal(raw, v)
	if err == nil {
		return nil
	}
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return err
	}
	return json.Unmarshal([]byte(s), v)
}
