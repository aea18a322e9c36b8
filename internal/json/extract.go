// Package json extracts JSON embedded in agent tool results.
//
// The backend's agents return tool results as free text that often carries a
// JSON payload wrapped in commentary or markdown code fences. This package
// pulls that payload out so it can be rendered readably.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Extract returns the JSON object embedded in s, if any. It handles:
// 1. A pure JSON response
// 2. JSON wrapped in markdown code blocks (```json ... ```)
// 3. A JSON object embedded in surrounding text
//
// Limitations:
// - Only handles JSON objects, not arrays
// - Uses simple brace matching, not full JSON parsing
func Extract(s string) (string, bool) {
	s = stripMarkdownCodeBlocks(s)

	var test interface{}
	if err := json.Unmarshal([]byte(s), &test); err == nil {
		return s, true
	}

	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	end := strings.LastIndex(s, "}")
	if end <= start {
		return "", false
	}

	candidate := s[start : end+1]
	if err := json.Unmarshal([]byte(candidate), &test); err != nil {
		return "", false
	}
	return candidate, true
}

// Pretty re-indents the JSON embedded in s for display. When s carries no
// parseable JSON it is returned unchanged.
func Pretty(s string) string {
	raw, ok := Extract(s)
	if !ok {
		return s
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(raw), "", "  "); err != nil {
		return s
	}
	return buf.String()
}

// Decode extracts the JSON embedded in s and unmarshals it into result.
func Decode(s string, result interface{}) error {
	raw, ok := Extract(s)
	if !ok {
		preview := s
		if len(preview) > 100 {
			preview = preview[:100] + "..."
		}
		return fmt.Errorf("no JSON object found in %q", preview)
	}
	if err := json.Unmarshal([]byte(raw), result); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return nil
}

// stripMarkdownCodeBlocks removes markdown code block markers.
// Handles patterns like ```json\n...\n``` or ```\n...\n```
func stripMarkdownCodeBlocks(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```json"))
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, "```"))
	}

	return trimmed
}
