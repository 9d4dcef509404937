// Package json provides lenient JSON extraction for model output.
//
// Models sometimes return JSON wrapped in markdown fences or surrounded by
// commentary; tool-call argument payloads in particular arrive as raw
// strings that are not always clean JSON. This package extracts and decodes
// the JSON object portion of such strings.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON finds and returns the JSON object portion of a string.
// It handles common model output patterns:
// 1. Pure JSON - returns the full string
// 2. JSON wrapped in markdown code blocks (```json ... ```)
// 3. JSON object embedded in text - finds first '{' and last '}'
//
// Limitations:
// - Only handles JSON objects, not arrays
// - Uses simple brace matching, not full JSON parsing
func extractJSON(s string) (string, error) {
	s = stripMarkdownCodeBlocks(s)

	var test any
	if err := json.Unmarshal([]byte(s), &test); err == nil {
		return s, nil
	}

	start := strings.Index(s, "{")
	if start != -1 {
		end := strings.LastIndex(s, "}")
		if end != -1 && end > start {
			jsonStr := s[start : end+1]
			var test any
			if err := json.Unmarshal([]byte(jsonStr), &test); err == nil {
				return jsonStr, nil
			}
		}
	}

	preview := s
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("failed to extract valid JSON: %q", preview)
}

// stripMarkdownCodeBlocks removes markdown code fence markers.
// Handles patterns like ```json\n...\n``` or ```\n...\n```
func stripMarkdownCodeBlocks(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}

// DecodeArguments decodes a tool-call argument payload into a name→value
// map. An empty payload decodes to an empty map (a call with no arguments).
// The returned error is suitable for use as a tool-call parse error.
func DecodeArguments(payload string) (map[string]any, error) {
	if strings.TrimSpace(payload) == "" {
		return map[string]any{}, nil
	}

	jsonStr, err := extractJSON(payload)
	if err != nil {
		return nil, err
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &args); err != nil {
		return nil, fmt.Errorf("failed to unmarshal arguments: %w", err)
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// ExtractJSON extracts the JSON object portion from a string.
func ExtractJSON(s string) (string, error) {
	return extractJSON(s)
}
