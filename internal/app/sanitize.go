/**
 * @description
 * This file holds the small text and payload sanitizers the orchestration
 * layer applies around LLM calls: stripping markdown code fences from provider
 * output before JSON parsing, and recursively removing null values from a
 * stored memory document before it is embedded in the suggestions prompt.
 */

package app

import "strings"

// stripJSONFence removes an optional markdown code fence (```json ... ``` or
// ``` ... ```) wrapping a provider's JSON payload.
func stripJSONFence(text string) string {
	clean := strings.TrimSpace(text)
	if strings.HasPrefix(clean, "```json") {
		clean = clean[len("```json"):]
	} else if strings.HasPrefix(clean, "```") {
		clean = clean[len("```"):]
	}
	if strings.HasSuffix(clean, "```") {
		clean = clean[:len(clean)-len("```")]
	}
	return strings.TrimSpace(clean)
}

// removeNulls recursively removes nil values from mappings and sequences,
// dropping nested mappings/sequences that become empty. Meaningful falsy
// values (0, false, "") are preserved.
func removeNulls(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			cleaned := removeNulls(item)
			if isEmptyContainer(cleaned) {
				continue
			}
			out[k] = cleaned
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			cleaned := removeNulls(item)
			if isEmptyContainer(cleaned) {
				continue
			}
			out = append(out, cleaned)
		}
		return out
	default:
		return v
	}
}

func isEmptyContainer(v any) bool {
	switch val := v.(type) {
	case map[string]any:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
