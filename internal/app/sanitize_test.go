package app

import (
	"reflect"
	"testing"
)

func TestStripJSONFence(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json fence",
			input:    "```json\n{\"a\": 1}\n```",
			expected: "{\"a\": 1}",
		},
		{
			name:     "bare fence",
			input:    "```\n{\"a\": 1}\n```",
			expected: "{\"a\": 1}",
		},
		{
			name:     "no fence",
			input:    "{\"a\": 1}",
			expected: "{\"a\": 1}",
		},
		{
			name:     "surrounding whitespace",
			input:    "  ```json\n{\"a\": 1}\n```  ",
			expected: "{\"a\": 1}",
		},
		{
			name:     "plain text untouched",
			input:    "not json at all",
			expected: "not json at all",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := stripJSONFence(tc.input); got != tc.expected {
				t.Fatalf("stripJSONFence(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestRemoveNulls(t *testing.T) {
	input := map[string]any{
		"a": nil,
		"b": map[string]any{"c": nil},
		"d": []any{1, nil, 2},
		"e": "",
		"f": 0,
		"g": false,
	}

	got, ok := removeNulls(input).(map[string]any)
	if !ok {
		t.Fatal("expected a map back")
	}

	expected := map[string]any{
		"d": []any{1, 2},
		"e": "",
		"f": 0,
		"g": false,
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("removeNulls mismatch:\n got %#v\nwant %#v", got, expected)
	}
}

func TestRemoveNulls_DropsEmptiedContainers(t *testing.T) {
	input := map[string]any{
		"outer": map[string]any{
			"inner": []any{nil},
		},
	}

	got := removeNulls(input).(map[string]any)
	if len(got) != 0 {
		t.Fatalf("expected containers emptied by null removal to be dropped, got %#v", got)
	}
}
