package strings

import (
	"testing"
)

func TestTruncateDescription(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{
			name:     "short string unchanged",
			input:    "Daily backup plan",
			maxLen:   30,
			expected: "Daily backup plan",
		},
		{
			name:     "long string truncated",
			input:    "hello world this is a long string",
			maxLen:   15,
			expected: "hello world ...",
		},
		{
			name:     "newlines collapsed to spaces",
			input:    "VSA client\nfor the lab\n\nvCenter",
			maxLen:   40,
			expected: "VSA client for the lab vCenter",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  built-in admin group\t",
			maxLen:   40,
			expected: "built-in admin group",
		},
		{
			name:     "unicode truncation safe",
			input:    "日本語テスト文字列",
			maxLen:   6,
			expected: "日本語...",
		},
		{
			name:     "whitespace only becomes empty",
			input:    "   \n\t  ",
			maxLen:   10,
			expected: "",
		},
		{
			name:     "tiny maxLen clamped",
			input:    "hello",
			maxLen:   2,
			expected: "h...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateDescription(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("TruncateDescription(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}

func TestTruncateDescription_RuneLength(t *testing.T) {
	// Truncation must count runes, not bytes.
	input := "日本語テスト" // 6 characters, 18 bytes in UTF-8
	result := TruncateDescription(input, 5)

	expected := "日本..."
	if result != expected {
		t.Errorf("Expected %q but got %q", expected, result)
	}
}
