package strings

import (
	"strings"
)

// DefaultDescriptionMaxLen is the maximum length used when truncating
// descriptions in tool responses.
const DefaultDescriptionMaxLen = 60

// MinTruncateLen is the smallest useful maxLen for TruncateDescription.
// Anything shorter leaves no room for content plus "...".
const MinTruncateLen = 4

// TruncateDescription flattens s to a single line and truncates it to maxLen
// runes, appending "..." when content was cut. Command Center descriptions
// can be multi-line and arbitrarily long; agents only need enough of them to
// tell entries apart.
func TruncateDescription(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	// Collapse all whitespace runs, including newlines, to single spaces.
	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
