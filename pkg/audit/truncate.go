package audit

import (
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended to content cut off by a size limit so
// readers can tell the stored text is incomplete.
const TruncationMarker = "... [truncated]"

// Truncate bounds content to max characters. Content at or under the bound
// is returned unchanged with a false flag. Over the bound, the first max
// characters are returned with the truncation marker appended and a true
// flag. Output of a previous pass with the same bound is recognized and
// returned as is, so applying the policy twice with one configured maximum
// yields the same result as applying it once.
func Truncate(content string, max int) (string, bool) {
	if max < 0 {
		max = 0
	}
	if utf8.RuneCountInString(content) <= max {
		return content, false
	}

	markerLen := utf8.RuneCountInString(TruncationMarker)
	if strings.HasSuffix(content, TruncationMarker) &&
		utf8.RuneCountInString(content) == max+markerLen {
		return content, true
	}

	runes := []rune(content)
	return string(runes[:max]) + TruncationMarker, true
}
