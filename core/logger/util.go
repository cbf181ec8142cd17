package logger

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// RoundMS truncates a duration to whole milliseconds for stable log output.
func RoundMS(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// BuildRID composes a request id from update, chat and user identifiers.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// SanitizeLimit strips control characters and truncates the value to limit runes.
func SanitizeLimit(s string, limit int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' {
			return ' '
		}
		return r
	}, s)
	s = strings.ReplaceAll(s, "\n", "\\n")
	runes := []rune(s)
	if limit > 0 && len(runes) > limit {
		return string(runes[:limit]) + "…"
	}
	return s
}

// SummarizeStrings joins up to max values and reports whether the list was truncated.
func SummarizeStrings(values []string, max int) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	if max <= 0 || len(values) <= max {
		return strings.Join(values, ","), false
	}
	return strings.Join(values[:max], ","), true
}
