package metadata

import (
	"bytes"
	"os"
	"time"
	"unicode/utf8"
)

// Timestamp layouts: ISO-8601 with an explicit numeric offset ("+00:00" in
// UTC). The fraction is always six digits, and is left out when the time has
// no whole microseconds.
const (
	TimestampLayout       = "2006-01-02T15:04:05.000000-07:00"
	TimestampLayoutNoFrac = "2006-01-02T15:04:05-07:00"
)

// LastModified returns the file's modification time in UTC, formatted with
// FormatTimestamp, or "" if the file cannot be stat'd.
func LastModified(path string, diags *Diagnostics) string {
	info, err := os.Stat(path)
	if err != nil {
		diags.Add(path, "last_modified", err)
		return ""
	}
	return FormatTimestamp(info.ModTime())
}

// FormatTimestamp renders t in UTC, truncated to microseconds.
func FormatTimestamp(t time.Time) string {
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(TimestampLayoutNoFrac)
	}
	return t.Format(TimestampLayout)
}

// EstimateTokens approximates the token cost of a file as its
// whitespace-separated word count times 1.3, rounded half to even.
// Unreadable or binary files cost 0.
func EstimateTokens(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	return EstimateTokensText(data)
}

// EstimateTokensText is EstimateTokens over in-memory content.
func EstimateTokensText(data []byte) int {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return 0
	}
	return scaleWords(len(bytes.Fields(data)))
}

// scaleWords computes round-half-even(words * 13 / 10) in integers.
func scaleWords(words int) int {
	q, r := words*13/10, words*13%10
	if r > 5 || (r == 5 && q%2 == 1) {
		q++
	}
	return q
}
