package sigv4

import (
	"regexp"
	"time"

	"github.com/ethanadams/sigv4/internal/sigerr"
)

const (
	dateFormat      = "20060102"
	timestampFormat = "20060102T150405Z"
)

var timestampPattern = regexp.MustCompile(`^\d{8}T\d{6}Z$`)

// FormatDate returns the 8-character UTC date stamp (YYYYMMDD) for t.
func FormatDate(t time.Time) string {
	return t.UTC().Format(dateFormat)
}

// FormatTimestamp returns the 16-character basic-ISO8601 UTC timestamp
// (YYYYMMDDTHHMMSSZ) for t.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

// Now returns FormatTimestamp of the current UTC instant.
func Now() string {
	return FormatTimestamp(time.Now())
}

// ValidateTimestamp checks that ts matches the 16-character signing
// timestamp shape required by spec.
func ValidateTimestamp(ts string) error {
	if !timestampPattern.MatchString(ts) {
		return sigerr.New(sigerr.InvalidFormat, "timestamp %q does not match YYYYMMDDTHHMMSSZ", ts)
	}
	return nil
}

// DateStamp returns the first 8 characters of a timestamp or date stamp.
// Both FormatDate and FormatTimestamp outputs satisfy len >= 8, so a full
// timestamp works as a drop-in for Derive's dateStamp argument.
func DateStamp(tsOrDate string) string {
	if len(tsOrDate) < 8 {
		return tsOrDate
	}
	return tsOrDate[:8]
}
