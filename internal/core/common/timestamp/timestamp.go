package timestamp

import (
	"errors"
	"regexp"
	"time"
)

// Layout is the canonical UTC form used for every stored and returned timestamp.
const Layout = "2006-01-02T15:04:05.000Z"

var (
	ErrNotString       = errors.New("timestamp must be a string")
	ErrMissingTimezone = errors.New("timestamp must include timezone")
	ErrInvalid         = errors.New("invalid timestamp")
)

var zonePattern = regexp.MustCompile(`(Z|[+-]\d{2}:\d{2})$`)

func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

func Now() string {
	return Format(time.Now())
}

// Parse accepts RFC 3339 input that carries an explicit "Z" or "±hh:mm" suffix.
// Sub-millisecond digits are dropped so comparisons match the stored values.
func Parse(value string) (time.Time, error) {
	if !zonePattern.MatchString(value) {
		return time.Time{}, ErrMissingTimezone
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, ErrInvalid
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

// Millis is the epoch-millisecond mirror stored in *_ts columns.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}

func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
