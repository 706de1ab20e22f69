package utils

import "time"

// Now returns the current time in UTC timezone
func Now() time.Time {
	return time.Now().UTC()
}

// NowMillis returns the current wall-clock time as milliseconds since epoch.
// Message dates are stored in this unit.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts a milliseconds-since-epoch timestamp to a UTC time.Time
func MillisToTime(timestamp int64) time.Time {
	if timestamp <= 0 {
		return time.Time{}
	}
	seconds := timestamp / 1000
	nanos := (timestamp % 1000) * 1000000
	return time.Unix(seconds, nanos).UTC()
}

// FormatISO8601 formats a time.Time to ISO8601 format in UTC
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
