package utils

import (
	"time"
)

// GetCurrentTimeMillis returns current time in milliseconds since epoch
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixMilli()
}

// MillisToTime converts milliseconds since epoch to time.Time
func MillisToTime(millis int64) time.Time {
	return time.UnixMilli(millis)
}

// FormatMillis formats milliseconds since epoch in ISO 8601 format
func FormatMillis(millis int64) string {
	return MillisToTime(millis).UTC().Format(time.RFC3339)
}
