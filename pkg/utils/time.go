package utils

import (
	"time"
)

// GetCurrentUnixTimestamp returns the current Unix timestamp in seconds
func GetCurrentUnixTimestamp() int64 {
	return time.Now().Unix()
}

// UnixToTime converts a Unix timestamp (seconds) to UTC time.Time
func UnixToTime(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).UTC()
}

// FormatTimestamp formats a Unix timestamp as RFC3339 string
func FormatTimestamp(timestamp int64) string {
	return UnixToTime(timestamp).Format(time.RFC3339)
}
