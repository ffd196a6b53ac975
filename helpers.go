// Copyright (c) 2024 Neomantra Corp

package mbin

import (
	"bytes"
	"time"
)

// / The denominator of fixed prices in MBIN.
const FIXED_PRICE_SCALE float64 = 1000000000.0

func Fixed9ToFloat64(fixed int64) float64 {
	return float64(fixed) / FIXED_PRICE_SCALE
}

// TrimNullBytes removes trailing nulls from a byte slice and returns a string.
func TrimNullBytes(b []byte) string {
	return string(bytes.TrimRight(b, "\x00"))
}

// TimestampToSecNanos converts a unix-nanos timestamp to seconds and nanoseconds.
func TimestampToSecNanos(ts uint64) (int64, int64) {
	secs := int64(ts / 1e9)
	nano := int64(ts) - int64(secs*1e9)
	return secs, nano
}

// TimestampToTime converts a unix-nanos timestamp to time.Time.
func TimestampToTime(ts uint64) time.Time {
	secs, nano := TimestampToSecNanos(ts)
	return time.Unix(secs, nano)
}
