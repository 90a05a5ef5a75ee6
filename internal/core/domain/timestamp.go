package domain

import (
	"fmt"
	"time"
)

const (
	timestampLayout      = "2006-01-02T15:04:05Z"
	naiveTimestampLayout = "2006-01-02T15:04:05"
)

// FormatTimestamp renders t as UTC with a trailing Z. Every collection is
// written with this single convention.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp accepts RFC 3339 (with Z or an offset) and the naive form
// older deployments wrote without a zone; naive values are read as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse(naiveTimestampLayout, s); err == nil {
		return t.UTC(), nil
	}

	if t, err := time.Parse("2006-01-02T15:04:05.999999", s); err == nil {
		return t.UTC(), nil
	}

	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrMalformedDocument, s)
}

type PlaybackState string

const (
	PlaybackScheduled PlaybackState = "scheduled"
	PlaybackPlaying   PlaybackState = "playing"
	PlaybackFinished  PlaybackState = "finished"
)

// Playback reports where now falls relative to [start, end).
func Playback(now, start, end time.Time) PlaybackState {
	switch {
	case now.Before(start):
		return PlaybackScheduled
	case now.Before(end):
		return PlaybackPlaying
	default:
		return PlaybackFinished
	}
}
