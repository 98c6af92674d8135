package entity

import (
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04"
	DatetimeLayout = "2006-01-02 15:04:05"
)

// datetimeLayouts lists the accepted inbound formats, most specific first.
// The chatbot sends ISO 8601 with or without seconds/zone; the sync path
// sees the MySQL-style "date space time" form.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// ParseDatetime parses a raw combined datetime string into its canonical
// "2006-01-02 15:04:05" form.
func ParseDatetime(raw string) (string, error) {
	t, err := parseAny(raw)
	if err != nil {
		return "", err
	}
	return t.Format(DatetimeLayout), nil
}

// SplitDatetime parses a raw combined datetime string and returns the
// canonical (date, time-of-day) pair.
func SplitDatetime(raw string) (string, string, error) {
	t, err := parseAny(raw)
	if err != nil {
		return "", "", err
	}
	return t.Format(DateLayout), t.Format(TimeLayout), nil
}

// JoinDatetime combines separate date and time-of-day fields into the
// canonical combined form stored in botpress_reservations.
func JoinDatetime(date, timeOfDay string) string {
	return date + " " + timeOfDay + ":00"
}

func parseAny(raw string) (time.Time, error) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid datetime format %q", ErrInvalidInput, raw)
}
