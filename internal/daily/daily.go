// Package daily chooses the target word for a calendar day.
//
// A date key is a calendar date formatted YYYY-MM-DD. Day arithmetic is
// done on calendar components only: a key is turned into a civil date at
// UTC midnight and counted in whole days, so neither the host time zone
// nor daylight-saving transitions can shift the rotation.
package daily

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

// BaselineKey is day zero of the answer rotation.
const BaselineKey = "2026-01-01"

var ErrInvalidDateKey = errors.New("daily: invalid date key")

// DateKey returns t's calendar date in loc as YYYY-MM-DD.
// A nil loc means t's own location.
func DateKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(dateLayout)
}

// ParseDateKey validates key and returns the civil date at UTC midnight.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.Parse(dateLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidDateKey
	}
	return t, nil
}

// EpochDay returns the number of whole days between 1970-01-01 and key.
func EpochDay(key string) (int64, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return 0, err
	}
	return civilDays(t.Year(), t.Month(), t.Day()), nil
}

// DayOffset returns EpochDay(key) − EpochDay(BaselineKey). It is negative
// for dates before the baseline.
func DayOffset(key string) (int64, error) {
	d, err := EpochDay(key)
	if err != nil {
		return 0, err
	}
	base, _ := EpochDay(BaselineKey)
	return d - base, nil
}

// RotationIndex maps any offset, including negative ones, into [0, n).
// n must be positive.
func RotationIndex(offset int64, n int) int {
	m := int64(n)
	return int(((offset % m) + m) % m)
}

// civilDays counts days from the Unix epoch using only y/m/d. The value at
// UTC midnight is an exact multiple of a day, so the division never rounds.
func civilDays(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
