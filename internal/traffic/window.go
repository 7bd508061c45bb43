package traffic

import (
	"errors"
	"fmt"

	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

const (
	// NoFilter selects every minute of the day
	NoFilter = -1

	// WindowRadius is the half-width of a time filter window in minutes
	WindowRadius = 60
)

var ErrInvalidTimeFilter = errors.New("time filter out of range")

// ValidateTimeFilter accepts NoFilter or a minute in [0, 1439]
func ValidateTimeFilter(minute int) error {
	if minute == NoFilter || (minute >= 0 && minute < models.MinutesPerDay) {
		return nil
	}
	return fmt.Errorf("%w: %d", ErrInvalidTimeFilter, minute)
}

// Buckets holds one slice of items per minute of the day
type Buckets[T any] [models.MinutesPerDay][]T

// Window flattens the buckets around minute into a new slice.
//
// With NoFilter every bucket is returned in order. Otherwise the window is the
// half-open range [minute-60, minute+60) modulo 1440, so it spans 120 buckets and
// wraps past midnight when needed. minute must satisfy ValidateTimeFilter.
func (b *Buckets[T]) Window(minute int) []T {
	if minute == NoFilter {
		return b.flatten(0, models.MinutesPerDay, nil)
	}

	minMinute := (minute - WindowRadius + models.MinutesPerDay) % models.MinutesPerDay
	maxMinute := (minute + WindowRadius) % models.MinutesPerDay

	if minMinute > maxMinute {
		beforeMidnight := b.flatten(minMinute, models.MinutesPerDay, nil)
		return b.flatten(0, maxMinute, beforeMidnight)
	}
	return b.flatten(minMinute, maxMinute, nil)
}

// Count returns the number of items in bucket range [from, to)
func (b *Buckets[T]) Count(from, to int) int {
	n := 0
	for m := from; m < to; m++ {
		n += len(b[m])
	}
	return n
}

func (b *Buckets[T]) flatten(from, to int, dst []T) []T {
	if dst == nil {
		dst = make([]T, 0, b.Count(from, to))
	}
	for m := from; m < to; m++ {
		dst = append(dst, b[m]...)
	}
	return dst
}
