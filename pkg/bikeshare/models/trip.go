package models

import "time"

const MinutesPerDay = 24 * 60

// Trip is one ride from the trip history CSV. Trips are never modified after parsing.
type Trip struct {
	RideID         string
	RideableType   string
	StartStationID string
	EndStationID   string
	StartedAt      time.Time
	EndedAt        time.Time
	MemberType     string
}

// StartMinute is the minute of day the trip started, in loc
func (t *Trip) StartMinute(loc *time.Location) int {
	return MinutesSinceMidnight(t.StartedAt, loc)
}

// EndMinute is the minute of day the trip ended, in loc
func (t *Trip) EndMinute(loc *time.Location) int {
	return MinutesSinceMidnight(t.EndedAt, loc)
}

// MinutesSinceMidnight returns the wall-clock minute of day of ts in loc, in [0, 1439].
// A nil loc keeps ts in its own location.
func MinutesSinceMidnight(ts time.Time, loc *time.Location) int {
	if loc != nil {
		ts = ts.In(loc)
	}
	return ts.Hour()*60 + ts.Minute()
}
