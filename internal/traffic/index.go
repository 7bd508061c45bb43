package traffic

import (
	"time"

	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

// TripIndex buckets trips by the minute of day they depart and arrive.
// It is built once and never modified.
type TripIndex struct {
	departures Buckets[*models.Trip]
	arrivals   Buckets[*models.Trip]
	size       int
}

// BuildIndex places every trip in the departure bucket of its start minute and
// the arrival bucket of its end minute, both computed in loc.
func BuildIndex(trips []models.Trip, loc *time.Location) *TripIndex {
	idx := &TripIndex{size: len(trips)}
	for i := range trips {
		t := &trips[i]
		start := t.StartMinute(loc)
		end := t.EndMinute(loc)
		idx.departures[start] = append(idx.departures[start], t)
		idx.arrivals[end] = append(idx.arrivals[end], t)
	}
	return idx
}

// Len is the number of indexed trips
func (idx *TripIndex) Len() int {
	return idx.size
}

// Departures returns trips starting inside the window around minute
func (idx *TripIndex) Departures(minute int) []*models.Trip {
	return idx.departures.Window(minute)
}

// Arrivals returns trips ending inside the window around minute
func (idx *TripIndex) Arrivals(minute int) []*models.Trip {
	return idx.arrivals.Window(minute)
}

// DeparturesAt returns the number of trips starting exactly at minute
func (idx *TripIndex) DeparturesAt(minute int) int {
	return len(idx.departures[minute])
}

// ArrivalsAt returns the number of trips ending exactly at minute
func (idx *TripIndex) ArrivalsAt(minute int) int {
	return len(idx.arrivals[minute])
}
