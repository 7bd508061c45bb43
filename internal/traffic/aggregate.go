package traffic

import (
	"fmt"

	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

// StationTraffic is a station with the trip counts of one time filter.
// TotalTraffic is always Departures + Arrivals.
type StationTraffic struct {
	ID           string
	Name         string
	Lat          float64
	Lon          float64
	Departures   int
	Arrivals     int
	TotalTraffic int
}

// DepartureRatio is Departures / TotalTraffic. A station without traffic has
// no direction, so it reports NeutralRatio.
func (s StationTraffic) DepartureRatio() float64 {
	if s.TotalTraffic == 0 {
		return NeutralRatio
	}
	return float64(s.Departures) / float64(s.TotalTraffic)
}

// Tooltip is the hover text of the station marker
func (s StationTraffic) Tooltip() string {
	return fmt.Sprintf("%d trips (%d departures, %d arrivals)", s.TotalTraffic, s.Departures, s.Arrivals)
}

// Aggregate counts departures by start station and arrivals by end station and
// returns a fresh record per station, in station order. Stations without trips
// get zero counts; trips referencing unknown stations are ignored.
func Aggregate(stations []models.Station, departures, arrivals []*models.Trip) []StationTraffic {
	departureCounts := countBy(departures, func(t *models.Trip) string { return t.StartStationID })
	arrivalCounts := countBy(arrivals, func(t *models.Trip) string { return t.EndStationID })

	result := make([]StationTraffic, len(stations))
	for i, st := range stations {
		dep := departureCounts[st.ID]
		arr := arrivalCounts[st.ID]
		result[i] = StationTraffic{
			ID:           st.ID,
			Name:         st.Name,
			Lat:          st.Lat,
			Lon:          st.Lon,
			Departures:   dep,
			Arrivals:     arr,
			TotalTraffic: dep + arr,
		}
	}
	return result
}

// ComputeStationTraffic filters the index with minute and aggregates the result
func ComputeStationTraffic(idx *TripIndex, stations []models.Station, minute int) ([]StationTraffic, error) {
	if err := ValidateTimeFilter(minute); err != nil {
		return nil, err
	}
	return Aggregate(stations, idx.Departures(minute), idx.Arrivals(minute)), nil
}

// MaxTraffic is the largest TotalTraffic, or 0 for no stations
func MaxTraffic(stations []StationTraffic) int {
	maxTraffic := 0
	for _, s := range stations {
		if s.TotalTraffic > maxTraffic {
			maxTraffic = s.TotalTraffic
		}
	}
	return maxTraffic
}

func countBy(trips []*models.Trip, key func(*models.Trip) string) map[string]int {
	counts := make(map[string]int)
	for _, t := range trips {
		counts[key(t)]++
	}
	return counts
}
