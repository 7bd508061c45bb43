package trafficmap

import (
	"github.com/bikeshare-traffic/internal/traffic"
	"github.com/bikeshare-traffic/internal/viewport"
)

// Marker is everything the renderer needs to draw one station circle
type Marker struct {
	StationID string  `json:"station_id"`
	Name      string  `json:"name,omitempty"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Radius    float64 `json:"radius"`
	Flow      float64 `json:"flow"`
	Tooltip   string  `json:"tooltip"`
}

// SyncPositions recomputes every marker's screen position from its coordinates.
// Traffic attributes are left untouched.
func SyncPositions(markers []Marker, p viewport.Projector) {
	for i := range markers {
		pt := p.Project(markers[i].Lon, markers[i].Lat)
		markers[i].X = pt.X
		markers[i].Y = pt.Y
	}
}

// applyTraffic sets radius, flow and tooltip from stats. stats is in marker order.
func applyTraffic(markers []Marker, stats []traffic.StationTraffic, radius traffic.RadiusScale, flow traffic.FlowScale) {
	for i := range markers {
		s := stats[i]
		markers[i].Radius = radius.Radius(s.TotalTraffic)
		markers[i].Flow = flow.Quantize(s.DepartureRatio())
		markers[i].Tooltip = s.Tooltip()
	}
}
