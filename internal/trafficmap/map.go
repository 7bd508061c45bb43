// Package trafficmap drives the station traffic map: it owns the trip index,
// the current station traffic and the markers, recomputing traffic on time
// filter changes and marker positions on view changes.
package trafficmap

import (
	"sort"
	"time"

	"github.com/bikeshare-traffic/internal/common/logger"
	"github.com/bikeshare-traffic/internal/traffic"
	"github.com/bikeshare-traffic/internal/viewport"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

// View is the part of the viewport the map depends on
type View interface {
	viewport.Projector
	OnViewTransform(cb viewport.TransformFunc)
	Bounds() viewport.Bounds
}

// Map is not safe for concurrent use; events are expected on one goroutine.
type Map struct {
	index    *traffic.TripIndex
	stations []models.Station
	locator  *stationLocator
	view     View
	flow     traffic.FlowScale
	logger   logger.Logger

	timeFilter int
	traffic    []traffic.StationTraffic
	radius     traffic.RadiusScale
	markers    []Marker
}

// New indexes trips, creates one marker per station, computes unfiltered
// traffic, places the markers and follows later view transforms.
func New(stations []models.Station, trips []models.Trip, view View, loc *time.Location, log logger.Logger) *Map {
	start := time.Now()
	index := traffic.BuildIndex(trips, loc)
	log.Info("Trip index built", "trips", index.Len(), "duration", time.Since(start).String())

	m := &Map{
		index:    index,
		stations: append([]models.Station(nil), stations...),
		locator:  newStationLocator(stations),
		view:     view,
		flow:     traffic.DefaultFlowScale(),
		logger:   log,
	}

	m.markers = make([]Marker, len(m.stations))
	for i, st := range m.stations {
		m.markers[i] = Marker{StationID: st.ID, Name: st.Name, Lon: st.Lon, Lat: st.Lat}
	}

	// NoFilter is always valid
	_ = m.SetTimeFilter(traffic.NoFilter)

	m.SyncPositions(view)
	view.OnViewTransform(m.SyncPositions)

	return m
}

// SetTimeFilter recomputes station traffic, scales and marker attributes for minute
func (m *Map) SetTimeFilter(minute int) error {
	stats, err := traffic.ComputeStationTraffic(m.index, m.stations, minute)
	if err != nil {
		return err
	}

	m.timeFilter = minute
	m.traffic = stats
	m.radius = traffic.NewRadiusScale(stats, minute)
	applyTraffic(m.markers, stats, m.radius, m.flow)

	m.logger.Debug("Station traffic recomputed",
		"time_filter", minute,
		"label", traffic.FilterLabel(minute),
		"max_traffic", m.radius.DomainMax)
	return nil
}

// SyncPositions re-projects every marker with p
func (m *Map) SyncPositions(p viewport.Projector) {
	SyncPositions(m.markers, p)
}

func (m *Map) TimeFilter() int {
	return m.timeFilter
}

// TimeLabel is the slider label for the current filter
func (m *Map) TimeLabel() string {
	return traffic.FilterLabel(m.timeFilter)
}

func (m *Map) RadiusScale() traffic.RadiusScale {
	return m.radius
}

// Traffic returns a copy of the current station traffic, in station order
func (m *Map) Traffic() []traffic.StationTraffic {
	return append([]traffic.StationTraffic(nil), m.traffic...)
}

// Markers returns a copy of the markers, in station order
func (m *Map) Markers() []Marker {
	return append([]Marker(nil), m.markers...)
}

// VisibleMarkers returns copies of the markers whose station lies inside the view
func (m *Map) VisibleMarkers() []Marker {
	positions := m.locator.within(m.view.Bounds())
	sort.Ints(positions)

	result := make([]Marker, 0, len(positions))
	for _, i := range positions {
		result = append(result, m.markers[i])
	}
	return result
}

// TripCount is the number of indexed trips
func (m *Map) TripCount() int {
	return m.index.Len()
}
