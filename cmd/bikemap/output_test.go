package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bikeshare-traffic/internal/common/logger"
	"github.com/bikeshare-traffic/internal/trafficmap"
	"github.com/bikeshare-traffic/internal/viewport"
	"github.com/bikeshare-traffic/pkg/bikeshare/models"
)

func testMap(t *testing.T) *trafficmap.Map {
	t.Helper()
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	stations := []models.Station{
		{ID: "A32", Name: "Kendall T", Lat: 42.3625, Lon: -71.0862},
		{ID: "B01", Name: "Central Sq", Lat: 42.3653, Lon: -71.1036},
	}
	trips := []models.Trip{
		{RideID: "1", StartStationID: "A32", EndStationID: "B01",
			StartedAt: day.Add(8*time.Hour + 20*time.Minute), EndedAt: day.Add(8*time.Hour + 35*time.Minute)},
	}
	view := viewport.New(viewport.Options{
		Center:  viewport.LngLat{Lon: -71.09415, Lat: 42.36027},
		Zoom:    12,
		MinZoom: 5,
		MaxZoom: 18,
		Width:   1024,
		Height:  768,
	})
	return trafficmap.New(stations, trips, view, time.UTC, logger.Nop())
}

func TestWriteJSON(t *testing.T) {
	m := testMap(t)
	require.NoError(t, m.SetTimeFilter(500))

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, m, m.Markers()))

	var out mapOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 500, out.TimeFilter)
	assert.Equal(t, "8:20 AM", out.TimeLabel)
	assert.Equal(t, 1, out.Trips)
	assert.Equal(t, 50.0, out.MaxRadius)
	require.Len(t, out.Markers, 2)
	assert.Equal(t, "A32", out.Markers[0].StationID)
	assert.Equal(t, 1.0, out.Markers[0].Flow)
	assert.Equal(t, 0.0, out.Markers[1].Flow)
}

func TestWriteJSONEmptyMarkers(t *testing.T) {
	m := testMap(t)

	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, m, nil))
	assert.Contains(t, buf.String(), `"markers": []`)
	assert.Contains(t, buf.String(), `"time_label": "(any time)"`)
}

func TestWriteTable(t *testing.T) {
	m := testMap(t)

	var buf bytes.Buffer
	require.NoError(t, writeTable(&buf, m, m.Markers()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Filter by time: (any time)", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "STATION"))
	assert.Contains(t, lines[3], "1 trips (1 departures, 0 arrivals)")
}
