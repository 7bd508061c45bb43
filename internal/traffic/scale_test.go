package traffic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRadiusScaleRanges(t *testing.T) {
	stations := []StationTraffic{{TotalTraffic: 100}, {TotalTraffic: 25}}

	unfiltered := NewRadiusScale(stations, NoFilter)
	assert.Equal(t, 100.0, unfiltered.DomainMax)
	assert.Equal(t, 0.0, unfiltered.Radius(0))
	assert.InDelta(t, 12.5, unfiltered.Radius(25), 1e-9)
	assert.InDelta(t, 25.0, unfiltered.Radius(100), 1e-9)

	filtered := NewRadiusScale(stations, 480)
	assert.Equal(t, 3.0, filtered.Radius(0))
	assert.InDelta(t, 3+47*0.5, filtered.Radius(25), 1e-9)
	assert.InDelta(t, 50.0, filtered.Radius(100), 1e-9)
}

func TestRadiusScaleZeroDomain(t *testing.T) {
	stations := []StationTraffic{{}, {}, {}}

	for minute, want := range map[int]float64{NoFilter: 0, 0: 3, 720: 3} {
		scale := NewRadiusScale(stations, minute)
		for _, s := range stations {
			r := scale.Radius(s.TotalTraffic)
			assert.False(t, math.IsNaN(r))
			assert.Equal(t, want, r, "minute %d", minute)
		}
	}
}

func TestFlowScaleBoundaries(t *testing.T) {
	flow := DefaultFlowScale()

	cases := []struct {
		ratio float64
		want  float64
	}{
		{0.0, 0},
		{0.2, 0},
		{1.0 / 3, 0.5},
		{0.49, 0.5},
		{0.5, 0.5},
		{0.51, 0.5},
		{0.66, 0.5},
		{2.0 / 3, 1},
		{1.0, 1},
		{-0.5, 0},
		{1.5, 1},
		{math.NaN(), 0.5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, flow.Quantize(tc.ratio), "ratio %v", tc.ratio)
	}
}

func TestFlowScaleThresholds(t *testing.T) {
	thresholds := DefaultFlowScale().Thresholds()
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3}, thresholds, 1e-12)
}

func TestFlowOfZeroTrafficIsNeutral(t *testing.T) {
	assert.Equal(t, 0.5, DefaultFlowScale().Quantize(StationTraffic{}.DepartureRatio()))
}
