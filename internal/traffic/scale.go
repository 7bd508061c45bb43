package traffic

import "math"

// Radius ranges by filter mode
const (
	UnfilteredMinRadius = 0
	UnfilteredMaxRadius = 25
	FilteredMinRadius   = 3
	FilteredMaxRadius   = 50
)

// NeutralRatio is used for the departure ratio of stations without traffic
const NeutralRatio = 0.5

// RadiusScale maps traffic to a marker radius so that marker area grows
// linearly with traffic.
type RadiusScale struct {
	DomainMax float64
	RangeMin  float64
	RangeMax  float64
}

// NewRadiusScale uses the traffic maximum of stations as domain and picks the
// range from the time filter mode.
func NewRadiusScale(stations []StationTraffic, minute int) RadiusScale {
	s := RadiusScale{DomainMax: float64(MaxTraffic(stations))}
	if minute == NoFilter {
		s.RangeMin, s.RangeMax = UnfilteredMinRadius, UnfilteredMaxRadius
	} else {
		s.RangeMin, s.RangeMax = FilteredMinRadius, FilteredMaxRadius
	}
	return s
}

// Radius returns RangeMin for an empty domain
func (s RadiusScale) Radius(traffic int) float64 {
	if s.DomainMax <= 0 || traffic <= 0 {
		return s.RangeMin
	}
	return s.RangeMin + (s.RangeMax-s.RangeMin)*math.Sqrt(float64(traffic)/s.DomainMax)
}

// FlowScale quantizes [0, 1] into equal-width segments, one per output value.
// A value on a segment boundary belongs to the upper segment; values outside
// the domain clamp to the first or last output.
type FlowScale struct {
	outputs    []float64
	thresholds []float64
}

// DefaultFlowScale maps departure ratios to 0 (arrivals dominate), 0.5 (balanced)
// and 1 (departures dominate).
func DefaultFlowScale() FlowScale {
	return NewFlowScale(0, 0.5, 1)
}

func NewFlowScale(outputs ...float64) FlowScale {
	n := len(outputs)
	thresholds := make([]float64, 0, n)
	for i := 1; i < n; i++ {
		thresholds = append(thresholds, float64(i)/float64(n))
	}
	return FlowScale{outputs: outputs, thresholds: thresholds}
}

func (f FlowScale) Quantize(ratio float64) float64 {
	if len(f.outputs) == 0 {
		return NeutralRatio
	}
	if math.IsNaN(ratio) {
		ratio = NeutralRatio
	}
	i := 0
	for i < len(f.thresholds) && ratio >= f.thresholds[i] {
		i++
	}
	return f.outputs[i]
}

// Thresholds returns the segment boundaries
func (f FlowScale) Thresholds() []float64 {
	return append([]float64(nil), f.thresholds...)
}
