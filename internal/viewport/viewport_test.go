package viewport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func bostonView() *Viewport {
	return New(Options{
		Center:  LngLat{Lon: -71.09415, Lat: 42.36027},
		Zoom:    12,
		MinZoom: 5,
		MaxZoom: 18,
		Width:   800,
		Height:  600,
	})
}

func TestProjectCenterIsScreenMiddle(t *testing.T) {
	v := bostonView()

	p := v.Project(-71.09415, 42.36027)
	assert.InDelta(t, 400, p.X, 1e-6)
	assert.InDelta(t, 300, p.Y, 1e-6)
}

func TestProjectDirections(t *testing.T) {
	v := bostonView()
	center := v.Project(-71.09415, 42.36027)

	east := v.Project(-71.08, 42.36027)
	north := v.Project(-71.09415, 42.37)
	assert.Greater(t, east.X, center.X)
	assert.Less(t, north.Y, center.Y)
}

func TestUnprojectRoundTrip(t *testing.T) {
	v := bostonView()

	p := v.Project(-71.1, 42.35)
	ll := v.Unproject(p)
	assert.InDelta(t, -71.1, ll.Lon, 1e-9)
	assert.InDelta(t, 42.35, ll.Lat, 1e-9)
}

func TestZoomDoublesDistances(t *testing.T) {
	v := bostonView()
	before := v.Project(-71.08, 42.36027).X - 400

	v.ZoomTo(13)
	after := v.Project(-71.08, 42.36027).X - 400
	assert.InDelta(t, 2*before, after, 1e-6)
}

func TestZoomIsClamped(t *testing.T) {
	v := bostonView()

	v.ZoomTo(30)
	assert.Equal(t, 18.0, v.Zoom())
	v.ZoomTo(1)
	assert.Equal(t, 5.0, v.Zoom())
}

func TestPanMovesPoints(t *testing.T) {
	v := bostonView()
	before := v.Project(-71.09415, 42.36027)

	v.Pan(100, -50)
	after := v.Project(-71.09415, 42.36027)
	assert.InDelta(t, before.X-100, after.X, 1e-6)
	assert.InDelta(t, before.Y+50, after.Y, 1e-6)
}

func TestBoundsContainCenter(t *testing.T) {
	v := bostonView()
	b := v.Bounds()

	assert.Less(t, b.SouthWest.Lon, -71.09415)
	assert.Greater(t, b.NorthEast.Lon, -71.09415)
	assert.Less(t, b.SouthWest.Lat, 42.36027)
	assert.Greater(t, b.NorthEast.Lat, 42.36027)
}

func TestObserversRunInOrderOnEveryTransform(t *testing.T) {
	v := bostonView()
	var calls []string

	v.OnViewTransform(func(p Projector) { calls = append(calls, "first") })
	v.OnViewTransform(func(p Projector) { calls = append(calls, "second") })

	v.Pan(10, 0)
	v.ZoomTo(13)
	v.Resize(1024, 768)
	v.JumpTo(LngLat{Lon: -71, Lat: 42}, 10)

	assert.Equal(t, []string{
		"first", "second",
		"first", "second",
		"first", "second",
		"first", "second",
	}, calls)
}

func TestObserverSeesNewProjection(t *testing.T) {
	v := bostonView()
	var seen Point

	v.OnViewTransform(func(p Projector) { seen = p.Project(-71.09415, 42.36027) })
	v.Resize(1000, 1000)

	assert.InDelta(t, 500, seen.X, 1e-6)
	assert.InDelta(t, 500, seen.Y, 1e-6)
}

func TestProjectorFunc(t *testing.T) {
	var p Projector = ProjectorFunc(func(lon, lat float64) Point { return Point{X: lon, Y: lat} })
	assert.Equal(t, Point{X: 1, Y: 2}, p.Project(1, 2))
}
