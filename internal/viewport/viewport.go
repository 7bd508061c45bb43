// Package viewport models the map view: a Web Mercator camera that projects
// geographic coordinates to screen pixels and notifies observers whenever the
// view is panned, zoomed or resized.
package viewport

import (
	"math"
	"sync"
)

const (
	// TileSize matches vector map renderers, which use 512px tiles
	TileSize = 512

	MaxLatitude = 85.051129
)

// Point is a screen position in pixels, origin top-left
type Point struct {
	X float64
	Y float64
}

// LngLat is a geographic position in degrees
type LngLat struct {
	Lon float64
	Lat float64
}

// Bounds is a geographic rectangle
type Bounds struct {
	SouthWest LngLat
	NorthEast LngLat
}

// Projector converts geographic coordinates to screen coordinates
type Projector interface {
	Project(lon, lat float64) Point
}

// ProjectorFunc adapts a function to the Projector interface
type ProjectorFunc func(lon, lat float64) Point

func (f ProjectorFunc) Project(lon, lat float64) Point {
	return f(lon, lat)
}

// TransformFunc is called after every view change with the current projection
type TransformFunc func(p Projector)

type Options struct {
	Center  LngLat
	Zoom    float64
	MinZoom float64
	MaxZoom float64
	Width   int
	Height  int
}

// Viewport is the current camera. Observer callbacks run synchronously on the
// goroutine that changed the view, in registration order.
type Viewport struct {
	mu        sync.RWMutex
	center    LngLat
	zoom      float64
	minZoom   float64
	maxZoom   float64
	width     int
	height    int
	observers []TransformFunc
}

func New(opts Options) *Viewport {
	v := &Viewport{
		minZoom: opts.MinZoom,
		maxZoom: opts.MaxZoom,
		width:   opts.Width,
		height:  opts.Height,
	}
	if v.maxZoom <= 0 || v.maxZoom < v.minZoom {
		v.maxZoom = 22
	}
	v.center = clampLngLat(opts.Center)
	v.zoom = v.clampZoom(opts.Zoom)
	return v
}

// OnViewTransform registers cb for every later view change
func (v *Viewport) OnViewTransform(cb TransformFunc) {
	v.mu.Lock()
	v.observers = append(v.observers, cb)
	v.mu.Unlock()
}

func (v *Viewport) Center() LngLat {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.center
}

func (v *Viewport) Zoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom
}

func (v *Viewport) Size() (int, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// Project maps lon/lat to screen pixels for the current camera
func (v *Viewport) Project(lon, lat float64) Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.project(lon, lat)
}

// Unproject maps screen pixels back to lon/lat
func (v *Viewport) Unproject(p Point) LngLat {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.unproject(p)
}

// Bounds is the geographic extent currently on screen
func (v *Viewport) Bounds() Bounds {
	v.mu.RLock()
	defer v.mu.RUnlock()
	sw := v.unproject(Point{X: 0, Y: float64(v.height)})
	ne := v.unproject(Point{X: float64(v.width), Y: 0})
	return Bounds{SouthWest: sw, NorthEast: ne}
}

// Pan moves the view by dx, dy screen pixels
func (v *Viewport) Pan(dx, dy float64) {
	v.update(func() {
		c := v.worldPoint(v.center.Lon, v.center.Lat)
		v.center = clampLngLat(v.fromWorld(c.X+dx, c.Y+dy))
	})
}

// ZoomTo sets the zoom level, clamped to the configured range
func (v *Viewport) ZoomTo(zoom float64) {
	v.update(func() {
		v.zoom = v.clampZoom(zoom)
	})
}

// Resize changes the screen size in pixels
func (v *Viewport) Resize(width, height int) {
	v.update(func() {
		v.width = width
		v.height = height
	})
}

// JumpTo moves the center and zoom in one transform
func (v *Viewport) JumpTo(center LngLat, zoom float64) {
	v.update(func() {
		v.center = clampLngLat(center)
		v.zoom = v.clampZoom(zoom)
	})
}

func (v *Viewport) update(change func()) {
	v.mu.Lock()
	change()
	observers := append([]TransformFunc(nil), v.observers...)
	v.mu.Unlock()

	for _, cb := range observers {
		cb(v)
	}
}

func (v *Viewport) worldSize() float64 {
	return TileSize * math.Pow(2, v.zoom)
}

func (v *Viewport) worldPoint(lon, lat float64) Point {
	lat = clamp(lat, -MaxLatitude, MaxLatitude)
	size := v.worldSize()
	x := (180 + lon) / 360 * size
	y := (180 - (180/math.Pi)*math.Log(math.Tan(math.Pi/4+lat*math.Pi/360))) / 360 * size
	return Point{X: x, Y: y}
}

func (v *Viewport) fromWorld(x, y float64) LngLat {
	size := v.worldSize()
	lon := x/size*360 - 180
	y2 := 180 - y/size*360
	lat := 360/math.Pi*math.Atan(math.Exp(y2*math.Pi/180)) - 90
	return LngLat{Lon: lon, Lat: lat}
}

func (v *Viewport) project(lon, lat float64) Point {
	p := v.worldPoint(lon, lat)
	c := v.worldPoint(v.center.Lon, v.center.Lat)
	return Point{
		X: p.X - c.X + float64(v.width)/2,
		Y: p.Y - c.Y + float64(v.height)/2,
	}
}

func (v *Viewport) unproject(p Point) LngLat {
	c := v.worldPoint(v.center.Lon, v.center.Lat)
	return v.fromWorld(p.X-float64(v.width)/2+c.X, p.Y-float64(v.height)/2+c.Y)
}

func (v *Viewport) clampZoom(z float64) float64 {
	return clamp(z, v.minZoom, v.maxZoom)
}

func clampLngLat(ll LngLat) LngLat {
	return LngLat{
		Lon: clamp(ll.Lon, -180, 180),
		Lat: clamp(ll.Lat, -MaxLatitude, MaxLatitude),
	}
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
