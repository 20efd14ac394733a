package mapview

import (
	"sync"
	"time"
)

// LatLng is a map position in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

const (
	DefaultZoom = 2.5
	FocusedZoom = 10
	FlyDuration = time.Second

	// Viewports narrower than this put the detail panel below the map.
	NarrowViewportWidth = 1024

	narrowLatOffset = 0.4
	wideLngOffset   = 0.6
)

var DefaultCenter = LatLng{Lat: 0, Lng: 0}

// FocusTarget shifts p so the detail panel does not cover the marker. Narrow
// viewports move the camera south, wide ones move it east.
func FocusTarget(p LatLng, viewportWidth int) LatLng {
	if viewportWidth < NarrowViewportWidth {
		return LatLng{Lat: p.Lat - narrowLatOffset, Lng: p.Lng}
	}
	return LatLng{Lat: p.Lat, Lng: p.Lng + wideLngOffset}
}

// Camera animates linearly between positions over FlyDuration.
type Camera struct {
	mu  sync.Mutex
	now func() time.Time

	from, to         LatLng
	fromZoom, toZoom float64
	start            time.Time
	duration         time.Duration
}

// NewCamera returns a camera resting at the default overview. A nil clock
// uses time.Now.
func NewCamera(now func() time.Time) *Camera {
	if now == nil {
		now = time.Now
	}
	return &Camera{
		now:      now,
		from:     DefaultCenter,
		to:       DefaultCenter,
		fromZoom: DefaultZoom,
		toZoom:   DefaultZoom,
		duration: FlyDuration,
	}
}

// FlyTo starts a new animation from wherever the camera is right now.
func (c *Camera) FlyTo(target LatLng, zoom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now()
	c.from, c.fromZoom = c.positionAt(t)
	c.to, c.toZoom = target, zoom
	c.start = t
}

// Position returns the current center and zoom.
func (c *Camera) Position() (LatLng, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionAt(c.now())
}

// Target returns where the current animation ends.
func (c *Camera) Target() (LatLng, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.to, c.toZoom
}

// Animating reports whether a flight is still in progress.
func (c *Camera) Animating() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress(c.now()) < 1
}

func (c *Camera) progress(t time.Time) float64 {
	if c.start.IsZero() || c.duration <= 0 {
		return 1
	}
	elapsed := t.Sub(c.start)
	if elapsed <= 0 {
		return 0
	}
	if elapsed >= c.duration {
		return 1
	}
	return float64(elapsed) / float64(c.duration)
}

func (c *Camera) positionAt(t time.Time) (LatLng, float64) {
	p := c.progress(t)
	return LatLng{
		Lat: lerp(c.from.Lat, c.to.Lat, p),
		Lng: lerp(c.from.Lng, c.to.Lng, p),
	}, lerp(c.fromZoom, c.toZoom, p)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
