// Package mapview holds the map screen state: markers built from records,
// the overview/focused camera state machine, and the detail panel contents.
package mapview

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nitesh/newsmap/internal/hotspot"
	"github.com/nitesh/newsmap/pkg/models"
)

var (
	ErrNoSuchRecord = errors.New("no record at index")
	ErrNotMappable  = errors.New("record has no coordinates")
)

// State is the camera mode.
type State int

const (
	Overview State = iota
	Focused
)

func (s State) String() string {
	if s == Focused {
		return "focused"
	}
	return "overview"
}

// Marker is one drawable record. Index points into the current record list.
type Marker struct {
	Index        int                 `json:"index"`
	Position     LatLng              `json:"position"`
	LocationName string              `json:"locationName"`
	Style        hotspot.MarkerStyle `json:"style"`
}

// View is the map screen. All methods are safe for concurrent use.
type View struct {
	mu       sync.Mutex
	camera   *Camera
	width    int
	category models.Category
	gen      uint64
	records  []*models.Record
	selected int
	state    State
}

// NewView creates a view in overview state showing every category.
func NewView(viewportWidth int, now func() time.Time) *View {
	return &View{
		camera:   NewCamera(now),
		width:    viewportWidth,
		category: models.CategoryAll,
		selected: -1,
	}
}

func (v *View) Camera() *Camera { return v.camera }

func (v *View) SetViewportWidth(w int) {
	v.mu.Lock()
	v.width = w
	v.mu.Unlock()
}

func (v *View) Category() models.Category {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.category
}

// SetCategory switches the filter and returns the token the caller must pass
// to ApplyRecords with the matching response.
func (v *View) SetCategory(cat models.Category) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !cat.IsFilter() {
		cat = models.CategoryAll
	}
	v.category = cat
	v.gen++
	return v.gen
}

// ApplyRecords installs records fetched for token gen. Responses for an
// older token are dropped and false is returned.
func (v *View) ApplyRecords(gen uint64, records []*models.Record) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return false
	}
	v.setRecordsLocked(records)
	return true
}

// SetRecords replaces the record list unconditionally.
func (v *View) SetRecords(records []*models.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setRecordsLocked(records)
}

// Indices change meaning with a new list, so any selection is dropped.
func (v *View) setRecordsLocked(records []*models.Record) {
	v.records = records
	if v.state == Focused {
		v.clearLocked()
	}
}

func (v *View) Records() []*models.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.records
}

// Markers returns one marker per record with coordinates, sized and colored
// by the aggregate of the whole list.
func (v *View) Markers() []Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	counts := hotspot.Aggregate(v.records)
	var out []Marker
	for i, r := range v.records {
		pos, ok := position(r)
		if !ok {
			continue
		}
		out = append(out, Marker{
			Index:        i,
			Position:     pos,
			LocationName: r.Metadata.LocationName,
			Style:        counts.Style(r.Metadata.LocationName),
		})
	}
	return out
}

// Select focuses the camera on the record at index.
func (v *View) Select(index int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if index < 0 || index >= len(v.records) {
		return ErrNoSuchRecord
	}
	pos, ok := position(v.records[index])
	if !ok {
		return ErrNotMappable
	}
	v.selected = index
	v.state = Focused
	v.camera.FlyTo(FocusTarget(pos, v.width), FocusedZoom)
	return nil
}

// Clear closes the detail panel and returns to the overview.
func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.clearLocked()
}

func (v *View) clearLocked() {
	v.selected = -1
	v.state = Overview
	v.camera.FlyTo(DefaultCenter, DefaultZoom)
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Selected returns the selected record index.
func (v *View) Selected() (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected, v.state == Focused
}

// DetailPanel returns the records sharing the selected record's location, in
// list order. It is empty in overview.
func (v *View) DetailPanel() []*models.Record {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != Focused {
		return nil
	}
	loc := v.records[v.selected].Metadata.LocationName
	var out []*models.Record
	for _, r := range v.records {
		if r.Metadata.LocationName == loc {
			out = append(out, r)
		}
	}
	return out
}

func position(r *models.Record) (LatLng, bool) {
	if r == nil || !r.Metadata.HasCoordinates() {
		return LatLng{}, false
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(r.Metadata.Latitude), 64)
	if err != nil {
		return LatLng{}, false
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(r.Metadata.Longitude), 64)
	if err != nil {
		return LatLng{}, false
	}
	return LatLng{Lat: lat, Lng: lng}, true
}
