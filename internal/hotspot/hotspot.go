// Package hotspot aggregates records by location for marker sizing and
// coloring. Everything here is a pure function of the record list passed in;
// callers recompute on every change.
package hotspot

import "github.com/nitesh/newsmap/pkg/models"

const baseMarkerSize = 12

// Palette maps categories to marker colors.
var Palette = map[models.Category]string{
	models.CategoryBusiness:      "#0004FF",
	models.CategoryEntertainment: "#FB0000",
	models.CategoryHealth:        "#00BF00",
	models.CategoryScience:       "#F3EA1B",
	models.CategorySports:        "#FF6B00",
	models.CategoryTechnology:    "#8F00FF",
}

// FallbackColor is used for categories without a palette entry.
const FallbackColor = "#000000"

// LocationCount holds the tallies for one location name.
type LocationCount struct {
	Total      int                     `json:"total"`
	ByCategory map[models.Category]int `json:"byCategory"`

	// categories in the order they were first seen at this location
	order []models.Category
}

// Dominant returns the category with the strictly highest count. On a tie the
// category seen first wins.
func (lc *LocationCount) Dominant() models.Category {
	var (
		best  models.Category
		count int
	)
	for _, c := range lc.order {
		if n := lc.ByCategory[c]; n > count {
			best, count = c, n
		}
	}
	return best
}

// Counts is the result of Aggregate.
type Counts struct {
	byLocation map[string]*LocationCount
	order      []string
}

// Aggregate tallies records per location and per category within a location.
func Aggregate(records []*models.Record) Counts {
	c := Counts{byLocation: make(map[string]*LocationCount)}
	for _, r := range records {
		if r == nil {
			continue
		}
		loc := r.Metadata.LocationName
		lc, ok := c.byLocation[loc]
		if !ok {
			lc = &LocationCount{ByCategory: make(map[models.Category]int)}
			c.byLocation[loc] = lc
			c.order = append(c.order, loc)
		}
		cat := r.Metadata.Category
		if _, seen := lc.ByCategory[cat]; !seen {
			lc.order = append(lc.order, cat)
		}
		lc.ByCategory[cat]++
		lc.Total++
	}
	return c
}

// Locations returns location names in first-seen order.
func (c Counts) Locations() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Location returns the tallies for loc, or nil if it was never seen.
func (c Counts) Location(loc string) *LocationCount {
	return c.byLocation[loc]
}

// Total returns the number of records at loc.
func (c Counts) Total(loc string) int {
	if lc := c.byLocation[loc]; lc != nil {
		return lc.Total
	}
	return 0
}

// Dominant returns the dominant category at loc, or "" for an unknown location.
func (c Counts) Dominant(loc string) models.Category {
	if lc := c.byLocation[loc]; lc != nil {
		return lc.Dominant()
	}
	return ""
}

// MarkerStyle describes how a location's marker is drawn.
type MarkerStyle struct {
	Size     int             `json:"size"`
	Color    string          `json:"color"`
	Category models.Category `json:"category"`
}

// Style returns the marker style for loc: size grows linearly with the
// article count and color follows the dominant category.
func (c Counts) Style(loc string) MarkerStyle {
	dom := c.Dominant(loc)
	return MarkerStyle{
		Size:     baseMarkerSize + c.Total(loc),
		Color:    ColorFor(dom),
		Category: dom,
	}
}

// ColorFor returns the palette color for cat.
func ColorFor(cat models.Category) string {
	if col, ok := Palette[cat]; ok {
		return col
	}
	return FallbackColor
}

// Hotspot is one map marker.
type Hotspot struct {
	LocationName string                  `json:"locationName"`
	Latitude     string                  `json:"latitude"`
	Longitude    string                  `json:"longitude"`
	Total        int                     `json:"total"`
	Counts       map[models.Category]int `json:"counts"`
	Dominant     models.Category         `json:"dominant"`
	Style        MarkerStyle             `json:"style"`
}

// Hotspots builds one marker per location. Coordinates come from the first
// record at that location that has them; locations with no coordinates at all
// are left out.
func Hotspots(records []*models.Record) []Hotspot {
	counts := Aggregate(records)
	coords := make(map[string]models.Metadata)
	for _, r := range records {
		if r == nil || !r.Metadata.HasCoordinates() {
			continue
		}
		if _, ok := coords[r.Metadata.LocationName]; !ok {
			coords[r.Metadata.LocationName] = r.Metadata
		}
	}

	out := make([]Hotspot, 0, len(coords))
	for _, loc := range counts.order {
		md, ok := coords[loc]
		if !ok {
			continue
		}
		style := counts.Style(loc)
		byCat := make(map[models.Category]int)
		for c, n := range counts.Location(loc).ByCategory {
			byCat[c] = n
		}
		out = append(out, Hotspot{
			LocationName: loc,
			Latitude:     md.Latitude,
			Longitude:    md.Longitude,
			Total:        counts.Total(loc),
			Counts:       byCat,
			Dominant:     style.Category,
			Style:        style,
		})
	}
	return out
}
