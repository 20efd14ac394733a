package hotspot

import (
	"reflect"
	"testing"

	"github.com/nitesh/newsmap/pkg/models"
)

func rec(loc string, cat models.Category, lat, lon string) *models.Record {
	return &models.Record{Metadata: models.Metadata{LocationName: loc, Category: cat, Latitude: lat, Longitude: lon}}
}

func TestAggregateCounts(t *testing.T) {
	records := []*models.Record{
		rec("paris", models.CategorySports, "48.85", "2.35"),
		rec("paris", models.CategoryHealth, "48.85", "2.35"),
		rec("tokyo", models.CategoryScience, "35.68", "139.69"),
		rec("paris", models.CategorySports, "48.85", "2.35"),
	}
	c := Aggregate(records)

	if got := c.Total("paris"); got != 3 {
		t.Errorf("Expected 3 records at paris, got %d", got)
	}
	if got := c.Total("tokyo"); got != 1 {
		t.Errorf("Expected 1 record at tokyo, got %d", got)
	}
	if got := c.Total("nowhere"); got != 0 {
		t.Errorf("Expected 0 for unknown location, got %d", got)
	}
	if got := c.Location("paris").ByCategory[models.CategorySports]; got != 2 {
		t.Errorf("Expected 2 sports at paris, got %d", got)
	}
	if want := []string{"paris", "tokyo"}; !reflect.DeepEqual(c.Locations(), want) {
		t.Errorf("Expected locations %v, got %v", want, c.Locations())
	}
}

func TestDominant(t *testing.T) {
	tests := []struct {
		name string
		cats []models.Category
		want models.Category
	}{
		{"single", []models.Category{models.CategoryHealth}, models.CategoryHealth},
		{"strict majority", []models.Category{models.CategoryHealth, models.CategorySports, models.CategorySports}, models.CategorySports},
		{"tie keeps first seen", []models.Category{models.CategoryBusiness, models.CategoryScience}, models.CategoryBusiness},
		{"tie reached later by first seen", []models.Category{models.CategoryBusiness, models.CategoryScience, models.CategoryScience, models.CategoryBusiness}, models.CategoryBusiness},
		{"later category overtakes", []models.Category{models.CategoryBusiness, models.CategoryScience, models.CategoryScience}, models.CategoryScience},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var records []*models.Record
			for _, c := range tt.cats {
				records = append(records, rec("x", c, "", ""))
			}
			if got := Aggregate(records).Dominant("x"); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDominantDeterministic(t *testing.T) {
	records := []*models.Record{
		rec("x", models.CategoryTechnology, "", ""),
		rec("x", models.CategoryHealth, "", ""),
		rec("x", models.CategoryEntertainment, "", ""),
	}
	for i := 0; i < 50; i++ {
		if got := Aggregate(records).Dominant("x"); got != models.CategoryTechnology {
			t.Fatalf("iteration %d: expected technology, got %s", i, got)
		}
	}
}

func TestDominantUnknownLocation(t *testing.T) {
	if got := Aggregate(nil).Dominant("x"); got != "" {
		t.Errorf("Expected empty category, got %q", got)
	}
}

func TestStyle(t *testing.T) {
	records := []*models.Record{
		rec("paris", models.CategorySports, "1", "2"),
		rec("paris", models.CategorySports, "1", "2"),
		rec("rome", models.CategoryAll, "3", "4"),
	}
	c := Aggregate(records)

	s := c.Style("paris")
	if s.Size != 14 {
		t.Errorf("Expected size 14, got %d", s.Size)
	}
	if s.Color != "#FF6B00" {
		t.Errorf("Expected sports color, got %s", s.Color)
	}
	if got := c.Style("rome").Color; got != FallbackColor {
		t.Errorf("Expected fallback color for 'all', got %s", got)
	}
}

func TestColorForCoversCategories(t *testing.T) {
	for _, cat := range models.Categories {
		if ColorFor(cat) == FallbackColor {
			t.Errorf("category %s has no palette entry", cat)
		}
	}
}

func TestHotspots(t *testing.T) {
	records := []*models.Record{
		rec("atlantis", models.CategoryScience, "", ""),
		rec("paris", models.CategorySports, "", ""),
		rec("paris", models.CategorySports, "48.85", "2.35"),
		rec("paris", models.CategoryHealth, "48.80", "2.30"),
		rec("tokyo", models.CategoryBusiness, "35.68", "139.69"),
		nil,
	}
	hs := Hotspots(records)
	if len(hs) != 2 {
		t.Fatalf("Expected 2 hotspots, got %d", len(hs))
	}
	if hs[0].LocationName != "paris" || hs[1].LocationName != "tokyo" {
		t.Errorf("Expected paris then tokyo, got %s then %s", hs[0].LocationName, hs[1].LocationName)
	}
	if hs[0].Latitude != "48.85" || hs[0].Longitude != "2.35" {
		t.Errorf("Expected first resolved coordinates, got %s,%s", hs[0].Latitude, hs[0].Longitude)
	}
	if hs[0].Total != 3 {
		t.Errorf("Expected total 3 including unresolved record, got %d", hs[0].Total)
	}
	if hs[0].Dominant != models.CategorySports {
		t.Errorf("Expected sports dominant, got %s", hs[0].Dominant)
	}
	if hs[0].Counts[models.CategorySports] != 2 || hs[0].Counts[models.CategoryHealth] != 1 {
		t.Errorf("Unexpected per-category counts %v", hs[0].Counts)
	}
	if hs[0].Style.Size != 15 {
		t.Errorf("Expected size 15, got %d", hs[0].Style.Size)
	}
}

func TestHotspotsEmpty(t *testing.T) {
	if hs := Hotspots(nil); len(hs) != 0 {
		t.Errorf("Expected no hotspots, got %d", len(hs))
	}
}
