package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"sports", CategorySports},
		{" Sports ", CategorySports},
		{"ALL", CategoryAll},
		{"", ""},
		{"weather", "weather"},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestCategoryValidAndFilter(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() || !c.IsFilter() {
			t.Errorf("%s: expected valid filter", c)
		}
	}
	if CategoryAll.Valid() {
		t.Error("Expected 'all' to be a filter value only")
	}
	if CategoryAll.IsFilter() || Category("").IsFilter() {
		t.Error("Expected 'all' and empty to mean no filter")
	}
	if Category("weather").Valid() {
		t.Error("Expected unknown category to be invalid")
	}
	if DefaultCategory != Categories[0] {
		t.Errorf("Expected default to be the first category, got %s", DefaultCategory)
	}
}

func TestHasCoordinates(t *testing.T) {
	if (Metadata{Latitude: "1"}).HasCoordinates() {
		t.Error("Expected latitude alone to be insufficient")
	}
	if !(Metadata{Latitude: "1", Longitude: "2"}).HasCoordinates() {
		t.Error("Expected coordinates")
	}
}

func TestRecordJSONFieldNames(t *testing.T) {
	rec := Record{Code: "abc123", Metadata: Metadata{NewsURL: "https://a.com", LocationName: "Paris", Category: CategorySports}}
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"uniqueCode":"abc123"`, `"metaData":`, `"newsUrl":"https://a.com"`, `"locationName":"Paris"`} {
		if !strings.Contains(s, want) {
			t.Errorf("Expected %s in %s", want, s)
		}
	}
	for _, absent := range []string{"latitude", "longitude", "mapUrl"} {
		if strings.Contains(s, absent) {
			t.Errorf("Expected %s omitted for unresolved record, got %s", absent, s)
		}
	}
}
