package models

import (
	"strings"
	"time"
)

// Category is the closed set of news categories a record can be tagged with.
type Category string

const (
	CategoryAll           Category = "all"
	CategoryBusiness      Category = "business"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
	CategorySports        Category = "sports"
	CategoryTechnology    Category = "technology"
)

// Categories lists the taggable categories in display order. CategoryAll is
// a filter value only and is not part of the list.
var Categories = []Category{
	CategoryBusiness,
	CategoryEntertainment,
	CategoryHealth,
	CategoryScience,
	CategorySports,
	CategoryTechnology,
}

// DefaultCategory is preselected on the submission form.
const DefaultCategory = CategoryBusiness

// Valid reports whether c is one of the taggable categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// IsFilter reports whether c restricts a listing. Empty and "all" do not.
func (c Category) IsFilter() bool {
	return c != "" && c != CategoryAll
}

// ParseCategory normalises user input; unknown values are returned as-is.
func ParseCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

// Metadata is the article document attached to a record.
type Metadata struct {
	NewsURL      string   `json:"newsUrl"`
	MapURL       string   `json:"mapUrl,omitempty"`
	Latitude     string   `json:"latitude,omitempty"`
	Longitude    string   `json:"longitude,omitempty"`
	LocationName string   `json:"locationName"`
	Category     Category `json:"category"`
}

// HasCoordinates reports whether the location was resolved by the geocoder.
// Records without coordinates are kept in listings but never drawn on the map.
func (m Metadata) HasCoordinates() bool {
	return m.Latitude != "" && m.Longitude != ""
}

// Record is one submitted news tag.
type Record struct {
	Code      string    `json:"uniqueCode"`
	Metadata  Metadata  `json:"metaData"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submission is the body of POST /data/{code}.
type Submission struct {
	NewsURL  string   `json:"newsUrl"`
	Location string   `json:"location"`
	Category Category `json:"category"`
}
