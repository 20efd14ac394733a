package mapview

import (
	"net/url"
	"strconv"
	"strings"
)

const DefaultTileTemplate = "https://tile.jawg.io/jawg-terrain/{z}/{x}/{y}{r}.png?access-token={token}"

// Tiles expands a slippy-map URL template. {r} becomes "@2x" when Retina is set.
type Tiles struct {
	Template string
	Token    string
	Retina   bool
}

func (t Tiles) URL(z, x, y int) string {
	tmpl := t.Template
	if tmpl == "" {
		tmpl = DefaultTileTemplate
	}
	r := ""
	if t.Retina {
		r = "@2x"
	}
	return strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
		"{r}", r,
		"{token}", url.QueryEscape(t.Token),
	).Replace(tmpl)
}

// TileURL expands the default template.
func TileURL(token string, z, x, y int) string {
	return Tiles{Token: token}.URL(z, x, y)
}
