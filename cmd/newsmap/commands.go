package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nitesh/newsmap/internal/client"
	"github.com/nitesh/newsmap/internal/hotspot"
	"github.com/nitesh/newsmap/internal/mapview"
	"github.com/nitesh/newsmap/internal/portal"
	"github.com/nitesh/newsmap/pkg/models"
)

const requestTimeout = 30 * time.Second

type submitCommand struct {
	URL      string `long:"url" required:"yes" description:"Article URL"`
	Location string `long:"location" required:"yes" description:"Where the story happened"`
	Category string `long:"category" default:"business" description:"business, entertainment, health, science, sports or technology"`
	Suggest  bool   `long:"suggest" description:"Replace the location with the first autocomplete suggestion"`
}

func (c *submitCommand) Execute(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	form := portal.NewForm(apiClient(), suggester(), opts.PublicURL)
	form.SetNewsURL(c.URL)
	form.SetCategory(models.ParseCategory(c.Category))
	// Suggestions only matter with --suggest; the form logs failures.
	if err := form.SetLocation(ctx, c.Location); err != nil && c.Suggest {
		return err
	}
	if c.Suggest {
		if s := form.State().Suggestions; len(s) > 0 {
			form.Select(s[0])
		}
	}

	link, err := form.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, link)
	return nil
}

type getCommand struct {
	Args struct {
		Code string `positional-arg-name:"code"`
	} `positional-args:"yes" required:"yes"`
}

func (c *getCommand) Execute(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	md, err := apiClient().Get(ctx, c.Args.Code)
	if err != nil {
		return err
	}
	return printJSON(md)
}

type listCommand struct {
	Category string `long:"category" default:"all" description:"Category filter"`
}

func (c *listCommand) Execute(args []string) error {
	recs, err := fetchRecords(models.ParseCategory(c.Category))
	if err != nil {
		return err
	}
	return printJSON(recs)
}

type hotspotsCommand struct {
	Category string `long:"category" default:"all" description:"Category filter"`
	Server   bool   `long:"server" description:"Use the server's aggregation instead of computing locally"`
}

func (c *hotspotsCommand) Execute(args []string) error {
	cat := models.ParseCategory(c.Category)
	if c.Server {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		hs, err := apiClient().Hotspots(ctx, cat)
		if err != nil {
			return err
		}
		return printJSON(hs)
	}
	recs, err := fetchRecords(cat)
	if err != nil {
		return err
	}
	return printJSON(hotspot.Hotspots(recs))
}

type focusCommand struct {
	Category string `long:"category" default:"all" description:"Category filter"`
	Width    int    `long:"width" default:"1280" description:"Viewport width in pixels"`
	Args     struct {
		Index int `positional-arg-name:"index"`
	} `positional-args:"yes" required:"yes"`
}

type focusOutput struct {
	Target  mapview.LatLng   `json:"target"`
	Zoom    float64          `json:"zoom"`
	Marker  mapview.Marker   `json:"marker"`
	Records []*models.Record `json:"records"`
}

func (c *focusCommand) Execute(args []string) error {
	view := mapview.NewView(c.Width, nil)
	gen := view.SetCategory(models.ParseCategory(c.Category))
	recs, err := fetchRecords(view.Category())
	if err != nil {
		return err
	}
	view.ApplyRecords(gen, recs)

	if err := view.Select(c.Args.Index); err != nil {
		return fmt.Errorf("record %d: %w", c.Args.Index, err)
	}
	target, zoom := view.Camera().Target()
	out := focusOutput{Target: target, Zoom: zoom, Records: view.DetailPanel()}
	for _, m := range view.Markers() {
		if m.Index == c.Args.Index {
			out.Marker = m
		}
	}
	return printJSON(out)
}

type suggestCommand struct {
	Args struct {
		Text string `positional-arg-name:"text"`
	} `positional-args:"yes" required:"yes"`
}

func (c *suggestCommand) Execute(args []string) error {
	s := suggester()
	if s == nil {
		return errors.New("suggestions need --geoapify-token or GEOAPIFY_TOKEN")
	}
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	form := portal.NewForm(apiClient(), s, opts.PublicURL)
	if err := form.SetLocation(ctx, c.Args.Text); err != nil {
		return err
	}
	for _, line := range form.State().Suggestions {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

type tileCommand struct {
	Retina   bool   `long:"retina" description:"Request @2x tiles"`
	Template string `long:"template" description:"Tile URL template with {z} {x} {y} {r} {token}"`
	Args     struct {
		Z int `positional-arg-name:"z"`
		X int `positional-arg-name:"x"`
		Y int `positional-arg-name:"y"`
	} `positional-args:"yes" required:"yes"`
}

func (c *tileCommand) Execute(args []string) error {
	t := mapview.Tiles{Template: c.Template, Token: opts.JawgToken, Retina: c.Retina}
	fmt.Fprintln(stdout, t.URL(c.Args.Z, c.Args.X, c.Args.Y))
	return nil
}

// fetchRecords treats an empty listing as no records rather than an error.
func fetchRecords(cat models.Category) ([]*models.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	recs, err := apiClient().List(ctx, cat)
	if errors.Is(err, client.ErrNoData) {
		return []*models.Record{}, nil
	}
	return recs, err
}
