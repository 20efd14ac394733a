package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/nitesh/newsmap/internal/client"
	"github.com/nitesh/newsmap/internal/geocode"
	"github.com/nitesh/newsmap/internal/logging"
)

type globalOptions struct {
	API           string `long:"api" env:"NEWSMAP_API" default:"http://localhost:3000" description:"newsmap API base URL"`
	PublicURL     string `long:"public-url" env:"PUBLIC_URL" default:"http://localhost:3000" description:"Base URL for shareable links"`
	GeoapifyToken string `long:"geoapify-token" env:"GEOAPIFY_TOKEN" description:"Geoapify API key for location suggestions"`
	GeoapifyURL   string `long:"geoapify-url" env:"GEOAPIFY_URL" description:"Override the autocomplete endpoint"`
	JawgToken     string `long:"jawg-token" env:"JAWG_TOKEN" description:"Jawg Maps access token for tile URLs"`
	LogLevel      string `long:"log-level" env:"LOG_LEVEL" default:"warn" description:"Log level"`
}

var (
	opts   globalOptions
	stdout io.Writer = os.Stdout
)

func newParser() *flags.Parser {
	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		logging.Init(logging.Config{Level: opts.LogLevel, Format: "console"})
		if cmd == nil {
			return nil
		}
		return cmd.Execute(args)
	}
	p.AddCommand("submit", "Submit a news article", "Geocodes and stores an article, printing its shareable link.", &submitCommand{})
	p.AddCommand("get", "Show a record's metadata", "Looks up a record by its code.", &getCommand{})
	p.AddCommand("list", "List records", "Lists records newest first, optionally filtered by category.", &listCommand{})
	p.AddCommand("hotspots", "Show map markers", "Aggregates records per location into sized, colored markers.", &hotspotsCommand{})
	p.AddCommand("focus", "Focus the map on a record", "Prints the camera target and detail panel for a selected record.", &focusCommand{})
	p.AddCommand("suggest", "Suggest locations", "Queries the location autocomplete service.", &suggestCommand{})
	p.AddCommand("tile", "Print a map tile URL", "Expands the tile URL template for z/x/y.", &tileCommand{})
	return p
}

func main() {
	if _, err := newParser().Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}

func apiClient() *client.Client {
	return client.New(opts.API, nil)
}

// suggester returns nil when no Geoapify key is configured.
func suggester() geocode.Suggester {
	if opts.GeoapifyToken == "" {
		return nil
	}
	return geocode.NewAutocompleteClient(opts.GeoapifyURL, opts.GeoapifyToken, nil)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
