package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Config holds the server configuration, settable by flag or environment variable.
type Config struct {
	Port string `long:"port" env:"PORT" default:"3000" description:"HTTP server port"`

	// Database configuration
	DBDriver   string `long:"db-driver" env:"DB_DRIVER" default:"postgres" choice:"postgres" choice:"sqlite" description:"Record store backend"`
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"newsmap" description:"Database name"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"newsmap" description:"Database user"`
	DBPass     string `long:"db-pass" env:"DB_PASS" default:"newsmap" description:"Database password"`
	SQLitePath string `long:"sqlite-path" env:"SQLITE_PATH" default:"newsmap.db" description:"SQLite file used when db-driver=sqlite"`

	// Cache configuration
	RedisAddr string        `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address; empty disables the cache"`
	CacheTTL  time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"10m" description:"Cache entry lifetime"`

	// Geocoder configuration
	GeocoderURL       string        `long:"geocoder-url" env:"GEOCODER_URL" default:"https://nominatim.openstreetmap.org" description:"Nominatim-compatible geocoder base URL"`
	GeocoderUserAgent string        `long:"geocoder-user-agent" env:"GEOCODER_USER_AGENT" default:"newsmap/1.0" description:"User-Agent sent to the geocoder"`
	GeocoderTimeout   time.Duration `long:"geocoder-timeout" env:"GEOCODER_TIMEOUT" default:"10s" description:"Per-request geocoder timeout"`
	GeocoderRate      float64       `long:"geocoder-rate" env:"GEOCODER_RATE" default:"1" description:"Maximum geocoder requests per second"`

	// HTTP surface
	CORSOrigin string `long:"cors-origin" env:"CORS_ORIGIN" default:"*" description:"Access-Control-Allow-Origin value"`
	PublicURL  string `long:"public-url" env:"PUBLIC_URL" default:"http://localhost:3000" description:"Public base URL used in shareable links"`

	LogLevel  string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"Log level"`
	LogFormat string `long:"log-format" env:"LOG_FORMAT" default:"json" choice:"json" choice:"console" description:"Log format"`
}

// Load parses args (normally os.Args[1:]) and the environment.
// It returns nil, nil when help was requested.
func Load(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values go-flags cannot.
func (c *Config) Validate() error {
	if c.GeocoderRate <= 0 {
		return fmt.Errorf("geocoder-rate must be positive, got %v", c.GeocoderRate)
	}
	if c.GeocoderTimeout <= 0 {
		return fmt.Errorf("geocoder-timeout must be positive, got %v", c.GeocoderTimeout)
	}
	if _, err := url.ParseRequestURI(c.GeocoderURL); err != nil {
		return fmt.Errorf("invalid geocoder-url: %w", err)
	}
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")
	return nil
}

// PostgresDSN builds the lib/pq connection URL.
func (c *Config) PostgresDSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPass),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}
