package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jessevdk/go-flags"

	"github.com/nitesh/newsmap/internal/api"
	"github.com/nitesh/newsmap/internal/cache"
	"github.com/nitesh/newsmap/internal/config"
	"github.com/nitesh/newsmap/internal/geocode"
	"github.com/nitesh/newsmap/internal/logging"
	"github.com/nitesh/newsmap/internal/service"
	"github.com/nitesh/newsmap/internal/store"
)

func main() {
	cfg, ok := loadConfig(os.Args[1:])
	if !ok {
		os.Exit(1)
	}
	if cfg == nil {
		return
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, repo, err := openStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Could not open record store")
	}
	defer db.Close()

	version, err := store.RunMigrations(db, cfg.DBDriver)
	if err != nil {
		logging.Fatal().Err(err).Msg("Migrations failed")
	}
	logging.Info().Uint("schema_version", version).Str("driver", cfg.DBDriver).Msg("Record store ready")

	// A nil *RedisCache must not reach the service as a non-nil interface.
	var svcCache service.Cache
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rc, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.CacheTTL)
		cancel()
		if err != nil {
			logging.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, running without cache")
		} else {
			defer rc.Close()
			svcCache = rc
			logging.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CacheTTL).Msg("Redis cache enabled")
		}
	}

	nominatim := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.GeocoderRate,
		&http.Client{Timeout: cfg.GeocoderTimeout})
	geocoder := geocode.NewBreakerGeocoder(nominatim, geocode.BreakerSettings{})

	svc := service.NewService(repo, svcCache, geocoder)
	handler := api.NewHandler(svc, cfg.PublicURL)

	gin.SetMode(gin.ReleaseMode)
	router := api.NewServer(handler, api.ServerOptions{CORSOrigin: cfg.CORSOrigin})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  api.ReadTimeout,
		WriteTimeout: api.WriteTimeout,
		IdleTimeout:  api.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("port", cfg.Port).Msg("Listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-serverErr:
		logging.Error().Err(err).Msg("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}
	logging.Info().Msg("Shutdown complete")
}

func openStore(cfg *config.Config) (*sql.DB, service.RecordStore, error) {
	switch cfg.DBDriver {
	case store.DriverSQLite:
		db, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, store.NewSQLiteStore(db), nil
	default:
		db, err := store.OpenPostgres(cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		// The database may still be starting when run under compose.
		for i := 0; i < 10; i++ {
			if err = db.Ping(); err == nil {
				break
			}
			logging.Warn().Err(err).Int("attempt", i+1).Msg("Waiting for database")
			time.Sleep(2 * time.Second)
		}
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, store.NewPgStore(db), nil
	}
}

// loadConfig parses args and reports whether startup may continue. A nil
// config with ok set means help was printed. go-flags prints its own parse
// errors, so only validation failures are logged here.
func loadConfig(args []string) (*config.Config, bool) {
	cfg, err := config.Load(args)
	if err != nil {
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) {
			logging.Error().Err(err).Msg("Invalid configuration")
		}
		return nil, false
	}
	return cfg, true
}
