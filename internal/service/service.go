package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nitesh/newsmap/internal/geocode"
	"github.com/nitesh/newsmap/internal/hotspot"
	"github.com/nitesh/newsmap/internal/logging"
	"github.com/nitesh/newsmap/internal/metrics"
	"github.com/nitesh/newsmap/internal/store"
	"github.com/nitesh/newsmap/pkg/models"
)

var (
	ErrNotFound      = store.ErrNotFound
	ErrDuplicateCode = store.ErrDuplicateCode
	// ErrNoData is returned by listings with an empty result. It is not a failure.
	ErrNoData = errors.New("no records match")
	// ErrEmptyCode is returned by Submit when the code is blank.
	ErrEmptyCode = errors.New("record code is empty")
)

type RecordStore interface {
	Insert(ctx context.Context, rec *models.Record) error
	GetByCode(ctx context.Context, code string) (*models.Record, error)
	List(ctx context.Context, category models.Category) ([]*models.Record, error)
	Ping(ctx context.Context) error
}

// healthChecker is implemented by geocoders that can report readiness
// without issuing a lookup.
type healthChecker interface {
	Check(ctx context.Context) error
}

// Cache is an optional read-through layer in front of the store.
type Cache interface {
	GetRecord(ctx context.Context, code string) (*models.Record, bool, error)
	SetRecord(ctx context.Context, rec *models.Record) error
	GetList(ctx context.Context, category models.Category) ([]*models.Record, int64, bool, error)
	SetList(ctx context.Context, gen int64, category models.Category, recs []*models.Record) error
	InvalidateLists(ctx context.Context) error
	Ping(ctx context.Context) error
}

type Service struct {
	repo     RecordStore
	cache    Cache
	geocoder geocode.Geocoder
}

// NewService wires the service. cache may be nil.
func NewService(repo RecordStore, cache Cache, geocoder geocode.Geocoder) *Service {
	return &Service{repo: repo, cache: cache, geocoder: geocoder}
}

// MapURL builds the map link stored alongside resolved coordinates.
func MapURL(lat, lon string) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s", lat, lon)
}

// Submit geocodes the location and stores a new record under code.
// A geocoder failure aborts the submission; a geocoder miss stores the record
// without coordinates.
func (s *Service) Submit(ctx context.Context, code string, sub models.Submission) (*models.Record, error) {
	if strings.TrimSpace(code) == "" {
		return nil, ErrEmptyCode
	}
	log := logging.Ctx(ctx)

	places, err := s.geocoder.Search(ctx, sub.Location)
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", sub.Location, err)
	}

	rec := &models.Record{
		Code: code,
		Metadata: models.Metadata{
			NewsURL:      sub.NewsURL,
			LocationName: sub.Location,
			Category:     sub.Category,
		},
	}
	if len(places) > 0 {
		rec.Metadata.Latitude = places[0].Lat
		rec.Metadata.Longitude = places[0].Lon
		rec.Metadata.MapURL = MapURL(places[0].Lat, places[0].Lon)
	} else {
		log.Warn().Str("code", code).Str("location", sub.Location).
			Msg("No geocoder match; record will not appear on the map")
	}

	if err := s.repo.Insert(ctx, rec); err != nil {
		if errors.Is(err, store.ErrDuplicateCode) {
			return nil, err
		}
		return nil, fmt.Errorf("save record: %w", err)
	}
	metrics.RecordCreated(rec.Metadata.HasCoordinates())

	if s.cache != nil {
		if err := s.cache.InvalidateLists(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate cached listings")
		}
		if err := s.cache.SetRecord(ctx, rec); err != nil {
			log.Warn().Err(err).Str("code", code).Msg("Failed to cache record")
		}
	}

	log.Info().Str("code", code).Str("category", string(rec.Metadata.Category)).
		Bool("geocoded", rec.Metadata.HasCoordinates()).Msg("Record created")
	return rec, nil
}

// GetByCode returns the metadata of the record stored under code.
func (s *Service) GetByCode(ctx context.Context, code string) (*models.Metadata, error) {
	if s.cache != nil {
		rec, ok, err := s.cache.GetRecord(ctx, code)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("record", "error")
			logging.Ctx(ctx).Warn().Err(err).Msg("Record cache lookup failed")
		case ok:
			metrics.RecordCacheLookup("record", "hit")
			return &rec.Metadata, nil
		default:
			metrics.RecordCacheLookup("record", "miss")
		}
	}

	rec, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetRecord(ctx, rec); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to cache record")
		}
	}
	return &rec.Metadata, nil
}

// List returns records newest first, filtered by category unless it is empty
// or "all". An empty result yields ErrNoData.
func (s *Service) List(ctx context.Context, category models.Category) ([]*models.Record, error) {
	// gen is the listing generation observed before the store read; the
	// result is cached under it so an insert racing this read retires it.
	var gen int64
	cacheable := false
	if s.cache != nil {
		recs, g, ok, err := s.cache.GetList(ctx, category)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("list", "error")
			logging.Ctx(ctx).Warn().Err(err).Msg("Listing cache lookup failed")
		case ok && len(recs) > 0:
			metrics.RecordCacheLookup("list", "hit")
			return recs, nil
		default:
			metrics.RecordCacheLookup("list", "miss")
			gen, cacheable = g, true
		}
	}

	recs, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrNoData
	}
	if cacheable {
		if err := s.cache.SetList(ctx, gen, category, recs); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to cache listing")
		}
	}
	return recs, nil
}

// Hotspots returns one marker per geocoded location in the listing.
func (s *Service) Hotspots(ctx context.Context, category models.Category) ([]hotspot.Hotspot, error) {
	recs, err := s.List(ctx, category)
	if err != nil {
		return nil, err
	}
	hs := hotspot.Hotspots(recs)
	if len(hs) == 0 {
		return nil, ErrNoData
	}
	return hs, nil
}

// Health checks the store, the cache when configured, and the geocoder
// when it can report its own state.
func (s *Service) Health(ctx context.Context) map[string]error {
	out := map[string]error{"store": s.repo.Ping(ctx)}
	if s.cache != nil {
		out["cache"] = s.cache.Ping(ctx)
	}
	if hc, ok := s.geocoder.(healthChecker); ok {
		out["geocoder"] = hc.Check(ctx)
	}
	return out
}
