package geocode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/nitesh/newsmap/internal/metrics"
)

type stubGeocoder struct {
	calls  int
	err    error
	places []Place
}

func (s *stubGeocoder) Search(ctx context.Context, query string) ([]Place, error) {
	s.calls++
	return s.places, s.err
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubGeocoder{err: errors.New("connection refused")}
	b := NewBreakerGeocoder(stub, BreakerSettings{ConsecutiveFailures: 3, OpenTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := b.Search(context.Background(), "x"); err == nil {
			t.Fatalf("Call %d: expected upstream error", i)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("Expected open breaker, got %v", b.State())
	}
	if err := b.Check(context.Background()); !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("Expected ErrBreakerOpen from Check, got %v", err)
	}

	_, err := b.Search(context.Background(), "x")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("Expected upstream not called while open, got %d calls", stub.calls)
	}
}

func TestBreakerPassesResults(t *testing.T) {
	stub := &stubGeocoder{places: []Place{{Lat: "1", Lon: "2"}}}
	b := NewBreakerGeocoder(stub, BreakerSettings{})

	places, err := b.Search(context.Background(), "x")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(places) != 1 || places[0].Lat != "1" {
		t.Errorf("Expected passthrough result, got %+v", places)
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("Expected closed breaker, got %v", b.State())
	}
	if err := b.Check(context.Background()); err != nil {
		t.Errorf("Expected healthy closed breaker, got %v", err)
	}
}

func TestBreakerRejectionCountsWithoutLatency(t *testing.T) {
	stub := &stubGeocoder{err: errors.New("connection refused")}
	b := NewBreakerGeocoder(stub, BreakerSettings{ConsecutiveFailures: 1, OpenTimeout: time.Hour})
	_, _ = b.Search(context.Background(), "x")

	rejected := metrics.GeocodeRequests.WithLabelValues("rejected")
	before := testutil.ToFloat64(rejected)
	samples := histogramSamples(t)

	if _, err := b.Search(context.Background(), "x"); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Expected ErrOpenState, got %v", err)
	}
	if got := testutil.ToFloat64(rejected); got != before+1 {
		t.Errorf("Expected rejected counter %v, got %v", before+1, got)
	}
	if got := histogramSamples(t); got != samples {
		t.Errorf("Expected latency histogram unchanged at %d samples, got %d", samples, got)
	}
}

func histogramSamples(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.GeocodeDuration.Write(&m); err != nil {
		t.Fatalf("read histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestBreakerIgnoresCancellation(t *testing.T) {
	stub := &stubGeocoder{err: context.Canceled}
	b := NewBreakerGeocoder(stub, BreakerSettings{ConsecutiveFailures: 1, OpenTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		_, _ = b.Search(context.Background(), "x")
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("Expected cancellations not to open the breaker, got %v", b.State())
	}
}
