package geocode

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/nitesh/newsmap/internal/logging"
	"github.com/nitesh/newsmap/internal/metrics"
)

// BreakerGeocoder stops calling the upstream geocoder after repeated
// failures, failing submissions fast until the half-open probe succeeds.
type BreakerGeocoder struct {
	next Geocoder
	cb   *gobreaker.CircuitBreaker[[]Place]
}

// BreakerSettings tunes the breaker. Zero values fall back to defaults.
type BreakerSettings struct {
	// ConsecutiveFailures that open the circuit. Default 5.
	ConsecutiveFailures uint32
	// OpenTimeout before a half-open probe is allowed. Default 30s.
	OpenTimeout time.Duration
}

// NewBreakerGeocoder wraps next.
func NewBreakerGeocoder(next Geocoder, s BreakerSettings) *BreakerGeocoder {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.OpenTimeout == 0 {
		s.OpenTimeout = 30 * time.Second
	}
	const name = "geocoder"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]Place](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		// A caller giving up is not an upstream failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	return &BreakerGeocoder{next: next, cb: cb}
}

// Search runs next.Search under the breaker.
func (b *BreakerGeocoder) Search(ctx context.Context, query string) ([]Place, error) {
	places, err := b.cb.Execute(func() ([]Place, error) {
		return b.next.Search(ctx, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordGeocodeRejected()
	}
	return places, err
}

// ErrBreakerOpen is reported by Check while lookups are being refused.
var ErrBreakerOpen = errors.New("geocoder circuit breaker open")

// State returns the current breaker state.
func (b *BreakerGeocoder) State() gobreaker.State {
	return b.cb.State()
}

// Check reports ErrBreakerOpen while the circuit is open. A half-open
// breaker is admitting a trial lookup and counts as healthy.
func (b *BreakerGeocoder) Check(ctx context.Context) error {
	if b.State() == gobreaker.StateOpen {
		return ErrBreakerOpen
	}
	return nil
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
