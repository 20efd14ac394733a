package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// geocodeSamples returns the number of observations in GeocodeDuration.
func geocodeSamples(t *testing.T) uint64 {
	t.Helper()
	var m dto.Metric
	if err := GeocodeDuration.Write(&m); err != nil {
		t.Fatalf("read histogram: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/data/:code", "404")
	before := testutil.ToFloat64(c)

	RecordAPIRequest("GET", "/data/:code", "404", 3*time.Millisecond)

	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("Expected counter %v, got %v", before+1, got)
	}
}

func TestRecordGeocode(t *testing.T) {
	c := GeocodeRequests.WithLabelValues("no_match")
	before := testutil.ToFloat64(c)

	RecordGeocode("no_match", 120*time.Millisecond)
	RecordGeocode("no_match", 80*time.Millisecond)

	if got := testutil.ToFloat64(c); got != before+2 {
		t.Errorf("Expected counter %v, got %v", before+2, got)
	}
}

func TestRecordGeocodeRejectedSkipsLatency(t *testing.T) {
	c := GeocodeRequests.WithLabelValues("rejected")
	before := testutil.ToFloat64(c)
	samples := geocodeSamples(t)

	RecordGeocodeRejected()

	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("Expected counter %v, got %v", before+1, got)
	}
	if got := geocodeSamples(t); got != samples {
		t.Errorf("Expected %d latency samples, got %d", samples, got)
	}
}

func TestRecordCreated(t *testing.T) {
	yes := RecordsCreated.WithLabelValues("true")
	no := RecordsCreated.WithLabelValues("false")
	y0, n0 := testutil.ToFloat64(yes), testutil.ToFloat64(no)

	RecordCreated(true)
	RecordCreated(false)
	RecordCreated(false)

	if got := testutil.ToFloat64(yes); got != y0+1 {
		t.Errorf("Expected geocoded=true %v, got %v", y0+1, got)
	}
	if got := testutil.ToFloat64(no); got != n0+2 {
		t.Errorf("Expected geocoded=false %v, got %v", n0+2, got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	c := CacheLookups.WithLabelValues("list", "hit")
	before := testutil.ToFloat64(c)
	RecordCacheLookup("list", "hit")
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("Expected counter %v, got %v", before+1, got)
	}
}
