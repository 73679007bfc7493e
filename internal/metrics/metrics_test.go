package metrics

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func scrape(r *Registry) string {
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	return rec.Body.String()
}

func TestRegistryCounters(t *testing.T) {
	r := NewRegistry()
	r.ObserveLookup("found", "ready", false)
	r.ObserveLookup("found", "", true)
	r.ObserveLookup("not_found", "", false)
	r.ObserveFetch("csv", time.Now(), errors.New("boom"))
	r.SetCachedRows(3)

	body := scrape(r)
	assert.Contains(t, body, `order_tracker_lookups_total{forced="false",outcome="found"} 1`)
	assert.Contains(t, body, `order_tracker_lookups_total{forced="true",outcome="found"} 1`)
	assert.Contains(t, body, `order_tracker_pricing_total{outcome="ready"} 1`)
	assert.Contains(t, body, `order_tracker_fetch_errors_total{source="csv"} 1`)
	assert.Contains(t, body, `order_tracker_fetch_duration_seconds_count{source="csv"} 1`)
	assert.Contains(t, body, "order_tracker_cached_rows 3")
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.ObserveLookup("found", "ready", false)
		r.ObserveFetch("csv", time.Now(), nil)
		r.SetCachedRows(1)
		r.ObserveBackupRequest("link")
	})
}
