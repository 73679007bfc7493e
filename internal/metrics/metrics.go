package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg            *prometheus.Registry
	Lookups        *prometheus.CounterVec
	PricingResults *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	FetchErrors    *prometheus.CounterVec
	CachedRows     prometheus.Gauge
	BackupRequests *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_tracker_lookups_total",
		Help: "Order lookups by outcome.",
	}, []string{"outcome", "forced"})
	pricing := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_tracker_pricing_total",
		Help: "Pricing results of decoded lookups.",
	}, []string{"outcome"})
	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_tracker_fetch_duration_seconds",
		Help:    "Upstream fetch latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	fetchErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_tracker_fetch_errors_total",
		Help: "Failed upstream fetches.",
	}, []string{"source"})
	cachedRows := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "order_tracker_cached_rows",
		Help: "Data rows in the cached sheet.",
	})
	backups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_tracker_backup_requests_total",
		Help: "Backup requests by delivery channel.",
	}, []string{"channel"})

	r.MustRegister(lookups, pricing, fetchDuration, fetchErrors, cachedRows, backups)
	return &Registry{
		reg:            r,
		Lookups:        lookups,
		PricingResults: pricing,
		FetchDuration:  fetchDuration,
		FetchErrors:    fetchErrors,
		CachedRows:     cachedRows,
		BackupRequests: backups,
	}
}

// ObserveFetch records one upstream call. Safe on a nil registry.
func (r *Registry) ObserveFetch(source string, started time.Time, err error) {
	if r == nil {
		return
	}
	r.FetchDuration.WithLabelValues(source).Observe(time.Since(started).Seconds())
	if err != nil {
		r.FetchErrors.WithLabelValues(source).Inc()
	}
}

func (r *Registry) ObserveLookup(outcome, pricingOutcome string, forced bool) {
	if r == nil {
		return
	}
	f := "false"
	if forced {
		f = "true"
	}
	r.Lookups.WithLabelValues(outcome, f).Inc()
	if pricingOutcome != "" {
		r.PricingResults.WithLabelValues(pricingOutcome).Inc()
	}
}

func (r *Registry) SetCachedRows(n int) {
	if r == nil {
		return
	}
	r.CachedRows.Set(float64(n))
}

func (r *Registry) ObserveBackupRequest(channel string) {
	if r == nil {
		return
	}
	r.BackupRequests.WithLabelValues(channel).Inc()
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
