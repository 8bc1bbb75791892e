// Package metrics implements the observability hooks with Prometheus
// collectors and exports them as a node_exporter textfile.
//
// A render is a short batch job, so nothing is served over HTTP: the
// collectors live on a private registry and are written once at the end
// of the run with [Metrics.WriteTextfile].
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/skyrender/pkg/observability"
)

const namespace = "skyrender"

// Metrics holds the Prometheus counters and histograms for a run.
type Metrics struct {
	registry *prometheus.Registry

	// Stage metrics.
	StageDuration *prometheus.HistogramVec // labels: stage, outcome={success,error}
	StarsTotal    *prometheus.CounterVec   // labels: kind={rasterized,bright}

	// Ingest metrics.
	ShardsTotal   *prometheus.CounterVec // labels: outcome={fetched,failed}
	ShardDuration prometheus.Histogram
	ShardRetries  prometheus.Counter
	RowsTotal     *prometheus.CounterVec // labels: result={kept,dropped}

	// Cache metrics.
	CacheLookups    *prometheus.CounterVec // labels: result={hit,miss}
	CacheBytesSaved prometheus.Counter

	// HTTP metrics.
	HTTPRequests *prometheus.CounterVec // labels: host, status
	HTTPDuration prometheus.Histogram
}

// New creates all collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of a pipeline stage.",
			Buckets:   []float64{0.01, 0.1, 1, 10, 60, 300, 1800, 3600, 14400},
		}, []string{"stage", "outcome"}),
		StarsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stars_total",
			Help:      "Stars accumulated into the cubemap or diverted to the bright star list.",
		}, []string{"kind"}),
		ShardsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shards_total",
			Help:      "Shards downloaded by outcome.",
		}, []string{"outcome"}),
		ShardDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "shard_duration_seconds",
			Help:      "Time to download, verify, decode and store one shard.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}),
		ShardRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shard_retries_total",
			Help:      "Shard download attempts that were retried.",
		}),
		RowsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Catalog rows decoded by result.",
		}, []string{"result"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Shard cache lookups by result.",
		}, []string{"result"}),
		CacheBytesSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the shard cache.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by host and status.",
		}, []string{"host", "status"}),
		HTTPDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_duration_seconds",
			Help:      "Time to response headers.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}

	m.registry.MustRegister(
		m.StageDuration,
		m.StarsTotal,
		m.ShardsTotal,
		m.ShardDuration,
		m.ShardRetries,
		m.RowsTotal,
		m.CacheLookups,
		m.CacheBytesSaved,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// Registry returns the private registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Install makes m the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(pipelineHooks{m})
	observability.SetIngestHooks(ingestHooks{m})
	observability.SetCacheHooks(cacheHooks{m})
	observability.SetHTTPHooks(httpHooks{m})
}

// WriteTextfile writes all metrics in the Prometheus text format. The
// file is written to a temporary name and renamed, as the textfile
// collector expects.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

type pipelineHooks struct{ m *Metrics }

func (h pipelineHooks) OnStageStart(context.Context, string) {}

func (h pipelineHooks) OnStageComplete(_ context.Context, stage string, d time.Duration, err error) {
	h.m.StageDuration.WithLabelValues(stage, outcome(err)).Observe(d.Seconds())
}

func (h pipelineHooks) OnStarsAccumulated(_ context.Context, rasterized, bright int) {
	h.m.StarsTotal.WithLabelValues("rasterized").Add(float64(rasterized))
	h.m.StarsTotal.WithLabelValues("bright").Add(float64(bright))
}

type ingestHooks struct{ m *Metrics }

func (h ingestHooks) OnShardComplete(_ context.Context, _ string, records, dropped int, d time.Duration, err error) {
	if err != nil {
		h.m.ShardsTotal.WithLabelValues("failed").Inc()
		return
	}
	h.m.ShardsTotal.WithLabelValues("fetched").Inc()
	h.m.ShardDuration.Observe(d.Seconds())
	h.m.RowsTotal.WithLabelValues("kept").Add(float64(records))
	h.m.RowsTotal.WithLabelValues("dropped").Add(float64(dropped))
}

func (h ingestHooks) OnShardRetry(context.Context, string, int, error) {
	h.m.ShardRetries.Inc()
}

type cacheHooks struct{ m *Metrics }

func (h cacheHooks) OnCacheHit(context.Context, string) {
	h.m.CacheLookups.WithLabelValues("hit").Inc()
}

func (h cacheHooks) OnCacheMiss(context.Context, string) {
	h.m.CacheLookups.WithLabelValues("miss").Inc()
}

func (h cacheHooks) OnCacheSet(_ context.Context, _ string, size int) {
	h.m.CacheBytesSaved.Add(float64(size))
}

type httpHooks struct{ m *Metrics }

func (h httpHooks) OnRequest(context.Context, string, string, string) {}

func (h httpHooks) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	h.m.HTTPRequests.WithLabelValues(host, statusLabel(status)).Inc()
	h.m.HTTPDuration.Observe(d.Seconds())
}

func (h httpHooks) OnError(_ context.Context, _, host, _ string, _ error) {
	h.m.HTTPRequests.WithLabelValues(host, "error").Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
