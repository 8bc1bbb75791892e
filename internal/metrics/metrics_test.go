package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/skyrender/pkg/observability"
)

func TestNewRegistersAllCollectors(t *testing.T) {
	m := New()

	// Vectors only appear once a label set is used.
	m.StageDuration.WithLabelValues("ingest", "success")
	m.StarsTotal.WithLabelValues("bright")
	m.ShardsTotal.WithLabelValues("fetched")
	m.RowsTotal.WithLabelValues("kept")
	m.CacheLookups.WithLabelValues("hit")
	m.HTTPRequests.WithLabelValues("example.org", "2xx")

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.Len(t, families, 10)
	for _, f := range families {
		assert.True(t, strings.HasPrefix(f.GetName(), "skyrender_"), f.GetName())
	}
}

func TestIngestHooks(t *testing.T) {
	m := New()
	h := ingestHooks{m}
	ctx := context.Background()

	h.OnShardComplete(ctx, "a.csv.gz", 100, 3, time.Second, nil)
	h.OnShardComplete(ctx, "b.csv.gz", 50, 0, time.Second, nil)
	h.OnShardComplete(ctx, "c.csv.gz", 0, 0, time.Second, errors.New("boom"))
	h.OnShardRetry(ctx, "c.csv.gz", 1, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShardsTotal.WithLabelValues("fetched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ShardsTotal.WithLabelValues("failed")))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.RowsTotal.WithLabelValues("kept")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsTotal.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ShardRetries))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ShardDuration))
}

func TestCacheHooks(t *testing.T) {
	m := New()
	h := cacheHooks{m}
	ctx := context.Background()

	h.OnCacheHit(ctx, "a")
	h.OnCacheMiss(ctx, "b")
	h.OnCacheMiss(ctx, "c")
	h.OnCacheSet(ctx, "b", 1600)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1600.0, testutil.ToFloat64(m.CacheBytesSaved))
}

func TestPipelineHooks(t *testing.T) {
	m := New()
	h := pipelineHooks{m}
	ctx := context.Background()

	h.OnStageStart(ctx, "render")
	h.OnStageComplete(ctx, "render", time.Millisecond, nil)
	h.OnStageComplete(ctx, "ingest", time.Millisecond, errors.New("failed"))
	h.OnStarsAccumulated(ctx, 1000, 7)

	assert.Equal(t, 1000.0, testutil.ToFloat64(m.StarsTotal.WithLabelValues("rasterized")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.StarsTotal.WithLabelValues("bright")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.StageDuration))
}

func TestHTTPHooks(t *testing.T) {
	m := New()
	h := httpHooks{m}
	ctx := context.Background()

	h.OnRequest(ctx, "GET", "cdn.example", "/x")
	h.OnResponse(ctx, "GET", "cdn.example", "/x", 200, time.Millisecond)
	h.OnResponse(ctx, "GET", "cdn.example", "/y", 503, time.Millisecond)
	h.OnError(ctx, "GET", "cdn.example", "/z", errors.New("reset"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("cdn.example", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("cdn.example", "5xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("cdn.example", "error")))
}

func TestStatusLabel(t *testing.T) {
	tests := map[int]string{200: "2xx", 206: "2xx", 304: "3xx", 404: "4xx", 429: "4xx", 500: "5xx", 503: "5xx"}
	for code, want := range tests {
		assert.Equal(t, want, statusLabel(code), "code %d", code)
	}
}

func TestInstall(t *testing.T) {
	t.Cleanup(observability.Reset)

	m := New()
	m.Install()

	observability.Cache().OnCacheHit(context.Background(), "a")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.ShardRetries.Add(2)

	path := filepath.Join(t.TempDir(), "skyrender.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "skyrender_shard_retries_total 2")
}
