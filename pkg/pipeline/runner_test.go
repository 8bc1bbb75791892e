package pipeline

import (
	"bytes"
	"context"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/skyrender/pkg/cache"
	"github.com/matzehuels/skyrender/pkg/catalog"
	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	"github.com/matzehuels/skyrender/pkg/render"
	"github.com/matzehuels/skyrender/pkg/sky"
)

func row(ra, dec, mag, teff string) string {
	fields := make([]string, catalog.ColTemperature+1)
	fields[catalog.ColRA] = ra
	fields[catalog.ColDec] = dec
	fields[catalog.ColMagnitude] = mag
	fields[catalog.ColTemperature] = teff
	return strings.Join(fields, ",")
}

func gzipShard(t *testing.T, rows ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("# test\nheader\n" + strings.Join(rows, "\n") + "\n"))
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// testEnv serves two shards and prepares options writing into temp dirs.
type testEnv struct {
	opts     Options
	requests *atomic.Int64
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	shards := map[string][]byte{
		"a.csv.gz": gzipShard(t,
			row("0", "0", "0", "5800"),
			row("90", "0", "-12", "9000"), // bright
			row("garbage", "", "", ""),
		),
		"b.csv.gz": gzipShard(t,
			row("180", "45", "6", ""),
			row("10", "-80", "4", "3000"),
		),
	}
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		data, ok := shards[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)

	manifest := filepath.Join(t.TempDir(), "manifest.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("a.csv.gz\nb.csv.gz\n"), 0o644))

	opts := DefaultOptions()
	opts.Resolution = 8
	opts.Workers = 2
	opts.BaseURL = srv.URL
	opts.ManifestPath = manifest
	opts.CacheDir = t.TempDir()
	opts.OutputDir = filepath.Join(t.TempDir(), "out")
	return testEnv{opts: opts, requests: &requests}
}

func TestExecute(t *testing.T) {
	env := newTestEnv(t)
	store, err := cache.NewFileCache(env.opts.CacheDir)
	require.NoError(t, err)
	runner := NewRunner(store, nil)

	result, err := runner.Execute(context.Background(), env.opts)
	require.NoError(t, err)

	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, catalog.SourceFile, result.Manifest)
	assert.Equal(t, 2, result.ManifestShards)
	assert.Equal(t, 2, result.Ingest.Fetched)
	assert.Equal(t, 1, result.Ingest.Dropped)
	assert.Equal(t, 4, result.Stats.Records)
	assert.Equal(t, 3, result.Stats.Rasterized)
	assert.Equal(t, 1, result.Stats.BrightStars)

	out := env.opts.OutputDir
	wantFiles := []string{
		filepath.Join(out, "cubemap-0008x0008.png"),
		filepath.Join(out, "net-0008x0008.png"),
		filepath.Join(out, "hdr-cubemap-0008x0008.ktx2"),
		filepath.Join(out, "bright-stars.bin"),
	}
	assert.Equal(t, wantFiles, result.Files)

	f, err := os.Open(wantFiles[1])
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 32, cfg.Width)
	assert.Equal(t, 24, cfg.Height)

	bright, err := os.ReadFile(wantFiles[3])
	require.NoError(t, err)
	stars, err := sky.DecodeBrightStars(bright)
	require.NoError(t, err)
	require.Len(t, stars, 1)
	assert.Equal(t, float32(-12), stars[0].Magnitude)

	ktx, err := os.ReadFile(wantFiles[2])
	require.NoError(t, err)
	assert.Equal(t, render.KTX2Identifier[:], ktx[:12])

	// Second run reuses the cache and produces identical outputs.
	before := env.requests.Load()
	again, err := runner.Execute(context.Background(), env.opts)
	require.NoError(t, err)
	assert.Equal(t, before, env.requests.Load(), "cached shards must not be downloaded again")
	assert.Equal(t, 2, again.Ingest.Cached)
	ktx2, err := os.ReadFile(wantFiles[2])
	require.NoError(t, err)
	assert.Equal(t, ktx, ktx2)
}

func TestExecuteNoBrightStarsSkipsFile(t *testing.T) {
	env := newTestEnv(t)
	env.opts.MinMagnitude = -20
	env.opts.Formats = []string{FormatKTX2, FormatBright}

	result, err := NewRunner(cache.NewMemoryCache(), nil).Execute(context.Background(), env.opts)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(env.opts.OutputDir, "hdr-cubemap-0008x0008.ktx2")}, result.Files)
	_, err = os.Stat(filepath.Join(env.opts.OutputDir, render.BrightStarsName))
	assert.True(t, os.IsNotExist(err))
}

func TestExecuteShardFailure(t *testing.T) {
	env := newTestEnv(t)
	manifest := filepath.Join(t.TempDir(), "manifest.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("a.csv.gz\nmissing.csv.gz\n"), 0o644))
	env.opts.ManifestPath = manifest

	store := cache.NewMemoryCache()
	result, err := NewRunner(store, nil).Execute(context.Background(), env.opts)
	require.Error(t, err)
	assert.True(t, skyerrors.Is(err, skyerrors.ErrCodeNotFound), "err = %v", err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Ingest.Failed)
	assert.Equal(t, 1, store.Len(), "the healthy shard is still cached")
	assert.Empty(t, result.Files)
}

func TestExecuteEmptyManifest(t *testing.T) {
	env := newTestEnv(t)
	manifest := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(manifest, []byte("# nothing\n"), 0o644))
	env.opts.ManifestPath = manifest

	_, err := NewRunner(nil, nil).Execute(context.Background(), env.opts)
	assert.True(t, skyerrors.Is(err, skyerrors.ErrCodeInvalidManifest), "err = %v", err)
}

func TestAccumulateMatchesDirectAccumulation(t *testing.T) {
	store := cache.NewMemoryCache()
	ctx := context.Background()
	recs := []catalog.Record{
		{RA: 0, Dec: 0, Magnitude: 0, Temperature: 5800},
		{RA: 33, Dec: 12, Magnitude: 3},
	}
	require.NoError(t, store.Set(ctx, "s", catalog.Pack(recs)))

	opts := DefaultOptions()
	opts.Resolution = 4
	acc, err := NewRunner(store, nil).Accumulate(ctx, opts, catalog.Manifest{{Filename: "s"}})
	require.NoError(t, err)

	want := sky.NewBuffer(4)
	sky.NewAccumulator(want, sky.NewColorTable(), -10).AddAll(recs)
	assert.Equal(t, want.Data, acc.Buffer.Data)
	assert.Equal(t, 2, acc.Records)
}
