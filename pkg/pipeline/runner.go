package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/skyrender/pkg/cache"
	"github.com/matzehuels/skyrender/pkg/catalog"
	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	"github.com/matzehuels/skyrender/pkg/httputil"
	"github.com/matzehuels/skyrender/pkg/integrations/gaia"
	"github.com/matzehuels/skyrender/pkg/observability"
	"github.com/matzehuels/skyrender/pkg/sky"
)

// Runner encapsulates pipeline execution over a shard cache.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Buffers are allocated per run, so multiple
// goroutines can use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner over the given shard cache.
// If cache is nil, an in-memory cache is used (nothing is persisted).
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Logger: logger,
	}
}

// Accumulation is the output of the accumulate stage.
type Accumulation struct {
	Buffer      *sky.Buffer
	BrightStars []sky.BrightStar
	Records     int
	Rasterized  int
	Skipped     int
}

// Execute runs the complete ingest → accumulate → normalize → render
// pipeline. When ingestion fails, the returned Result still carries the
// ingest report alongside the error.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])
	opts.Logger = logger

	m, src, err := r.LoadManifest(opts)
	if err != nil {
		return nil, err
	}
	result.Manifest = src
	result.ManifestShards = len(m)
	logger.Info("loaded manifest", "source", src, "shards", len(m))

	// Stage 1: Ingest
	start := time.Now()
	report, err := r.Ingest(ctx, opts, m)
	result.Stats.IngestTime = time.Since(start)
	result.Ingest = report
	if err != nil {
		return result, fmt.Errorf("ingest: %w", err)
	}
	logger.Info("ingested catalog",
		"fetched", report.Fetched,
		"cached", report.Cached,
		"dropped", report.Dropped,
		"elapsed", result.Stats.IngestTime.Round(time.Millisecond))

	// Stage 2: Accumulate
	start = time.Now()
	acc, err := r.Accumulate(ctx, opts, m)
	if err != nil {
		return result, fmt.Errorf("accumulate: %w", err)
	}
	result.Stats.AccumulateTime = time.Since(start)
	result.Stats.Records = acc.Records
	result.Stats.Rasterized = acc.Rasterized
	result.Stats.BrightStars = len(acc.BrightStars)
	result.Stats.Skipped = acc.Skipped
	logger.Info("accumulated stars",
		"records", acc.Records,
		"bright", len(acc.BrightStars),
		"elapsed", result.Stats.AccumulateTime.Round(time.Millisecond))

	// Stage 3: Normalize
	start = time.Now()
	result.Stats.Degenerate = r.Normalize(ctx, opts, acc.Buffer)
	result.Stats.NormalizeTime = time.Since(start)

	// Stage 4: Render
	start = time.Now()
	files, err := r.Render(ctx, opts, acc)
	if err != nil {
		return result, fmt.Errorf("render: %w", err)
	}
	result.Files = files
	result.Stats.RenderTime = time.Since(start)
	logger.Info("rendered outputs",
		"files", len(files),
		"elapsed", result.Stats.RenderTime.Round(time.Millisecond))

	return result, nil
}

// LoadManifest resolves the manifest for opts and rejects an empty one.
func (r *Runner) LoadManifest(opts Options) (catalog.Manifest, catalog.ManifestSource, error) {
	m, src, err := catalog.LoadManifest(opts.ManifestPath, opts.CacheDir)
	if err != nil {
		return nil, src, err
	}
	if len(m) == 0 {
		return nil, src, skyerrors.New(skyerrors.ErrCodeInvalidManifest,
			"the %s manifest lists no shards; run \"skyrender manifest sync\" or pass --manifest", src)
	}
	return m, src, nil
}

// Ingest fills the runner's cache with every shard of m.
func (r *Runner) Ingest(ctx context.Context, opts Options, m catalog.Manifest) (report *catalog.Report, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	done := r.stage(ctx, StageIngest)
	defer func() { done(err) }()

	source := opts.Source
	if source == nil {
		source = gaia.NewClient(opts.FetchTimeout).WithBaseURL(opts.BaseURL)
	}
	ing := &catalog.Ingester{
		Source:  source,
		Cache:   r.Cache,
		Workers: opts.Workers,
		Backoff: httputil.Backoff{
			Attempts: opts.Retries,
			Delay:    opts.RetryDelay,
			Clock:    opts.Clock,
		},
		SkipVerify: opts.SkipVerify,
		Logger:     opts.Logger,
	}
	return ing.Ingest(ctx, m)
}

// Accumulate replays the cached shards of m in manifest order into a new
// buffer.
func (r *Runner) Accumulate(ctx context.Context, opts Options, m catalog.Manifest) (acc *Accumulation, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	done := r.stage(ctx, StageAccumulate)
	defer func() { done(err) }()

	buf := sky.NewBuffer(opts.Resolution)
	a := sky.NewAccumulator(buf, sky.NewColorTable(), float32(opts.MinMagnitude))
	records := 0
	err = catalog.Each(ctx, r.Cache, m, func(shard string, recs []catalog.Record) error {
		a.AddAll(recs)
		records += len(recs)
		opts.Logger.Debug("accumulated shard", "shard", shard, "records", len(recs))
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.Pipeline().OnStarsAccumulated(ctx, a.Rasterized(), len(a.BrightStars()))

	return &Accumulation{
		Buffer:      buf,
		BrightStars: a.BrightStars(),
		Records:     records,
		Rasterized:  a.Rasterized(),
		Skipped:     a.Skipped(),
	}, nil
}

// Normalize converts the accumulated flux in buf to radiance and returns
// the number of degenerate texels that were zeroed.
func (r *Runner) Normalize(ctx context.Context, opts Options, buf *sky.Buffer) int {
	r.applyLogger(&opts)
	done := r.stage(ctx, StageNormalize)
	n := sky.Normalize(buf)
	if n > 0 {
		opts.Logger.Warn("zeroed texels with degenerate solid angle", "texels", n)
	}
	done(nil)
	return n
}

// stage reports the start of a stage to the pipeline hooks and returns a
// function reporting its completion.
func (r *Runner) stage(ctx context.Context, name string) func(error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, name)
	start := time.Now()
	return func(err error) {
		hooks.OnStageComplete(ctx, name, time.Since(start), err)
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
