package catalog

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/skyrender/pkg/cache"
	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	"github.com/matzehuels/skyrender/pkg/httputil"
	"github.com/matzehuels/skyrender/pkg/integrations"
	"github.com/matzehuels/skyrender/pkg/observability"
)

// ShardSource opens the compressed body of a shard.
// gaia.Client implements it.
type ShardSource interface {
	OpenShard(ctx context.Context, filename string) (io.ReadCloser, error)
}

// Shard outcome values used in [ShardReport.Status].
const (
	StatusCached  = "cached"
	StatusFetched = "fetched"
	StatusFailed  = "failed"
)

// ShardReport is the outcome of one manifest entry.
type ShardReport struct {
	Filename string        `json:"filename"`
	Status   string        `json:"status"`
	Records  int           `json:"records,omitempty"`
	Stats    ShardStats    `json:"stats"`
	Bytes    int64         `json:"bytes,omitempty"` // compressed bytes of the successful attempt
	Attempts int           `json:"attempts,omitempty"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`

	err error
}

// Err returns the error of a failed shard.
func (s ShardReport) Err() error { return s.err }

// Report summarizes an ingestion run. Shards are in manifest order.
type Report struct {
	Shards  []ShardReport `json:"shards"`
	Cached  int           `json:"cached"`
	Fetched int           `json:"fetched"`
	Failed  int           `json:"failed"`
	Dropped int           `json:"dropped_rows"`
}

// Failures returns the reports of the shards that failed.
func (r *Report) Failures() []ShardReport {
	var out []ShardReport
	for _, s := range r.Shards {
		if s.Status == StatusFailed {
			out = append(out, s)
		}
	}
	return out
}

// Ingester fills a cache with the shards of a manifest.
//
// The zero value of every field except Source and Cache is usable.
type Ingester struct {
	Source ShardSource
	Cache  cache.Cache

	// Workers bounds the number of shards processed at once.
	// Zero means runtime.NumCPU().
	Workers int

	// Backoff schedules retries of transient failures. A zero Attempts
	// means 3 attempts starting at one second.
	Backoff httputil.Backoff

	// SkipVerify disables the MD5 check against the manifest.
	SkipVerify bool

	Logger *log.Logger
}

// Ingest processes every manifest entry. Entries already in the cache are
// skipped without network access. A shard-level failure (see
// [skyerrors.IsShardLevel]) does not stop the others; once all workers have
// finished, Ingest returns an error joining every shard failure. Any other
// failure, such as an unwritable cache directory, cancels the remaining
// shards and is returned alone. The report is returned in all cases except
// cancellation and such run-fatal failures.
func (in *Ingester) Ingest(ctx context.Context, m Manifest) (*Report, error) {
	workers := in.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := in.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	report := &Report{Shards: make([]ShardReport, len(m))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, e := range m {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			rep := in.ingestShard(gctx, e, logger)
			report.Shards[i] = rep
			if rep.Status == StatusFailed && gctx.Err() == nil && !skyerrors.IsShardLevel(rep.err) {
				return fmt.Errorf("%s: %w", rep.Filename, rep.err)
			}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs []error
	var code skyerrors.Code
	for _, s := range report.Shards {
		report.Dropped += s.Stats.Dropped
		switch s.Status {
		case StatusCached:
			report.Cached++
		case StatusFetched:
			report.Fetched++
		case StatusFailed:
			report.Failed++
			errs = append(errs, fmt.Errorf("%s: %w", s.Filename, s.err))
			if code == "" {
				code = skyerrors.GetCode(s.err)
			}
		}
	}
	if len(errs) > 0 {
		if code == "" {
			code = skyerrors.ErrCodeNetwork
		}
		return report, skyerrors.Wrap(code, errors.Join(errs...),
			"%d of %d shards failed", len(errs), len(m))
	}
	return report, nil
}

func (in *Ingester) ingestShard(ctx context.Context, e Entry, logger *log.Logger) ShardReport {
	rep := ShardReport{Filename: e.Filename}
	start := time.Now()
	cacheHooks := observability.Cache()

	ok, err := in.Cache.Has(ctx, e.Filename)
	if err != nil {
		return in.fail(ctx, rep, start, cacheError(err, "check cache"), logger)
	}
	if ok {
		cacheHooks.OnCacheHit(ctx, e.Filename)
		rep.Status = StatusCached
		rep.Duration = time.Since(start)
		logger.Debug("shard cached", "shard", e.Filename)
		return rep
	}
	cacheHooks.OnCacheMiss(ctx, e.Filename)

	backoff := in.Backoff
	if backoff.Attempts == 0 {
		backoff.Attempts = 3
		backoff.Delay = time.Second
	}
	backoff.OnRetry = func(attempt int, err error) {
		observability.Ingest().OnShardRetry(ctx, e.Filename, attempt, err)
		logger.Warn("retrying shard", "shard", e.Filename, "attempt", attempt, "err", err)
	}

	var records []Record
	err = backoff.Do(ctx, func() error {
		rep.Attempts++
		var ferr error
		records, rep.Stats, rep.Bytes, ferr = in.fetch(ctx, e)
		return ferr
	})
	if err != nil {
		return in.fail(ctx, rep, start, err, logger)
	}

	data := Pack(records)
	if err := in.Cache.Set(ctx, e.Filename, data); err != nil {
		return in.fail(ctx, rep, start, cacheError(err, "store shard"), logger)
	}
	cacheHooks.OnCacheSet(ctx, e.Filename, len(data))

	rep.Status = StatusFetched
	rep.Records = len(records)
	rep.Duration = time.Since(start)
	observability.Ingest().OnShardComplete(ctx, e.Filename, rep.Records, rep.Stats.Dropped, rep.Duration, nil)
	logger.Info("shard fetched",
		"shard", e.Filename,
		"records", rep.Records,
		"dropped", rep.Stats.Dropped,
		"elapsed", rep.Duration.Round(time.Millisecond))
	return rep
}

func (in *Ingester) fail(ctx context.Context, rep ShardReport, start time.Time, err error, logger *log.Logger) ShardReport {
	rep.Status = StatusFailed
	rep.Duration = time.Since(start)
	rep.err = err
	rep.Error = skyerrors.UserMessage(err)
	if ctx.Err() == nil {
		observability.Ingest().OnShardComplete(ctx, rep.Filename, 0, 0, rep.Duration, err)
		logger.Error("shard failed", "shard", rep.Filename, "attempts", rep.Attempts, "err", err)
	}
	return rep
}

// fetch performs one download attempt. Transient failures come back
// wrapped as httputil.RetryableError.
func (in *Ingester) fetch(ctx context.Context, e Entry) ([]Record, ShardStats, int64, error) {
	body, err := in.Source.OpenShard(ctx, e.Filename)
	if err != nil {
		return nil, ShardStats{}, 0, classify(err)
	}
	defer body.Close()

	sum := md5.New()
	cr := &countingReader{r: &transportReader{r: body}}
	tee := io.TeeReader(cr, sum)

	records, stats, decErr := DecodeShard(tee)
	if decErr != nil && httputil.IsRetryable(decErr) {
		return nil, stats, cr.n, classify(decErr)
	}
	if decErr != nil && errors.Is(decErr, context.Canceled) {
		return nil, stats, cr.n, decErr
	}
	// Drain the remainder so the checksum covers the whole body.
	if _, err := io.Copy(io.Discard, tee); err != nil {
		return nil, stats, cr.n, classify(err)
	}

	if !in.SkipVerify && e.Checksum != "" {
		if got := hex.EncodeToString(sum.Sum(nil)); got != e.Checksum {
			return nil, stats, cr.n, httputil.Retryable(skyerrors.New(skyerrors.ErrCodeChecksum,
				"md5 %s, manifest says %s", got, e.Checksum))
		}
	}
	if decErr != nil {
		if errors.Is(decErr, io.ErrUnexpectedEOF) {
			return nil, stats, cr.n, httputil.Retryable(skyerrors.Wrap(skyerrors.ErrCodeNetwork, decErr, "truncated body"))
		}
		return nil, stats, cr.n, skyerrors.Wrap(skyerrors.ErrCodeDecode, decErr, "decode")
	}
	return records, stats, cr.n, nil
}

// classify attaches an error code to a transport error, keeping it
// retryable when it was.
// cacheError codes a cache failure. A cache directory that cannot be
// written fails every shard alike, so it is not shard-level.
func cacheError(err error, msg string) error {
	code := skyerrors.ErrCodeCacheIO
	switch {
	case skyerrors.GetCode(err) != "":
		code = skyerrors.GetCode(err)
	case errors.Is(err, fs.ErrPermission):
		code = skyerrors.ErrCodeInvalidPath
	}
	return skyerrors.Wrap(code, err, "%s", msg)
}

func classify(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}
	code := skyerrors.ErrCodeNetwork
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		code = skyerrors.ErrCodeNotFound
	case errors.Is(err, integrations.ErrTimeout):
		code = skyerrors.ErrCodeTimeout
	}
	coded := skyerrors.Wrap(code, err, "download")
	if httputil.IsRetryable(err) {
		return httputil.Retryable(coded)
	}
	return coded
}

// transportReader marks errors from the response body as transport
// failures, so they can be told apart from gzip format errors.
type transportReader struct{ r io.Reader }

func (t *transportReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = httputil.Retryable(fmt.Errorf("%w: truncated body: %v", integrations.ErrNetwork, err))
		} else {
			err = integrations.ReadError(err)
		}
	}
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
