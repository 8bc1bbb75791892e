// Package pipeline provides the star catalog → cubemap pipeline.
//
// This package implements the complete ingest → accumulate → normalize →
// render pipeline used by the CLI commands. By centralizing this logic,
// every entry point applies the same defaults and validation.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Ingest: download missing catalog shards into the shard cache
//     (parallel, one task per shard)
//  2. Accumulate: project every cached record onto the cubemap and add its
//     flux, diverting very bright stars to a point list (sequential)
//  3. Normalize: divide each texel by its solid angle
//  4. Render: write the requested output files
//
// The cubemap buffer is owned by the [Runner] for the duration of a run and
// only ever touched by one goroutine.
//
// # Usage
//
//	runner := pipeline.NewRunner(store, logger)
//	opts := pipeline.DefaultOptions()
//	opts.Resolution = 2048
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Files)
//
// Stages can also be run individually with [Runner.Ingest],
// [Runner.Accumulate] and [Runner.Render].
package pipeline

import (
	"io"
	"math"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"

	"github.com/matzehuels/skyrender/pkg/catalog"
	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	"github.com/matzehuels/skyrender/pkg/integrations/gaia"
	"github.com/matzehuels/skyrender/pkg/render"
	"github.com/matzehuels/skyrender/pkg/sky"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and config files
// =============================================================================

const (
	// DefaultResolution is the default cubemap face edge length in texels.
	DefaultResolution = 1024

	// MaxResolution bounds the face edge length. The float32 buffer of a
	// MaxResolution cubemap is already 4.5 GiB.
	MaxResolution = 8192

	// DefaultMinMagnitude is the magnitude below which stars are written
	// to the bright star list instead of the cubemap.
	DefaultMinMagnitude = sky.DefaultMinMagnitude

	// DefaultExposureValue is the exposure of the LDR previews.
	DefaultExposureValue = -7.0

	// DefaultCompressionLevel is the zstd level of the KTX2 output.
	DefaultCompressionLevel = render.MaxCompressionLevel

	// DefaultFetchTimeout bounds one shard download, body included.
	DefaultFetchTimeout = time.Hour

	// DefaultRetries is the number of download attempts per shard.
	DefaultRetries = 3

	// DefaultRetryDelay is the wait before the second attempt; it doubles
	// after each failure.
	DefaultRetryDelay = time.Second
)

// Output formats.
const (
	FormatStrip  = "strip"
	FormatNet    = "net"
	FormatKTX2   = "ktx2"
	FormatBright = "bright"
)

// AllFormats lists every output format in the order they are written.
var AllFormats = []string{FormatStrip, FormatNet, FormatKTX2, FormatBright}

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatStrip:  true,
	FormatNet:    true,
	FormatKTX2:   true,
	FormatBright: true,
}

// Stage names reported to observability hooks.
const (
	StageIngest     = "ingest"
	StageAccumulate = "accumulate"
	StageNormalize  = "normalize"
	StageRender     = "render"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
//
// MinMagnitude, ExposureValue and CompressionLevel are meaningful at zero,
// so they have no implicit default: start from [DefaultOptions]. Every
// other zero field is replaced by its default in [Options.ValidateAndSetDefaults].
type Options struct {
	// Render options
	Resolution       int      `json:"resolution" toml:"resolution"`
	MinMagnitude     float64  `json:"min_magnitude" toml:"min_magnitude"`
	ExposureValue    float64  `json:"exposure_value" toml:"exposure_value"`
	CompressionLevel int      `json:"compression_level" toml:"compression_level"`
	OutputDir        string   `json:"output_dir" toml:"output_dir"`
	Formats          []string `json:"formats" toml:"formats"`

	// Catalog options
	ManifestPath string        `json:"manifest,omitempty" toml:"manifest"`
	CacheDir     string        `json:"cache_dir" toml:"cache_dir"`
	BaseURL      string        `json:"base_url" toml:"base_url"`
	Workers      int           `json:"workers" toml:"workers"`
	FetchTimeout time.Duration `json:"fetch_timeout" toml:"fetch_timeout"`
	Retries      int           `json:"retries" toml:"retries"`
	RetryDelay   time.Duration `json:"retry_delay" toml:"retry_delay"`
	SkipVerify   bool          `json:"skip_verify,omitempty" toml:"skip_verify"`

	// Runtime options (not serialized)
	Logger *log.Logger         `json:"-" toml:"-"`
	Clock  clockwork.Clock     `json:"-" toml:"-"`
	Source catalog.ShardSource `json:"-" toml:"-"` // overrides the Gaia client

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// DefaultOptions returns options with every default applied.
func DefaultOptions() Options {
	return Options{
		Resolution:       DefaultResolution,
		MinMagnitude:     DefaultMinMagnitude,
		ExposureValue:    DefaultExposureValue,
		CompressionLevel: DefaultCompressionLevel,
		OutputDir:        ".",
		Formats:          slices.Clone(AllFormats),
		BaseURL:          gaia.BaseURL,
		Workers:          runtime.NumCPU(),
		FetchTimeout:     DefaultFetchTimeout,
		Retries:          DefaultRetries,
		RetryDelay:       DefaultRetryDelay,
	}
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and reports.
	RunID string `json:"run_id"`

	// Manifest tells which manifest was used and how many shards it lists.
	Manifest       catalog.ManifestSource `json:"manifest"`
	ManifestShards int                    `json:"manifest_shards"`

	// Ingest is the per-shard outcome of the ingest stage.
	Ingest *catalog.Report `json:"ingest,omitempty"`

	// Files lists the written output paths.
	Files []string `json:"files"`

	// Stats contains counts and timing information.
	Stats Stats `json:"stats"`
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records        int           `json:"records"`
	Rasterized     int           `json:"rasterized"`
	BrightStars    int           `json:"bright_stars"`
	Skipped        int           `json:"skipped"`
	Degenerate     int           `json:"degenerate_texels"`
	IngestTime     time.Duration `json:"ingest_ns"`
	AccumulateTime time.Duration `json:"accumulate_ns"`
	NormalizeTime  time.Duration `json:"normalize_ns"`
	RenderTime     time.Duration `json:"render_ns"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return skyerrors.New(skyerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: strip, net, ktx2, bright)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option ranges and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.setDefaults()

	if err := skyerrors.ValidateRange("resolution", o.Resolution, 1, MaxResolution); err != nil {
		return err
	}
	if err := skyerrors.ValidateRange("compression level", o.CompressionLevel, 0, render.MaxCompressionLevel); err != nil {
		return err
	}
	if math.IsNaN(o.MinMagnitude) || math.IsInf(o.MinMagnitude, 0) {
		return skyerrors.New(skyerrors.ErrCodeInvalidConfig, "min magnitude must be finite")
	}
	if math.IsNaN(o.ExposureValue) || math.IsInf(o.ExposureValue, 0) {
		return skyerrors.New(skyerrors.ErrCodeInvalidConfig, "exposure value must be finite")
	}
	if o.Workers < 0 {
		return skyerrors.New(skyerrors.ErrCodeInvalidConfig, "workers must not be negative, got %d", o.Workers)
	}
	if o.FetchTimeout < 0 || o.RetryDelay < 0 {
		return skyerrors.New(skyerrors.ErrCodeInvalidConfig, "timeouts must not be negative")
	}
	if o.Retries < 0 {
		return skyerrors.New(skyerrors.ErrCodeInvalidConfig, "retries must not be negative, got %d", o.Retries)
	}
	if err := skyerrors.ValidateURL(o.BaseURL); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	o.validated = true
	return nil
}

func (o *Options) setDefaults() {
	if o.Resolution == 0 {
		o.Resolution = DefaultResolution
	}
	if o.OutputDir == "" {
		o.OutputDir = "."
	}
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(AllFormats)
	}
	if o.BaseURL == "" {
		o.BaseURL = gaia.BaseURL
	}
	if o.Workers == 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.FetchTimeout == 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.Retries == 0 {
		o.Retries = DefaultRetries
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Wants reports whether format is among the requested outputs.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}
