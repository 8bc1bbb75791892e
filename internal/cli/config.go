package cli

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	"github.com/matzehuels/skyrender/pkg/pipeline"
)

// optionFlags holds the flag values that map onto pipeline.Options.
// A flag only overrides the config file when it was set explicitly.
type optionFlags struct {
	// render
	resolution   int
	minMagnitude float64
	exposure     float64
	compression  int
	output       string
	formats      string

	// catalog
	manifest   string
	baseURL    string
	workers    int
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	noVerify   bool
}

// addRenderFlags registers the flags that shape the outputs.
func addRenderFlags(cmd *cobra.Command, f *optionFlags) {
	fs := cmd.Flags()
	fs.IntVarP(&f.resolution, "resolution", "r", pipeline.DefaultResolution, "cubemap face edge length in texels")
	fs.Float64Var(&f.minMagnitude, "min-magnitude", pipeline.DefaultMinMagnitude, "stars brighter than this go to the bright star list")
	fs.Float64Var(&f.exposure, "exposure", pipeline.DefaultExposureValue, "exposure value of the PNG previews")
	fs.IntVar(&f.compression, "compression", pipeline.DefaultCompressionLevel, "zstd level of the KTX2 output (0 = uncompressed)")
	fs.StringVarP(&f.output, "output", "o", ".", "output directory")
	fs.StringVarP(&f.formats, "formats", "f", "", "output format(s): strip, net, ktx2, bright (comma-separated, default all)")
}

// addCatalogFlags registers the flags that control shard ingestion.
func addCatalogFlags(cmd *cobra.Command, f *optionFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.manifest, "manifest", "", "manifest file of \"<md5> <filename>\" lines")
	fs.StringVar(&f.baseURL, "base-url", "", "catalog base URL (default Gaia DR3 gaia_source)")
	fs.IntVarP(&f.workers, "workers", "j", 0, "concurrent shard downloads (default number of CPUs)")
	fs.DurationVar(&f.timeout, "timeout", pipeline.DefaultFetchTimeout, "timeout of one shard download")
	fs.IntVar(&f.retries, "retries", pipeline.DefaultRetries, "download attempts per shard")
	fs.DurationVar(&f.retryDelay, "retry-delay", pipeline.DefaultRetryDelay, "wait before the first retry, doubled after each failure")
	fs.BoolVar(&f.noVerify, "no-verify", false, "skip MD5 verification of downloaded shards")
}

// loadOptions builds pipeline options from defaults, the config file and
// the explicitly set flags, in that order, and validates them.
func (c *CLI) loadOptions(cmd *cobra.Command, f *optionFlags) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if c.configPath != "" {
		if err := loadConfig(c.configPath, &opts); err != nil {
			return opts, err
		}
	}

	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Lookup(name) != nil && fs.Changed(name) {
			apply()
		}
	}
	set("resolution", func() { opts.Resolution = f.resolution })
	set("min-magnitude", func() { opts.MinMagnitude = f.minMagnitude })
	set("exposure", func() { opts.ExposureValue = f.exposure })
	set("compression", func() { opts.CompressionLevel = f.compression })
	set("output", func() { opts.OutputDir = f.output })
	set("formats", func() { opts.Formats = parseFormats(f.formats) })
	set("manifest", func() { opts.ManifestPath = f.manifest })
	set("base-url", func() { opts.BaseURL = f.baseURL })
	set("workers", func() { opts.Workers = f.workers })
	set("timeout", func() { opts.FetchTimeout = f.timeout })
	set("retries", func() { opts.Retries = f.retries })
	set("retry-delay", func() { opts.RetryDelay = f.retryDelay })
	set("no-verify", func() { opts.SkipVerify = f.noVerify })

	if c.cacheDir != "" {
		opts.CacheDir = c.cacheDir
	}
	if opts.CacheDir == "" {
		dir, err := cacheDir()
		if err != nil {
			return opts, skyerrors.Wrap(skyerrors.ErrCodeInvalidPath, err, "resolve cache directory")
		}
		opts.CacheDir = dir
	}
	opts.Logger = c.Logger

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	return opts, nil
}

// loadConfig decodes a TOML file over opts. Keys absent from the file keep
// their current value; unknown keys are rejected.
func loadConfig(path string, opts *pipeline.Options) error {
	md, err := toml.DecodeFile(path, opts)
	if err != nil {
		return skyerrors.Wrap(skyerrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return skyerrors.New(skyerrors.ErrCodeInvalidConfig, "%s: unknown keys %v", path, undecoded)
	}
	return nil
}
