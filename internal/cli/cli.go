package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/skyrender/internal/metrics"
	"github.com/matzehuels/skyrender/pkg/buildinfo"
	"github.com/matzehuels/skyrender/pkg/cache"
	"github.com/matzehuels/skyrender/pkg/observability"
	"github.com/matzehuels/skyrender/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "skyrender"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flags shared by every subcommand.
	configPath string
	cacheDir   string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Skyrender bakes the Gaia DR3 star catalog into a cubemap skybox",
		Long: `Skyrender downloads the Gaia DR3 source catalog, accumulates the flux of
every star onto the six faces of a cubemap and writes the result as PNG
previews, an HDR KTX2 texture and a list of the brightest stars.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML config file")
	root.PersistentFlags().StringVar(&c.cacheDir, "cache-dir", "", "shard cache directory (default $XDG_CACHE_HOME/skyrender)")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.manifestCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner over the shard cache in opts.CacheDir.
func (c *CLI) newRunner(opts pipeline.Options) (*pipeline.Runner, error) {
	store, err := cache.NewFileCache(opts.CacheDir)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, c.Logger), nil
}

// withMetrics runs fn with Prometheus hooks installed and writes them to
// path afterwards, whether fn failed or not. An empty path disables metrics.
func (c *CLI) withMetrics(path string, fn func() error) error {
	if path == "" {
		return fn()
	}
	m := metrics.New()
	m.Install()
	defer observability.Reset()

	runErr := fn()
	if err := m.WriteTextfile(path); err != nil {
		c.Logger.Warn("failed to write metrics", "path", path, "err", err)
	} else {
		c.Logger.Debug("wrote metrics", "path", path)
	}
	return runErr
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/skyrender/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// Blank items are ignored; an empty string selects every format.
func parseFormats(s string) []string {
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	if len(formats) == 0 {
		return append([]string(nil), pipeline.AllFormats...)
	}
	return formats
}
