package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	skyio "github.com/matzehuels/skyrender/pkg/io"
	"github.com/matzehuels/skyrender/pkg/pipeline"
)

// fetchCommand creates the fetch command, which only fills the shard cache.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		flags       optionFlags
		reportPath  string
		metricsPath string
	)

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download missing catalog shards into the cache",
		Long: `Fetch downloads, verifies and decodes every shard listed in the manifest
that is not cached yet. Cached shards are never downloaded again, so an
interrupted fetch resumes where it stopped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.withMetrics(metricsPath, func() error {
				return c.runFetch(cmd.Context(), opts, reportPath)
			})
		},
	}

	addCatalogFlags(cmd, &flags)
	cmd.Flags().StringVar(&reportPath, "report", "", "write a JSON ingest report to this file")
	cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "write Prometheus metrics to this file")

	return cmd
}

func (c *CLI) runFetch(ctx context.Context, opts pipeline.Options, reportPath string) error {
	runner, err := c.newRunner(opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	m, src, err := runner.LoadManifest(opts)
	if err != nil {
		return err
	}
	printInfo("Fetching %s shards (%s manifest) into %s", StyleNumber.Render(fmt.Sprint(len(m))), src, opts.CacheDir)

	prog := newProgress(c.Logger)
	report, runErr := runner.Ingest(ctx, opts, m)
	if report == nil {
		return runErr
	}
	prog.done(fmt.Sprintf("Ingested %d shards", len(report.Shards)))

	if reportPath != "" {
		if err := skyio.ExportJSON(report, reportPath); err != nil {
			c.Logger.Warn("failed to write report", "path", reportPath, "err", err)
		}
	}

	printIngestSummary(report)
	if runErr != nil {
		return runErr
	}
	printSuccess("Catalog cache is complete")
	printNextStep("Render the cubemap", appName+" render")
	return nil
}
