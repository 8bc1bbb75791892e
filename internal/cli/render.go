package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	skyio "github.com/matzehuels/skyrender/pkg/io"
	"github.com/matzehuels/skyrender/pkg/pipeline"
)

// renderCommand creates the render command: ingest, accumulate, normalize
// and write the cubemap outputs.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags       optionFlags
		reportPath  string
		metricsPath string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the star catalog to a cubemap",
		Long: `Render downloads every shard listed in the manifest that is not cached yet,
accumulates all stars onto a cubemap and writes the requested outputs:

  strip   cubemap-RRRRxRRRR.png      six faces side by side (LDR)
  net     net-RRRRxRRRR.png          faces unfolded as a cross (LDR)
  ktx2    hdr-cubemap-RRRRxRRRR.ktx2 HDR cubemap texture
  bright  bright-stars.bin           stars brighter than --min-magnitude`,
		Example: `  skyrender manifest sync
  skyrender render --resolution 2048 --output ./sky
  skyrender render --config sky.toml --formats ktx2,bright`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.withMetrics(metricsPath, func() error {
				return c.runRender(cmd.Context(), cmd.ErrOrStderr(), opts, reportPath)
			})
		},
	}

	addRenderFlags(cmd, &flags)
	addCatalogFlags(cmd, &flags)
	cmd.Flags().StringVar(&reportPath, "report", "", "write a JSON run report to this file")
	cmd.Flags().StringVar(&metricsPath, "metrics-file", "", "write Prometheus metrics to this file")

	return cmd
}

// runRender executes the pipeline and prints its summary. The report is
// written even when the run fails, so failed shards can be inspected.
func (c *CLI) runRender(ctx context.Context, stderr io.Writer, opts pipeline.Options, reportPath string) error {
	runner, err := c.newRunner(opts)
	if err != nil {
		return err
	}
	defer runner.Close()

	printInfo("Rendering %s cubemap into %s", StyleValue.Render(resolutionLabel(opts.Resolution)), opts.OutputDir)

	spinner := newSpinnerWithContext(ctx, stderr, "Rendering "+resolutionLabel(opts.Resolution)+" cubemap...")
	spinner.Start()
	result, runErr := runner.Execute(ctx, opts)
	if runErr != nil {
		spinner.StopWithError("Render failed")
	} else {
		spinner.Stop()
	}
	if result != nil && reportPath != "" {
		if err := skyio.ExportJSON(result, reportPath); err != nil {
			c.Logger.Warn("failed to write report", "path", reportPath, "err", err)
		} else {
			printFile(reportPath)
		}
	}
	if runErr != nil {
		if result != nil && result.Ingest != nil {
			printIngestSummary(result.Ingest)
		}
		return runErr
	}

	printRenderSummary(result)
	return nil
}

// resolutionLabel formats a face resolution as "1024x1024".
func resolutionLabel(res int) string {
	return fmt.Sprintf("%dx%d", res, res)
}
