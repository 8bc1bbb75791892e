package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skyrender/pkg/catalog"
	"github.com/matzehuels/skyrender/pkg/integrations/gaia"
	"github.com/matzehuels/skyrender/pkg/pipeline"
)

// manifestCommand creates the manifest management command.
func (c *CLI) manifestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Download or inspect the shard manifest",
	}

	cmd.AddCommand(c.manifestSyncCommand())
	cmd.AddCommand(c.manifestShowCommand())

	return cmd
}

// manifestSyncCommand creates the "manifest sync" subcommand.
func (c *CLI) manifestSyncCommand() *cobra.Command {
	var (
		flags  optionFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Download the upstream shard listing into the cache directory",
		Long: `Sync downloads the upstream _MD5SUM.txt listing, validates it and stores it
in the cache directory, where render and fetch pick it up.

With --output the listing is written to that file instead. This is how the
manifest compiled into the binary is refreshed (go generate ./pkg/catalog).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(cmd, &flags)
			if err != nil {
				return err
			}
			return c.runManifestSync(cmd.Context(), cmd.ErrOrStderr(), opts, output)
		},
	}
	cmd.Flags().StringVar(&flags.baseURL, "base-url", "", "catalog base URL (default Gaia DR3 gaia_source)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", pipeline.DefaultFetchTimeout, "download timeout")
	cmd.Flags().StringVar(&output, "output", "", "write the listing to this file instead of the cache directory")
	return cmd
}

func (c *CLI) runManifestSync(ctx context.Context, stderr io.Writer, opts pipeline.Options, output string) error {
	client := gaia.NewClient(opts.FetchTimeout).WithBaseURL(opts.BaseURL)

	spinner := newSpinnerWithContext(ctx, stderr, "Downloading "+client.BaseURL()+"/"+gaia.ManifestFile)
	spinner.Start()
	var (
		m   catalog.Manifest
		err error
	)
	if output != "" {
		m, err = catalog.SyncManifestFile(ctx, client.FetchManifest, output)
	} else {
		m, err = catalog.SyncManifest(ctx, client.FetchManifest, opts.CacheDir)
	}
	if err != nil {
		spinner.StopWithError("Manifest download failed")
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Synced manifest with %s shards", StyleNumber.Render(fmt.Sprint(len(m)))))
	if output != "" {
		printFile(output)
		return nil
	}
	printDetail("Directory: %s", opts.CacheDir)
	printNextStep("Download the catalog", appName+" fetch")
	return nil
}

// manifestShowCommand creates the "manifest show" subcommand.
func (c *CLI) manifestShowCommand() *cobra.Command {
	var (
		flags optionFlags
		list  bool
	)
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show which manifest a run would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(cmd, &flags)
			if err != nil {
				return err
			}
			m, src, err := catalog.LoadManifest(opts.ManifestPath, opts.CacheDir)
			if err != nil {
				return err
			}
			printManifest(m, src, list)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.manifest, "manifest", "", "manifest file of \"<md5> <filename>\" lines")
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list every shard")
	return cmd
}

func printManifest(m catalog.Manifest, src catalog.ManifestSource, list bool) {
	verified := 0
	for _, e := range m {
		if e.Checksum != "" {
			verified++
		}
	}
	printKeyValue("source", string(src))
	printKeyValue("shards", fmt.Sprint(len(m)))
	printKeyValue("checksums", fmt.Sprint(verified))
	if len(m) == 0 {
		printWarning("Manifest lists no shards")
		printNextStep("Download the upstream listing", appName+" manifest sync")
		return
	}
	if list {
		for _, e := range m {
			printDetail("%-32s %s", e.Checksum, e.Filename)
		}
	}
}
