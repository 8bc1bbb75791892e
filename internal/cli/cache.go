package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/skyrender/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the decoded shard cache",
	}

	cmd.AddCommand(c.cacheListCommand())
	cmd.AddCommand(c.cacheSizeCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// openCache opens the file cache selected by --config / --cache-dir.
func (c *CLI) openCache(cmd *cobra.Command) (*cache.FileCache, error) {
	opts, err := c.loadOptions(cmd, &optionFlags{})
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(opts.CacheDir)
}

// cacheListCommand creates the "cache ls" subcommand.
func (c *CLI) cacheListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List cached shards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openCache(cmd)
			if err != nil {
				return err
			}
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			for _, k := range keys {
				info, err := os.Stat(store.Path(k))
				if err != nil {
					return err
				}
				fmt.Printf("%s\t%s\n", k, formatBytes(info.Size()))
			}
			return nil
		},
	}
}

// cacheSizeCommand creates the "cache size" subcommand.
func (c *CLI) cacheSizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Print the number and total size of cached shards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openCache(cmd)
			if err != nil {
				return err
			}
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			size, err := store.Size()
			if err != nil {
				return err
			}
			printKeyValue("shards", fmt.Sprint(len(keys)))
			printKeyValue("size", formatBytes(size))
			printKeyValue("directory", store.Dir())
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached shards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.openCache(cmd)
			if err != nil {
				return err
			}
			keys, err := store.Keys()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				printInfo("Cache is empty")
				return nil
			}

			count := 0
			for _, k := range keys {
				if err := store.Delete(cmd.Context(), k); err != nil {
					c.Logger.Warn("failed to remove cache entry", "shard", k, "err", err)
					continue
				}
				count++
			}

			printSuccess("Cleared %d cached shards", count)
			printDetail("Directory: %s", store.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.loadOptions(cmd, &optionFlags{})
			if err != nil {
				return err
			}
			fmt.Println(opts.CacheDir)
			return nil
		},
	}
}
