package catalog

import (
	"context"
	"fmt"

	"github.com/matzehuels/skyrender/pkg/cache"
	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
)

// ReadShard loads and unpacks the cached records of one shard.
func ReadShard(ctx context.Context, c cache.Cache, filename string) ([]Record, error) {
	data, ok, err := c.Get(ctx, filename)
	if err != nil {
		return nil, skyerrors.Wrap(skyerrors.ErrCodeCacheIO, err, "read shard %s", filename)
	}
	if !ok {
		return nil, skyerrors.New(skyerrors.ErrCodeNotFound, "shard %s is not cached", filename)
	}
	records, err := Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("shard %s: %w", filename, err)
	}
	return records, nil
}

// Each calls fn with the records of every shard of m, in manifest order.
// It stops at the first error, including context cancellation between
// shards.
func Each(ctx context.Context, c cache.Cache, m Manifest, fn func(shard string, records []Record) error) error {
	for _, e := range m {
		if err := ctx.Err(); err != nil {
			return err
		}
		records, err := ReadShard(ctx, c, e.Filename)
		if err != nil {
			return err
		}
		if err := fn(e.Filename, records); err != nil {
			return err
		}
	}
	return nil
}
