// Package integrations provides HTTP clients for remote star catalogs.
//
// # Overview
//
// The shared [Client] wraps net/http with the behaviour every catalog
// source needs:
//
//   - A bounded timeout per request, body included
//   - Default headers (User-Agent)
//   - Status classification into [ErrNotFound] and [ErrNetwork]
//   - Transient failures (transport errors, timeouts, 429 and 5xx) wrapped
//     as httputil.RetryableError so callers can retry them
//   - HTTP observability hooks
//
// Each catalog lives in its own subpackage:
//
//   - [gaia]: Gaia DR3 gaia_source shards on the ESA CDN
//
// # Client Pattern
//
//	client := gaia.NewClient(time.Hour)
//	body, err := client.OpenShard(ctx, "GaiaSource_000000-003111.csv.gz")
//	if err != nil {
//	    return err
//	}
//	defer body.Close()
//
// Retrying is left to the caller: a shard download is only complete once
// the body has been decompressed and verified, so the retry loop wraps the
// whole shard, not the request.
//
// [gaia]: github.com/matzehuels/skyrender/pkg/integrations/gaia
package integrations
