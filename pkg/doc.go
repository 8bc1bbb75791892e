// Package pkg provides the core libraries for skyrender.
//
// # Overview
//
// Skyrender turns the Gaia DR3 source catalog (about 1.8 billion stars in
// 3,386 gzip CSV shards) into a cubemap skybox. The pkg directory is
// organized into four main areas:
//
//  1. [catalog] - Shard manifest, download, decoding and the shard cache
//  2. [sky] - Projection, colour, flux accumulation and solid-angle normalization
//  3. [render] - PNG previews, the HDR KTX2 container and output names
//  4. [pipeline] - Orchestration (ingest → accumulate → normalize → render)
//
// # Architecture
//
// The typical data flow:
//
//	Gaia CDN (gaia_source/*.csv.gz)
//	         ↓
//	    [catalog] package (download, verify, decode, cache)
//	         ↓
//	    [sky] package (project + accumulate flux per texel)
//	         ↓
//	    [sky] package (divide by texel solid angle)
//	         ↓
//	    [render] package (PNG strip/net, KTX2, bright-stars.bin)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/skyrender/pkg/cache"
//	    "github.com/matzehuels/skyrender/pkg/pipeline"
//	)
//
//	store, _ := cache.NewFileCache("/var/cache/skyrender")
//	runner := pipeline.NewRunner(store, nil)
//
//	opts := pipeline.DefaultOptions()
//	opts.Resolution = 2048
//	opts.OutputDir = "sky"
//	result, err := runner.Execute(context.Background(), opts)
//
// # Main Packages
//
// ## Domain Logic
//
// [catalog] - Manifest parsing and resolution (file, synced listing,
// embedded), the parallel [catalog.Ingester] with retries and MD5
// verification, the CSV row decoder and the packed float32 record codec.
//
// [sky] - The cubemap [sky.Buffer], equatorial → face/texel projection,
// the blackbody colour table, the radiometric accumulator that diverts
// very bright stars to a point list, and texel solid angles.
//
// [render] - 8-bit tone-mapped face strip and cube net PNGs, RGB9E5
// packing and the KTX2 cubemap writer with optional zstd supercompression.
//
// ## Infrastructure
//
// [pipeline] - The complete pipeline used by the CLI. Ensures consistent
// defaults and validation across entry points.
//
// [cache] - Byte caches keyed by shard file name: FileCache for the CLI,
// MemoryCache for tests.
//
// [integrations] - Shared HTTP client with status classification;
// [integrations/gaia] is the Gaia CDN client.
//
// [httputil] - Retry with exponential backoff on an injectable clock.
//
// [observability] - Hooks for stage, shard, cache and HTTP events.
//
// [errors] - Coded errors shared by every package.
//
// [io] - Atomic file writes and JSON export.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/sky/...                # Specific package
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/catalog
// [sky]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/sky
// [render]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/cache
// [integrations]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/integrations
// [integrations/gaia]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/integrations/gaia
// [httputil]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/errors
// [io]: https://pkg.go.dev/github.com/matzehuels/skyrender/pkg/io
package pkg
