// Package catalog turns remote Gaia DR3 gaia_source shards into a local,
// compact binary cache of star records.
//
// # Overview
//
// A shard is a gzip-compressed CSV file. Every data row is reduced to a
// [Record] of four float32 values (right ascension, declination, G-band
// magnitude, effective temperature) and the records of one shard are
// stored as a single cache entry in the [Pack] format: little-endian
// float32 quadruples in source row order, 16 bytes per record.
//
// # Ingestion
//
// [Ingester] walks a [Manifest] with a bounded worker pool. Shards that are
// already cached are skipped without touching the network, so a second run
// over the same manifest is free. Missing shards are downloaded, checked
// against the manifest MD5, decoded and stored atomically. A failing shard
// never aborts the others; every outcome is recorded in the [Report].
//
//	ing := &catalog.Ingester{
//	    Source:  gaia.NewClient(time.Hour),
//	    Cache:   store,
//	    Workers: runtime.NumCPU(),
//	}
//	report, err := ing.Ingest(ctx, manifest)
//
// # Reading
//
// [Each] replays cached shards in manifest order, which keeps downstream
// accumulation deterministic.
package catalog
