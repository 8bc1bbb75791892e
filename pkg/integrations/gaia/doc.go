// Package gaia downloads Gaia DR3 gaia_source shards from the ESA CDN.
//
// The gaia_source release is split into several thousand gzip-compressed
// CSV files. Each file name encodes the HEALPix range it covers, e.g.
// GaiaSource_000000-003111.csv.gz. The directory also serves _MD5SUM.txt,
// which lists the checksum of every shard in "md5  filename" lines.
//
// [Client] only fetches bytes; decoding rows and verifying checksums is
// the job of package catalog.
package gaia
