package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// maxLineSize bounds a single CSV row. gaia_source rows are a few
// kilobytes; anything longer is treated as a corrupt shard.
const maxLineSize = 1 << 20

// ShardStats counts the data rows of a decoded shard.
type ShardStats struct {
	Rows    int `json:"rows"`    // data rows seen, header and comments excluded
	Dropped int `json:"dropped"` // rows rejected by ParseRow
}

// Kept returns the number of rows that produced a record.
func (s ShardStats) Kept() int { return s.Rows - s.Dropped }

// DecodeShard decompresses a gzip shard and parses its rows.
// Read errors from r are returned unchanged (wrapped) so that callers can
// classify transport failures.
func DecodeShard(r io.Reader) ([]Record, ShardStats, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, ShardStats{}, fmt.Errorf("gzip header: %w", err)
	}
	defer zr.Close()
	return DecodeRows(zr)
}

// DecodeRows parses uncompressed shard text. Empty lines and lines starting
// with '#' are skipped, then the first remaining line is skipped as the
// column header.
func DecodeRows(r io.Reader) ([]Record, ShardStats, error) {
	var (
		records []Record
		stats   ShardStats
		header  = true
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := sc.Bytes()
		if len(bytes.TrimSuffix(line, []byte{'\r'})) == 0 || line[0] == '#' {
			continue
		}
		if header {
			header = false
			continue
		}
		stats.Rows++
		rec, ok := ParseRow(line)
		if !ok {
			stats.Dropped++
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, stats, fmt.Errorf("read rows: %w", err)
	}
	return records, stats, nil
}
