package catalog

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// csvRow builds a gaia_source-shaped row with the given values at the
// position, magnitude and temperature columns. Other columns are filler.
func csvRow(ra, dec, mag, teff string) string {
	fields := make([]string, 152)
	for i := range fields {
		fields[i] = "x"
	}
	fields[ColRA] = ra
	fields[ColDec] = dec
	fields[ColMagnitude] = mag
	fields[ColTemperature] = teff
	return strings.Join(fields, ",")
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(s)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func md5Hex(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}

// shardText returns a small shard: a comment block, a header and rows.
func shardText(rows ...string) string {
	var b strings.Builder
	b.WriteString("# Gaia DR3 test shard\n#\n")
	b.WriteString("solution_id,designation,source_id\n")
	for _, r := range rows {
		b.WriteString(r)
		b.WriteByte('\n')
	}
	return b.String()
}
