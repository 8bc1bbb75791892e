package catalog

import (
	"encoding/binary"
	"math"

	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
)

// RecordSize is the packed size of one [Record] in bytes.
const RecordSize = 16

// Pack encodes records as little-endian float32 quadruples
// (ra, dec, mag, temp) in the given order.
func Pack(records []Record) []byte {
	buf := make([]byte, len(records)*RecordSize)
	for i, r := range records {
		b := buf[i*RecordSize:]
		binary.LittleEndian.PutUint32(b[0:], math.Float32bits(r.RA))
		binary.LittleEndian.PutUint32(b[4:], math.Float32bits(r.Dec))
		binary.LittleEndian.PutUint32(b[8:], math.Float32bits(r.Magnitude))
		binary.LittleEndian.PutUint32(b[12:], math.Float32bits(r.Temperature))
	}
	return buf
}

// Unpack decodes data produced by [Pack]. Data whose length is not a
// multiple of [RecordSize] is corrupt.
func Unpack(data []byte) ([]Record, error) {
	if len(data)%RecordSize != 0 {
		return nil, skyerrors.New(skyerrors.ErrCodeCacheIO,
			"corrupt shard cache: %d bytes is not a multiple of %d", len(data), RecordSize)
	}
	records := make([]Record, len(data)/RecordSize)
	for i := range records {
		b := data[i*RecordSize:]
		records[i] = Record{
			RA:          math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
			Dec:         math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			Magnitude:   math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
			Temperature: math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
		}
	}
	return records, nil
}
