package catalog

import (
	"bytes"
	"strconv"
)

// Column indices of the fields used from a gaia_source row.
const (
	ColRA          = 5   // ra, degrees
	ColDec         = 7   // dec, degrees
	ColMagnitude   = 69  // phot_g_mean_mag
	ColTemperature = 130 // teff_gspphot, kelvin
)

// Record is one star reduced to the fields the renderer needs.
//
// Temperature is 0 when the catalog has no estimate for the star.
type Record struct {
	RA          float32 // degrees
	Dec         float32 // degrees
	Magnitude   float32 // apparent G-band magnitude
	Temperature float32 // kelvin, 0 = unknown
}

// ParseRow parses one CSV data row. It reports false when the row must be
// dropped: too few columns, or a missing or non-numeric position or
// magnitude. A missing or non-numeric temperature yields 0.
func ParseRow(line []byte) (Record, bool) {
	line = bytes.TrimSuffix(line, []byte{'\r'})

	var fields [ColTemperature + 1][]byte
	n := 0
	for n <= ColTemperature {
		i := bytes.IndexByte(line, ',')
		if i < 0 {
			fields[n] = line
			n++
			break
		}
		fields[n] = line[:i]
		line = line[i+1:]
		n++
	}
	if n <= ColMagnitude {
		return Record{}, false
	}

	ra, ok := parseFloat(fields[ColRA])
	if !ok {
		return Record{}, false
	}
	dec, ok := parseFloat(fields[ColDec])
	if !ok {
		return Record{}, false
	}
	mag, ok := parseFloat(fields[ColMagnitude])
	if !ok {
		return Record{}, false
	}

	rec := Record{RA: ra, Dec: dec, Magnitude: mag}
	if n > ColTemperature {
		if t, ok := parseFloat(fields[ColTemperature]); ok {
			rec.Temperature = t
		}
	}
	return rec, true
}

func parseFloat(b []byte) (float32, bool) {
	if len(b) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(b), 32)
	if err != nil {
		return 0, false
	}
	return float32(v), true
}
