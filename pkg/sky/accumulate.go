package sky

import (
	"math"

	"github.com/matzehuels/skyrender/pkg/catalog"
)

// ZeroPoint is the photometric zero point of the magnitude to flux
// conversion.
const ZeroPoint = 14.18

// DefaultMinMagnitude is the cutoff below which stars are not rasterized.
const DefaultMinMagnitude = -10

// Flux converts an apparent magnitude to linear flux:
// 10^(0.4 * (-mag - ZeroPoint)).
func Flux(mag float32) float32 {
	return float32(math.Pow(10, 0.4*(-float64(mag)-ZeroPoint)))
}

// Accumulator adds star records into a [Buffer].
//
// An Accumulator is not safe for concurrent use. To accumulate in
// parallel, give each worker its own Buffer and combine them with
// [Buffer.Merge].
type Accumulator struct {
	buf          *Buffer
	colors       *ColorTable
	minMagnitude float32

	bright     []BrightStar
	rasterized int
	skipped    int
}

// NewAccumulator returns an accumulator writing into buf. Records with a
// magnitude below minMagnitude are diverted to the bright-star list.
func NewAccumulator(buf *Buffer, colors *ColorTable, minMagnitude float32) *Accumulator {
	return &Accumulator{buf: buf, colors: colors, minMagnitude: minMagnitude}
}

// Add processes one record. Records with a non-finite position or
// magnitude are skipped.
func (a *Accumulator) Add(r catalog.Record) {
	if !finite(r.RA) || !finite(r.Dec) || !finite(r.Magnitude) {
		a.skipped++
		return
	}

	color := a.colors.Lookup(r.Temperature)

	if r.Magnitude < a.minMagnitude {
		a.bright = append(a.bright, NewBrightStar(r, color))
		return
	}

	face, x, y := Project(Direction(float64(r.RA), float64(r.Dec)), a.buf.Res)
	f := Flux(r.Magnitude)
	a.buf.Add(face, x, y, [3]float32{f * color[0], f * color[1], f * color[2]})
	a.rasterized++
}

// AddAll processes records in order.
func (a *Accumulator) AddAll(records []catalog.Record) {
	for _, r := range records {
		a.Add(r)
	}
}

// BrightStars returns the diverted stars in the order they were added.
func (a *Accumulator) BrightStars() []BrightStar { return a.bright }

// Rasterized returns the number of records added to the buffer.
func (a *Accumulator) Rasterized() int { return a.rasterized }

// Skipped returns the number of records ignored for non-finite values.
func (a *Accumulator) Skipped() int { return a.skipped }

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
