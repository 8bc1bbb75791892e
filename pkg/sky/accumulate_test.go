package sky

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/skyrender/pkg/catalog"
)

func TestFluxStrictlyDecreasing(t *testing.T) {
	prev := Flux(-30)
	for mag := float32(-29.5); mag <= 25; mag += 0.5 {
		f := Flux(mag)
		if !(f < prev) {
			t.Fatalf("Flux(%v) = %v is not below Flux(%v) = %v", mag, f, mag-0.5, prev)
		}
		prev = f
	}
}

func TestFluxZeroPoint(t *testing.T) {
	assert.InDelta(t, 1.0, Flux(-ZeroPoint), 1e-6)
	assert.InDelta(t, 100.0, Flux(-ZeroPoint-5), 1e-4)
}

func TestAccumulateSunLikeStar(t *testing.T) {
	buf := NewBuffer(4)
	acc := NewAccumulator(buf, NewColorTable(), DefaultMinMagnitude)
	acc.Add(catalog.Record{RA: 0, Dec: 0, Magnitude: 0, Temperature: 5800})
	Normalize(buf)

	assert.Equal(t, 1, buf.NonZero(), "exactly one texel is lit")
	texel := buf.Texel(3, 2, 2)
	for c := range 3 {
		assert.Greater(t, texel[c], float32(0))
	}
	assert.Empty(t, acc.BrightStars())
	assert.Equal(t, 1, acc.Rasterized())
}

func TestAccumulateAdditive(t *testing.T) {
	colors := NewColorTable()
	buf := NewBuffer(8)
	acc := NewAccumulator(buf, colors, DefaultMinMagnitude)
	r := catalog.Record{RA: 45, Dec: 10, Magnitude: 5}
	acc.Add(r)
	acc.Add(r)

	face, x, y := Project(Direction(45, 10), 8)
	got := buf.Texel(face, x, y)
	want := 2 * Flux(5)
	assert.InDelta(t, want, got[0], float64(want)*1e-6)
	assert.Equal(t, got[0], got[1], "unknown temperature is white")
	assert.Equal(t, got[0], got[2])
}

func TestAccumulateBrightStarLeavesBufferUntouched(t *testing.T) {
	colors := NewColorTable()
	buf := NewBuffer(4)
	acc := NewAccumulator(buf, colors, -10)

	acc.Add(catalog.Record{RA: 180, Dec: 45, Magnitude: -12, Temperature: 9000})

	for i, v := range buf.Data {
		require.Zerof(t, v, "buffer element %d changed", i)
	}
	stars := acc.BrightStars()
	require.Len(t, stars, 1)
	assert.InDelta(t, 3.14159265, stars[0].RA, 1e-6)
	assert.InDelta(t, 0.78539816, stars[0].Dec, 1e-6)
	assert.Equal(t, float32(-12), stars[0].Magnitude)
	assert.Equal(t, 0, acc.Rasterized())

	// The cutoff itself is rasterized.
	acc.Add(catalog.Record{RA: 0, Dec: 0, Magnitude: -10})
	assert.Len(t, acc.BrightStars(), 1)
	assert.Equal(t, 1, buf.NonZero())
}

func TestAccumulateSkipsNonFinite(t *testing.T) {
	buf := NewBuffer(4)
	acc := NewAccumulator(buf, NewColorTable(), DefaultMinMagnitude)
	nan := float32(math.NaN())
	acc.Add(catalog.Record{RA: nan, Dec: 0, Magnitude: 5})
	acc.Add(catalog.Record{RA: 0, Dec: 0, Magnitude: nan})
	assert.Equal(t, 2, acc.Skipped())
	assert.Equal(t, 0, buf.NonZero())
}

func TestBufferMerge(t *testing.T) {
	colors := NewColorTable()
	records := []catalog.Record{
		{RA: 10, Dec: 20, Magnitude: 4, Temperature: 3000},
		{RA: 200, Dec: -60, Magnitude: 6, Temperature: 12000},
		{RA: 10, Dec: 20, Magnitude: 7},
	}

	whole := NewBuffer(8)
	NewAccumulator(whole, colors, DefaultMinMagnitude).AddAll(records)

	a, b := NewBuffer(8), NewBuffer(8)
	NewAccumulator(a, colors, DefaultMinMagnitude).AddAll(records[:1])
	NewAccumulator(b, colors, DefaultMinMagnitude).AddAll(records[1:])
	require.NoError(t, a.Merge(b))

	for i := range whole.Data {
		assert.InDelta(t, whole.Data[i], a.Data[i], 1e-12)
	}

	assert.Error(t, a.Merge(NewBuffer(4)))
}
