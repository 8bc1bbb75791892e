package render

import "math"

// Shared exponent format parameters: 9-bit mantissas, 5-bit exponent
// with bias 15.
const (
	rgb9e5MantissaBits = 9
	rgb9e5ExpBias      = 15

	// MaxRGB9E5 is the largest representable channel value,
	// (511/512) · 2^16.
	MaxRGB9E5 = float32(65408)
)

// PackRGB9E5 encodes a linear RGB triple as E5B9G9R9: red in bits 0-8,
// green in 9-17, blue in 18-26 and the shared exponent in 27-31.
// Negative and NaN channels encode as 0; values above [MaxRGB9E5] clamp.
func PackRGB9E5(r, g, b float32) uint32 {
	rc, gc, bc := clampRGB9E5(r), clampRGB9E5(g), clampRGB9E5(b)
	maxc := max(rc, gc, bc)

	exp := -rgb9e5ExpBias - 1
	if maxc > 0 {
		exp = max(exp, int(math.Floor(math.Log2(maxc))))
	}
	exp += 1 + rgb9e5ExpBias

	denom := math.Exp2(float64(exp - rgb9e5ExpBias - rgb9e5MantissaBits))
	if int(math.Floor(maxc/denom+0.5)) == 1<<rgb9e5MantissaBits {
		denom *= 2
		exp++
	}

	rm := uint32(math.Floor(rc/denom + 0.5))
	gm := uint32(math.Floor(gc/denom + 0.5))
	bm := uint32(math.Floor(bc/denom + 0.5))
	return rm | gm<<9 | bm<<18 | uint32(exp)<<27
}

// UnpackRGB9E5 decodes a value produced by [PackRGB9E5].
func UnpackRGB9E5(p uint32) [3]float32 {
	exp := int(p>>27) - rgb9e5ExpBias - rgb9e5MantissaBits
	scale := math.Exp2(float64(exp))
	return [3]float32{
		float32(float64(p&0x1ff) * scale),
		float32(float64(p>>9&0x1ff) * scale),
		float32(float64(p>>18&0x1ff) * scale),
	}
}

func clampRGB9E5(c float32) float64 {
	switch {
	case !(c > 0):
		return 0
	case c > MaxRGB9E5:
		return float64(MaxRGB9E5)
	}
	return float64(c)
}
