package sky

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Colour table range: 1000 K to 40900 K in 100 K steps.
const (
	ColorTableSize  = 400
	ColorTableStart = 1000.0
	ColorTableStep  = 100.0
)

// White is the colour used for stars without a temperature estimate.
var White = [3]float32{1, 1, 1}

// ColorTable maps effective temperatures to normalized linear RGB.
// It is built once and only read afterwards.
type ColorTable [ColorTableSize][3]float32

// NewColorTable computes the blackbody colour of every table entry.
func NewColorTable() *ColorTable {
	var t ColorTable
	for i := range t {
		rgb := BlackbodyRGB(ColorTableStart + float64(i)*ColorTableStep)
		t[i] = [3]float32{float32(rgb[0]), float32(rgb[1]), float32(rgb[2])}
	}
	return &t
}

// Index returns the table slot for a temperature:
// floor((T - 1000) / 100) clamped to [0, 399].
func Index(kelvin float32) int {
	f := math.Floor((float64(kelvin) - ColorTableStart) / ColorTableStep)
	switch {
	case !(f > 0):
		return 0
	case f >= ColorTableSize-1:
		return ColorTableSize - 1
	}
	return int(f)
}

// Lookup returns the colour for a temperature. Unknown temperatures
// (zero, negative or NaN) are white.
func (t *ColorTable) Lookup(kelvin float32) [3]float32 {
	if !(kelvin > 0) {
		return White
	}
	return t[Index(kelvin)]
}

// Physical constants (SI, exact since the 2019 redefinition).
const (
	planck    = 6.62607015e-34
	lightC    = 2.99792458e8
	boltzmann = 1.380649e-23
)

// BlackbodyRGB returns the linear sRGB colour of a blackbody at the given
// temperature, scaled so that the largest channel is 1.
//
// Planck's law is integrated over 380-780 nm in 5 nm steps against the
// CIE 1931 2° colour matching functions (the multi-lobe Gaussian fit of
// Wyman, Sloan and Shirley), then converted from XYZ to linear sRGB.
// Negative channels, which occur for colours outside the sRGB gamut, are
// clamped to zero.
func BlackbodyRGB(kelvin float64) [3]float64 {
	var x, y, z float64
	for nm := 380.0; nm <= 780.0; nm += 5 {
		p := planckRadiance(nm*1e-9, kelvin)
		x += p * cieX(nm)
		y += p * cieY(nm)
		z += p * cieZ(nm)
	}

	r, g, b := colorful.XyzToLinearRgb(x, y, z)
	rgb := [3]float64{max(r, 0), max(g, 0), max(b, 0)}
	if m := max(rgb[0], rgb[1], rgb[2]); m > 0 {
		for i := range rgb {
			rgb[i] /= m
		}
	}
	return rgb
}

// planckRadiance is the spectral radiance of a blackbody at wavelength
// lambda (metres).
func planckRadiance(lambda, kelvin float64) float64 {
	l5 := lambda * lambda * lambda * lambda * lambda
	return 2 * planck * lightC * lightC / l5 / math.Expm1(planck*lightC/(lambda*boltzmann*kelvin))
}

// lobe is a piecewise Gaussian with different widths left and right of mu.
func lobe(x, mu, sigmaLo, sigmaHi float64) float64 {
	s := sigmaHi
	if x < mu {
		s = sigmaLo
	}
	t := (x - mu) / s
	return math.Exp(-0.5 * t * t)
}

func cieX(nm float64) float64 {
	return 1.056*lobe(nm, 599.8, 37.9, 31.0) + 0.362*lobe(nm, 442.0, 16.0, 26.7) - 0.065*lobe(nm, 501.1, 20.4, 26.2)
}

func cieY(nm float64) float64 {
	return 0.821*lobe(nm, 568.8, 46.9, 40.5) + 0.286*lobe(nm, 530.9, 16.3, 31.1)
}

func cieZ(nm float64) float64 {
	return 1.217*lobe(nm, 437.0, 11.8, 36.0) + 0.681*lobe(nm, 459.0, 26.0, 13.8)
}
