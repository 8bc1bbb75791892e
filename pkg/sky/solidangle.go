package sky

import "math"

// TotalSolidAngle is the solid angle of the full sphere.
const TotalSolidAngle = 4 * math.Pi

// TexelSolidAngle returns the solid angle in steradians subtended by texel
// (x, y) of a cube face with res texels per edge.
func TexelSolidAngle(x, y, res int) float64 {
	inv := 1 / float64(res)
	u := 2*(float64(x)+0.5)*inv - 1
	v := 2*(float64(y)+0.5)*inv - 1
	u0, u1 := u-inv, u+inv
	v0, v1 := v-inv, v+inv
	return area(u0, v0) - area(u0, v1) - area(u1, v0) + area(u1, v1)
}

// area is the solid angle of the face rectangle between the face centre
// and (p, q).
func area(p, q float64) float64 {
	return math.Atan2(p*q, math.Sqrt(p*p+q*q+1))
}

// Normalize divides every texel of buf by its solid angle, turning
// accumulated flux into radiance. The weights are the same for all faces.
// Texels whose solid angle underflows, so that the reciprocal is not a
// finite float32, are set to zero; their number is returned.
func Normalize(buf *Buffer) (degenerate int) {
	res := buf.Res
	weights := make([]float32, res*res)
	bad := make([]bool, res*res)
	for y := range res {
		for x := range res {
			w, ok := texelWeight(TexelSolidAngle(x, y, res))
			if !ok {
				bad[y*res+x] = true
				continue
			}
			weights[y*res+x] = w
		}
	}

	for face := range NumFaces {
		for i, w := range weights {
			j := (face*res*res + i) * 3
			if bad[i] {
				buf.Data[j], buf.Data[j+1], buf.Data[j+2] = 0, 0, 0
				degenerate++
				continue
			}
			buf.Data[j] *= w
			buf.Data[j+1] *= w
			buf.Data[j+2] *= w
		}
	}
	return degenerate
}

// texelWeight returns 1/sa as a float32, or false when sa is not positive
// or the reciprocal does not fit.
func texelWeight(sa float64) (float32, bool) {
	if !(sa > 0) {
		return 0, false
	}
	w := float32(1 / sa)
	if math.IsInf(float64(w), 0) || math.IsNaN(float64(w)) {
		return 0, false
	}
	return w, true
}
