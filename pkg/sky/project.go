package sky

import "math"

// Vec3 is a direction in the catalog's equatorial frame.
type Vec3 struct{ X, Y, Z float64 }

// Direction converts right ascension and declination in degrees to a
// unit vector.
func Direction(raDeg, decDeg float64) Vec3 {
	ra := raDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180
	sinRA, cosRA := math.Sincos(ra)
	sinDec, cosDec := math.Sincos(dec)
	return Vec3{
		X: -sinRA * cosDec,
		Y: cosRA * cosDec,
		Z: sinDec,
	}
}

// Project selects the cubemap face hit by d and the texel within it for a
// face edge of res texels.
//
// Faces are tested in the fixed order +X, -X, +Y, -Y, +Z, -Z and the first
// whose axis component is at least the other two wins, so ties on cube
// edges and corners always resolve the same way.
func Project(d Vec3, res int) (face, x, y int) {
	ax, ay, az := math.Abs(d.X), math.Abs(d.Y), math.Abs(d.Z)

	var u, v float64
	switch {
	case d.X >= max(ay, az):
		face, u, v = FacePosX, d.Z, d.Y
	case -d.X >= max(ay, az):
		face, u, v = FaceNegX, -d.Z, d.Y
	case d.Y >= max(ax, az):
		face, u, v = FacePosY, d.X, d.Z
	case -d.Y >= max(ax, az):
		face, u, v = FaceNegY, d.X, -d.Z
	case d.Z >= max(ax, ay):
		face, u, v = FacePosZ, -d.X, d.Y
	default:
		face, u, v = FaceNegZ, d.X, d.Y
	}

	m := max(ax, ay, az)
	return face, texel(u/m, res), texel(v/m, res)
}

// texel maps a face coordinate in [-1, 1] to [0, res-1].
func texel(c float64, res int) int {
	f := math.Floor((c*0.5 + 0.5) * float64(res))
	switch {
	case !(f >= 0): // also catches NaN
		return 0
	case f >= float64(res):
		return res - 1
	}
	return int(f)
}
