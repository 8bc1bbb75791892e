package sky

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/matzehuels/skyrender/pkg/catalog"
)

// BrightStarSize is the encoded size of a [BrightStar].
const BrightStarSize = 16

// BrightStar is a star too bright to rasterize, kept as a point source.
type BrightStar struct {
	RA, Dec   float32 // radians
	Magnitude float32
	R, G, B   uint8
}

// NewBrightStar converts a catalog record and its colour.
func NewBrightStar(r catalog.Record, color [3]float32) BrightStar {
	return BrightStar{
		RA:        float32(float64(r.RA) * math.Pi / 180),
		Dec:       float32(float64(r.Dec) * math.Pi / 180),
		Magnitude: r.Magnitude,
		R:         colorByte(color[0]),
		G:         colorByte(color[1]),
		B:         colorByte(color[2]),
	}
}

func colorByte(c float32) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, float64(c))) * 255))
}

// AppendBinary appends the 16-byte little-endian record:
// ra, dec, mag as float32, then r, g, b and one zero pad byte.
func (s BrightStar) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(s.RA))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(s.Dec))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(s.Magnitude))
	return append(b, s.R, s.G, s.B, 0), nil
}

// EncodeBrightStars encodes stars back to back in order.
func EncodeBrightStars(stars []BrightStar) []byte {
	b := make([]byte, 0, len(stars)*BrightStarSize)
	for _, s := range stars {
		b, _ = s.AppendBinary(b)
	}
	return b
}

// DecodeBrightStars parses the output of [EncodeBrightStars].
func DecodeBrightStars(data []byte) ([]BrightStar, error) {
	if len(data)%BrightStarSize != 0 {
		return nil, fmt.Errorf("bright star list: %d bytes is not a multiple of %d", len(data), BrightStarSize)
	}
	stars := make([]BrightStar, len(data)/BrightStarSize)
	for i := range stars {
		b := data[i*BrightStarSize:]
		stars[i] = BrightStar{
			RA:        math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
			Dec:       math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
			Magnitude: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
			R:         b[12],
			G:         b[13],
			B:         b[14],
		}
	}
	return stars, nil
}
