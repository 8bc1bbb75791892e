package render

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/skyrender/pkg/sky"
)

func TestToneMapScale(t *testing.T) {
	assert.Equal(t, float32(255*8), ToneMapScale(0))
	assert.Equal(t, float32(255), ToneMapScale(3))
	assert.Equal(t, float32(255*1024), ToneMapScale(-7))
}

func TestToByte(t *testing.T) {
	tests := []struct {
		in   float32
		want uint8
	}{
		{-1, 0},
		{0, 0},
		{0.9, 0},
		{127.7, 127},
		{255, 255},
		{1e9, 255},
		{float32(math.NaN()), 0},
		{float32(math.Inf(1)), 255},
	}
	for _, tt := range tests {
		if got := toByte(tt.in); got != tt.want {
			t.Errorf("toByte(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

// faceBuffer returns a buffer whose red channel tone maps to f+1 on face f
// at exposure 3.
func faceBuffer(res int) *sky.Buffer {
	buf := sky.NewBuffer(res)
	for f := range sky.NumFaces {
		for y := range res {
			for x := range res {
				buf.Add(f, x, y, [3]float32{(float32(f) + 1.5) / 255, 0, 1})
			}
		}
	}
	return buf
}

func TestFaceStrip(t *testing.T) {
	const res = 3
	img := FaceStrip(faceBuffer(res), 3) // scale 255

	require.Equal(t, image.Rect(0, 0, res, 6*res), img.Bounds())
	for f := range sky.NumFaces {
		c := img.NRGBAAt(1, f*res+1)
		assert.Equal(t, uint8(f+1), c.R, "face %d", f)
		assert.Equal(t, uint8(0), c.G)
		assert.Equal(t, uint8(255), c.B)
		assert.Equal(t, uint8(255), c.A)
	}
}

func TestNetLayout(t *testing.T) {
	const res = 2
	strip := FaceStrip(faceBuffer(res), 3)
	net := Net(strip, res)

	require.Equal(t, image.Rect(0, 0, 4*res, 3*res), net.Bounds())
	for f, cell := range NetCells {
		c := net.NRGBAAt(cell.X*res+1, cell.Y*res+1)
		assert.Equal(t, uint8(f+1), c.R, "face %d at cell %v", f, cell)
		assert.Equal(t, uint8(255), c.A)
	}

	// The corners of the cross are empty.
	for _, cell := range []image.Point{{0, 0}, {2, 0}, {3, 0}, {0, 2}, {2, 2}, {3, 2}} {
		c := net.NRGBAAt(cell.X*res, cell.Y*res)
		assert.Equal(t, uint8(0), c.A, "cell %v should be transparent", cell)
	}
}

func TestEncodePNG(t *testing.T) {
	strip := FaceStrip(faceBuffer(4), 3)
	var out bytes.Buffer
	require.NoError(t, EncodePNG(&out, strip))

	decoded, err := png.Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, strip.Bounds(), decoded.Bounds())
	r, _, _, _ := decoded.At(0, 5*4).RGBA()
	assert.Equal(t, uint32(6*0x101), r)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "cubemap-1024x1024.png", StripName(1024))
	assert.Equal(t, "net-0064x0064.png", NetName(64))
	assert.Equal(t, "hdr-cubemap-0004x0004.ktx2", KTX2Name(4))
}
