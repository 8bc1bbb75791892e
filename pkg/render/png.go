package render

import (
	"image"
	"image/png"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	"github.com/matzehuels/skyrender/pkg/sky"
)

// NetCells gives the (column, row) of each face slot in the 4×3 net.
var NetCells = [sky.NumFaces]image.Point{
	{2, 1}, {0, 1}, {1, 0}, {1, 2}, {1, 1}, {3, 1},
}

// ToneMapScale returns the factor mapping linear radiance to 8-bit values
// at exposure value ev.
func ToneMapScale(ev float64) float32 {
	return float32(255 * math.Exp2(3-ev))
}

// toByte clamps v to [0, 255] and truncates. NaN maps to 0.
func toByte(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

// FaceStrip tone maps buf into an opaque res × 6·res image with the faces
// stacked top to bottom in slot order.
func FaceStrip(buf *sky.Buffer, ev float64) *image.NRGBA {
	res := buf.Res
	scale := ToneMapScale(ev)
	img := image.NewNRGBA(image.Rect(0, 0, res, sky.NumFaces*res))
	for i, j := 0, 0; i < len(buf.Data); i, j = i+3, j+4 {
		img.Pix[j] = toByte(buf.Data[i] * scale)
		img.Pix[j+1] = toByte(buf.Data[i+1] * scale)
		img.Pix[j+2] = toByte(buf.Data[i+2] * scale)
		img.Pix[j+3] = 255
	}
	return img
}

// Net copies the faces of a strip into a 4·res × 3·res cross. Cells not
// covered by a face stay fully transparent.
func Net(strip image.Image, res int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 4*res, 3*res))
	b := strip.Bounds()
	for face, cell := range NetCells {
		src := image.Rect(0, face*res, res, (face+1)*res).Add(b.Min)
		draw.Copy(img, cell.Mul(res), strip, src, draw.Src, nil)
	}
	return img
}

// EncodePNG writes img as a PNG at the best compression level.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
		return skyerrors.Wrap(skyerrors.ErrCodeEncode, err, "encode png")
	}
	return nil
}
