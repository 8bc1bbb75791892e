package sky

import "fmt"

// Face slots of the cubemap. The slot order is the order faces are stored
// in a [Buffer] and in every encoded output.
const (
	FacePosX = 0
	FaceNegX = 1
	FaceNegY = 2
	FacePosY = 3
	FaceNegZ = 4
	FacePosZ = 5

	NumFaces = 6
)

// Buffer is a six-face float32 RGB cubemap. Data is face-major, row-major
// within a face, three channels per texel.
type Buffer struct {
	Res  int
	Data []float32
}

// NewBuffer allocates a zeroed buffer with faces of res × res texels.
func NewBuffer(res int) *Buffer {
	return &Buffer{Res: res, Data: make([]float32, NumFaces*res*res*3)}
}

// Index returns the offset of the red channel of a texel in Data.
func (b *Buffer) Index(face, x, y int) int {
	return ((face*b.Res+y)*b.Res + x) * 3
}

// Texel returns the RGB value of a texel.
func (b *Buffer) Texel(face, x, y int) [3]float32 {
	i := b.Index(face, x, y)
	return [3]float32{b.Data[i], b.Data[i+1], b.Data[i+2]}
}

// Add adds an RGB contribution to a texel.
func (b *Buffer) Add(face, x, y int, c [3]float32) {
	i := b.Index(face, x, y)
	b.Data[i] += c[0]
	b.Data[i+1] += c[1]
	b.Data[i+2] += c[2]
}

// Face returns the texels of one face, sharing storage with Data.
func (b *Buffer) Face(face int) []float32 {
	n := b.Res * b.Res * 3
	return b.Data[face*n : (face+1)*n]
}

// Merge adds o into b element-wise. Both buffers must have the same
// resolution.
func (b *Buffer) Merge(o *Buffer) error {
	if o.Res != b.Res || len(o.Data) != len(b.Data) {
		return fmt.Errorf("merge %d² buffer into %d² buffer", o.Res, b.Res)
	}
	for i, v := range o.Data {
		b.Data[i] += v
	}
	return nil
}

// NonZero counts texels with at least one non-zero channel.
func (b *Buffer) NonZero() int {
	n := 0
	for i := 0; i < len(b.Data); i += 3 {
		if b.Data[i] != 0 || b.Data[i+1] != 0 || b.Data[i+2] != 0 {
			n++
		}
	}
	return n
}
