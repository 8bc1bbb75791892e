package render

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/skyrender/pkg/buildinfo"
	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	"github.com/matzehuels/skyrender/pkg/sky"
)

// KTX2 constants used by the writer.
const (
	VkFormatE5B9G9R9UfloatPack32 = 123

	SupercompressionNone = 0
	SupercompressionZstd = 2

	// MaxCompressionLevel is the highest zstd level accepted. Level 0
	// writes the level data uncompressed.
	MaxCompressionLevel = 22
)

// KTX2Identifier is the 12-byte file signature.
var KTX2Identifier = [12]byte{0xAB, 0x4B, 0x54, 0x58, 0x20, 0x32, 0x30, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}

const (
	ktx2HeaderSize     = 12 + 9*4 // identifier + header fields
	ktx2IndexSize      = 4*4 + 2*8
	ktx2LevelIndexSize = 3 * 8
	ktx2DFDOffset      = ktx2HeaderSize + ktx2IndexSize + ktx2LevelIndexSize

	dfdSampleCount = 6
	dfdBlockSize   = 24 + 16*dfdSampleCount
	dfdTotalSize   = 4 + dfdBlockSize
)

// Data format descriptor values (Khronos Data Format Specification).
const (
	dfdVersion          = 2
	dfdModelRGBSDA      = 1
	dfdPrimariesBT709   = 1
	dfdTransferLinear   = 1
	dfdQualifierExp     = 0x20
	dfdMantissaUpper    = 8448
	dfdExponentLower    = 15
	dfdExponentUpper    = 31
	dfdMantissaBitWidth = 9
	dfdExponentBitWidth = 5
	dfdExponentOffset   = 27
)

// KTX2Options configures [EncodeKTX2].
type KTX2Options struct {
	// CompressionLevel is the zstd level, 1-22. Zero disables
	// supercompression.
	CompressionLevel int

	// Writer is stored in the KTXwriter metadata entry. Empty means
	// "skyrender <version>".
	Writer string
}

// PackBuffer encodes every texel of buf as little-endian E5B9G9R9 in
// buffer order, which is the KTX2 face-major layout.
func PackBuffer(buf *sky.Buffer) []byte {
	out := make([]byte, 0, len(buf.Data)/3*4)
	for i := 0; i < len(buf.Data); i += 3 {
		out = binary.LittleEndian.AppendUint32(out, PackRGB9E5(buf.Data[i], buf.Data[i+1], buf.Data[i+2]))
	}
	return out
}

// EncodeKTX2 writes buf as a single-level KTX2 cubemap.
func EncodeKTX2(w io.Writer, buf *sky.Buffer, opts KTX2Options) error {
	if err := skyerrors.ValidateRange("compression level", opts.CompressionLevel, 0, MaxCompressionLevel); err != nil {
		return err
	}
	writer := opts.Writer
	if writer == "" {
		writer = "skyrender " + buildinfo.Version
	}

	level := PackBuffer(buf)
	uncompressed := uint64(len(level))
	scheme := uint32(SupercompressionNone)
	if opts.CompressionLevel > 0 {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(opts.CompressionLevel)),
			zstd.WithEncoderConcurrency(1))
		if err != nil {
			return skyerrors.Wrap(skyerrors.ErrCodeEncode, err, "zstd encoder")
		}
		level = enc.EncodeAll(level, nil)
		enc.Close()
		scheme = SupercompressionZstd
	}

	kvd := keyValue("KTXwriter", writer)
	kvdOffset := ktx2DFDOffset + dfdTotalSize
	levelOffset := kvdOffset + len(kvd) // already 4-byte aligned

	b := make([]byte, 0, levelOffset+len(level))
	b = append(b, KTX2Identifier[:]...)

	le := binary.LittleEndian
	res := uint32(buf.Res)
	for _, v := range []uint32{
		VkFormatE5B9G9R9UfloatPack32,
		4,   // typeSize
		res, // pixelWidth
		res, // pixelHeight
		0,   // pixelDepth
		0,   // layerCount
		sky.NumFaces,
		1, // levelCount
		scheme,
	} {
		b = le.AppendUint32(b, v)
	}

	// Index.
	b = le.AppendUint32(b, ktx2DFDOffset)
	b = le.AppendUint32(b, dfdTotalSize)
	b = le.AppendUint32(b, uint32(kvdOffset))
	b = le.AppendUint32(b, uint32(len(kvd)))
	b = le.AppendUint64(b, 0) // sgdByteOffset
	b = le.AppendUint64(b, 0) // sgdByteLength

	// Level index.
	b = le.AppendUint64(b, uint64(levelOffset))
	b = le.AppendUint64(b, uint64(len(level)))
	b = le.AppendUint64(b, uncompressed)

	b = appendDFD(b, scheme != SupercompressionNone)
	b = append(b, kvd...)
	if len(b) != levelOffset {
		return skyerrors.New(skyerrors.ErrCodeInternal, "ktx2 level offset %d, header ends at %d", levelOffset, len(b))
	}
	b = append(b, level...)

	if _, err := w.Write(b); err != nil {
		return skyerrors.Wrap(skyerrors.ErrCodeEncode, err, "write ktx2")
	}
	return nil
}

// appendDFD appends the basic data format descriptor for E5B9G9R9.
func appendDFD(b []byte, supercompressed bool) []byte {
	le := binary.LittleEndian
	b = le.AppendUint32(b, dfdTotalSize)
	b = le.AppendUint32(b, 0) // vendorId 0 (Khronos), descriptorType 0 (basic)
	b = le.AppendUint16(b, dfdVersion)
	b = le.AppendUint16(b, dfdBlockSize)
	b = append(b, dfdModelRGBSDA, dfdPrimariesBT709, dfdTransferLinear, 0)
	b = append(b, 0, 0, 0, 0) // texelBlockDimension: 1×1×1×1

	var bytesPlane0 byte = 4
	if supercompressed {
		bytesPlane0 = 0
	}
	b = append(b, bytesPlane0, 0, 0, 0, 0, 0, 0, 0)

	for ch := range 3 {
		// mantissa
		b = appendSample(b, uint16(ch*dfdMantissaBitWidth), dfdMantissaBitWidth, byte(ch), 0, dfdMantissaUpper)
		// shared exponent
		b = appendSample(b, dfdExponentOffset, dfdExponentBitWidth, byte(ch)|dfdQualifierExp, dfdExponentLower, dfdExponentUpper)
	}
	return b
}

func appendSample(b []byte, offset uint16, length int, channel byte, lower, upper uint32) []byte {
	le := binary.LittleEndian
	b = le.AppendUint16(b, offset)
	b = append(b, byte(length-1), channel)
	b = append(b, 0, 0, 0, 0) // samplePosition
	b = le.AppendUint32(b, lower)
	return le.AppendUint32(b, upper)
}

// keyValue encodes one key/value entry padded to a multiple of 4 bytes.
// Key and value are NUL terminated.
func keyValue(key, value string) []byte {
	kv := fmt.Sprintf("%s\x00%s\x00", key, value)
	b := binary.LittleEndian.AppendUint32(nil, uint32(len(kv)))
	b = append(b, kv...)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	return b
}
