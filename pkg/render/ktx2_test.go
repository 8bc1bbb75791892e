package render

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/skyrender/pkg/sky"
)

type ktx2File struct {
	header      [9]uint32
	dfdOffset   uint32
	dfdLength   uint32
	kvdOffset   uint32
	kvdLength   uint32
	levelOffset uint64
	levelLength uint64
	levelRaw    uint64
	data        []byte
}

func parseKTX2(t *testing.T, b []byte) ktx2File {
	t.Helper()
	require.GreaterOrEqual(t, len(b), ktx2DFDOffset)
	require.Equal(t, KTX2Identifier[:], b[:12])

	le := binary.LittleEndian
	var f ktx2File
	for i := range f.header {
		f.header[i] = le.Uint32(b[12+4*i:])
	}
	f.dfdOffset = le.Uint32(b[48:])
	f.dfdLength = le.Uint32(b[52:])
	f.kvdOffset = le.Uint32(b[56:])
	f.kvdLength = le.Uint32(b[60:])
	f.levelOffset = le.Uint64(b[80:])
	f.levelLength = le.Uint64(b[88:])
	f.levelRaw = le.Uint64(b[96:])
	f.data = b
	return f
}

func testBuffer() *sky.Buffer {
	buf := sky.NewBuffer(4)
	for i := range buf.Data {
		buf.Data[i] = float32(i%97) * 0.37
	}
	return buf
}

func TestEncodeKTX2Zstd(t *testing.T) {
	buf := testBuffer()
	var out bytes.Buffer
	require.NoError(t, EncodeKTX2(&out, buf, KTX2Options{CompressionLevel: 22, Writer: "test"}))

	f := parseKTX2(t, out.Bytes())
	assert.Equal(t, [9]uint32{123, 4, 4, 4, 0, 0, 6, 1, SupercompressionZstd}, f.header)
	assert.Equal(t, uint32(104), f.dfdOffset)
	assert.Equal(t, uint32(124), f.dfdLength)
	assert.Equal(t, uint32(228), f.kvdOffset)
	assert.Zero(t, f.kvdLength%4)
	assert.Equal(t, uint64(f.kvdOffset+f.kvdLength), f.levelOffset)
	assert.Equal(t, uint64(6*4*4*4), f.levelRaw)
	assert.Equal(t, uint64(out.Len()), f.levelOffset+f.levelLength)

	// DFD: total size, block size, bytesPlane0 = 0 when supercompressed.
	dfd := f.data[f.dfdOffset:]
	assert.Equal(t, uint32(124), binary.LittleEndian.Uint32(dfd[0:]))
	assert.Equal(t, uint16(120), binary.LittleEndian.Uint16(dfd[10:]))
	assert.Equal(t, []byte{1, 1, 1, 0}, dfd[12:16])
	assert.Equal(t, byte(0), dfd[20])

	// Second sample is the red shared exponent.
	s := dfd[28+16:]
	assert.Equal(t, uint16(27), binary.LittleEndian.Uint16(s[0:]))
	assert.Equal(t, byte(4), s[2])
	assert.Equal(t, byte(0x20), s[3])

	kv := f.data[f.kvdOffset+4 : f.kvdOffset+f.kvdLength]
	assert.True(t, bytes.HasPrefix(kv, []byte("KTXwriter\x00test\x00")))

	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	level, err := dec.DecodeAll(f.data[f.levelOffset:], nil)
	require.NoError(t, err)
	assert.Equal(t, PackBuffer(buf), level)
}

func TestEncodeKTX2Uncompressed(t *testing.T) {
	buf := testBuffer()
	var out bytes.Buffer
	require.NoError(t, EncodeKTX2(&out, buf, KTX2Options{}))

	f := parseKTX2(t, out.Bytes())
	assert.Equal(t, uint32(SupercompressionNone), f.header[8])
	assert.Equal(t, f.levelRaw, f.levelLength)
	assert.Zero(t, f.levelOffset%4)
	assert.Equal(t, byte(4), f.data[f.dfdOffset+20], "bytesPlane0")
	assert.Equal(t, PackBuffer(buf), f.data[f.levelOffset:])
}

func TestEncodeKTX2RejectsLevel(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, EncodeKTX2(&out, sky.NewBuffer(1), KTX2Options{CompressionLevel: 23}))
	assert.Error(t, EncodeKTX2(&out, sky.NewBuffer(1), KTX2Options{CompressionLevel: -1}))
	assert.Zero(t, out.Len())
}
