package sky

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/skyrender/pkg/catalog"
)

func TestBrightStarEncoding(t *testing.T) {
	s := NewBrightStar(catalog.Record{RA: 180, Dec: 0, Magnitude: -11}, [3]float32{1, 0.5, 0})
	assert.Equal(t, uint8(255), s.R)
	assert.Equal(t, uint8(128), s.G)
	assert.Equal(t, uint8(0), s.B)

	data := EncodeBrightStars([]BrightStar{s, s})
	require.Len(t, data, 2*BrightStarSize)
	assert.Equal(t, []byte{255, 128, 0, 0}, data[12:16])

	back, err := DecodeBrightStars(data)
	require.NoError(t, err)
	assert.Equal(t, []BrightStar{s, s}, back)

	_, err = DecodeBrightStars(data[:15])
	assert.Error(t, err)
}
