package alpha

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountNodataRegions(t *testing.T) {
	arr := filledBlock[uint8](1, 6, 6, 10)
	arr.Set(0, 0, 0, 255)
	arr.Set(0, 1, 1, 255)
	arr.Set(0, 4, 4, 255)

	tests := []struct {
		name string
		ndv  Nodata
		conn Connectivity
		want int
	}{
		{"Eight", Nodata{255}, Connectivity8, 2},
		{"Four", Nodata{255}, Connectivity4, 3},
		{"NoNodata", Nodata{0}, Connectivity8, 0},
		{"AllNodata", Nodata{10}, Connectivity8, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := CountNodataRegions(arr, tt.ndv, tt.conn)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n)
		})
	}
}

func TestCountNodataRegions_Uint16(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	arr := NewBlock[uint16](3, 10, 10)
	for i := range arr.Pix {
		arr.Pix[i] = uint16(r.Intn(65536))
	}
	n, err := CountNodataRegions(arr, Nodata{1, 2, 3}, Connectivity8)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, 0)
}

func TestCountNodataRegions_ShapeMismatch(t *testing.T) {
	arr := filledBlock[uint8](3, 2, 2, 0)
	_, err := CountNodataRegions(arr, Nodata{0, 0}, Connectivity8)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLabelRegions_Sizes(t *testing.T) {
	m := &Mask[uint8]{Rows: 3, Cols: 4, Pix: []uint8{
		0, 0, 255, 0,
		255, 255, 255, 0,
		0, 255, 255, 255,
	}}
	lab := LabelRegions(m, Connectivity4, 255)
	require.Equal(t, 3, lab.Count)
	assert.Equal(t, []int{2, 2, 1}, lab.Sizes)
	assert.Equal(t, int32(0), lab.Labels[2])
	assert.Equal(t, lab.Labels[3], lab.Labels[7])
}

func TestIsLossy(t *testing.T) {
	assert.False(t, IsLossy(0))
	assert.False(t, IsLossy(9))
	assert.True(t, IsLossy(10))
	assert.True(t, IsLossy(14666))
}

func TestParseConnectivity(t *testing.T) {
	c, err := ParseConnectivity(4)
	require.NoError(t, err)
	assert.Equal(t, Connectivity4, c)
	_, err = ParseConnectivity(6)
	assert.Error(t, err)
}
