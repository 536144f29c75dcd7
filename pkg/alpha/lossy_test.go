package alpha

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskThreshold(t *testing.T) {
	arr := filledBlock[uint8](3, 2, 2, 255)
	// (0,0) stays at ndv
	set := func(row, col int, px ...uint8) {
		for b, v := range px {
			arr.Set(b, row, col, v)
		}
	}
	set(0, 1, 250, 250, 250)
	set(1, 0, 240, 255, 255)
	set(1, 1, 255, 255, 247)

	m, err := MaskThreshold(arr, Nodata{255, 255, 255}, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 255, 255}, m.Pix)
}

func TestMaskThreshold_SharedWindow(t *testing.T) {
	// per band windows would mark this pixel opaque; the shared window
	// [-7, 107] accepts it
	arr := filledBlock[uint8](3, 1, 1, 50)
	m, err := MaskThreshold(arr, Nodata{0, 100, 0}, 7)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), m.Pix[0])
}

func TestSieve(t *testing.T) {
	m := NewMask[uint8](10, 10)
	m.Fill(255)
	m.Pix[5*10+5] = 0
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			m.Pix[y*10+x] = 0
		}
	}
	orig := m.Clone()

	out := Sieve(m, 5, Connectivity8)
	assert.Equal(t, uint8(255), out.At(5, 5), "speck merged into surroundings")
	assert.Equal(t, 9, out.Count(0), "large region kept")
	assert.Equal(t, orig.Pix, m.Pix, "input must not be modified")
}

func TestSieve_SingleRegion(t *testing.T) {
	m := NewMask[uint16](4, 4)
	out := Sieve(m, 100, Connectivity8)
	assert.Equal(t, 16, out.Count(0))
}

func TestSieve_DiagonalSpeckIsOneRegion(t *testing.T) {
	m := NewMask[uint8](8, 8)
	m.Fill(255)
	m.Pix[2*8+2] = 0
	m.Pix[3*8+3] = 0

	// two diagonal pixels form one 8-connected region of size 2
	assert.Equal(t, 2, Sieve(m, 2, Connectivity8).Count(0))
	assert.Equal(t, 0, Sieve(m, 3, Connectivity8).Count(0))
}

func TestErode(t *testing.T) {
	m := NewMask[uint8](12, 12)
	m.Fill(255)
	m.Pix[6*12+6] = 0

	out := Erode(m, ErodeSize)
	assert.Equal(t, 25, out.Count(0))
	assert.Equal(t, uint8(0), out.At(4, 4))
	assert.Equal(t, uint8(0), out.At(8, 8))
	assert.Equal(t, uint8(255), out.At(3, 6))
	assert.Equal(t, uint8(255), out.At(6, 9))
}

func TestErode_Corner(t *testing.T) {
	m := NewMask[uint8](6, 6)
	m.Fill(255)
	m.Pix[0] = 0
	assert.Equal(t, 9, Erode(m, ErodeSize).Count(0))
}

func TestBinarize(t *testing.T) {
	m := &Mask[uint8]{Rows: 1, Cols: 4, Pix: []uint8{0, 3, 254, 255}}
	assert.Equal(t, []uint8{0, 0, 0, 255}, Binarize(m).Pix)
}

func TestMaskLossy(t *testing.T) {
	const rows, cols = 40, 40
	arr := NewBlock[uint8](3, rows, cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for b := 0; b < 3; b++ {
				if x < 20 {
					// nodata collar with compression noise
					arr.Set(b, y, x, uint8(252+(x+y+b)%4))
				} else {
					arr.Set(b, y, x, 100)
				}
			}
		}
	}
	// an opaque speck inside the collar
	for b := 0; b < 3; b++ {
		arr.Set(b, 5, 5, 120)
	}

	var stages []string
	m, err := MaskLossy(arr, Nodata{255, 255, 255}, LossyOptions{
		Threshold: DefaultThreshold,
		Debug: func(stage string, img image.Image) {
			stages = append(stages, stage)
			assert.Equal(t, image.Rect(0, 0, cols, rows), img.Bounds())
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"threshold", "sieved", "eroded"}, stages)

	assert.Equal(t, rows*(cols-22), m.Count(255))
	assert.Equal(t, rows*cols, m.Count(255)+m.Count(0))
	assert.Equal(t, uint8(0), m.At(5, 5))
	assert.Equal(t, uint8(0), m.At(10, 21))
	assert.Equal(t, uint8(255), m.At(10, 22))
}

func TestMaskLossy_ShapeMismatch(t *testing.T) {
	arr := filledBlock[uint8](3, 4, 4, 0)
	_, err := MaskLossy(arr, Nodata{0}, LossyOptions{})
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestMaskLossy_ZeroThreshold(t *testing.T) {
	arr := filledBlock[uint8](3, 40, 40, 3)
	ndv := Nodata{0, 0, 0}

	exact, err := MaskLossy(arr, ndv, LossyOptions{Threshold: 0})
	require.NoError(t, err)
	assert.Equal(t, 40*40, exact.Count(255), "0 is an exact match, not the default")

	loose, err := MaskLossy(arr, ndv, LossyOptions{Threshold: DefaultThreshold})
	require.NoError(t, err)
	assert.Equal(t, 40*40, loose.Count(0))
}

func TestMaskLossy_InvalidInput(t *testing.T) {
	arr := filledBlock[uint8](3, 4, 4, 0)
	_, err := MaskLossy(arr, Nodata{0, 0, 0}, LossyOptions{Threshold: -1})
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = MaskLossy(arr, Nodata{0, 0, 0}, LossyOptions{SieveSize: -1})
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = MaskLossy[uint8](nil, Nodata{0, 0, 0}, LossyOptions{})
	assert.Error(t, err)
}
