package findnodata

import (
	"context"
	"errors"
	"testing"

	"github.com/jpfielding/alpha.go/pkg/alpha"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grayImage builds a 3 band image whose bands are identical, calling fill
// once per pixel in row-major order.
func grayImage(rows, cols int, fill func(r, c int) int) *alpha.Block[uint16] {
	img := alpha.NewBlock[uint16](3, rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := uint16(fill(r, c))
			for b := 0; b < 3; b++ {
				img.Set(b, r, c, v)
			}
		}
	}
	return img
}

func uniques() func() int {
	next := 1000
	return func() int {
		next++
		return next
	}
}

func TestDiscover_Uniform(t *testing.T) {
	img := alpha.NewBlock[uint8](3, 8, 8)
	for i := range img.Pix {
		img.Pix[i] = 1
	}
	res, err := Discover(context.Background(), img, Options{})
	require.NoError(t, err)
	assert.Equal(t, Found, res.Status)
	assert.Equal(t, Candidate{1, 1, 1}, res.Candidate)
	assert.Equal(t, "[1, 1, 1]", res.Format(false))
}

func TestDiscover_AgreeingCandidates(t *testing.T) {
	u := uniques()
	// a nodata collar of (18, 51, 62) on the left third of the image
	img := alpha.NewBlock[uint16](3, 30, 30)
	for r := 0; r < 30; r++ {
		for c := 0; c < 30; c++ {
			px := [3]int{18, 51, 62}
			if c >= 10 {
				v := u()
				px = [3]int{v, v + 1, v + 2}
			}
			for b := 0; b < 3; b++ {
				img.Set(b, r, c, uint16(px[b]))
			}
		}
	}
	res, err := Discover(context.Background(), img, Options{})
	require.NoError(t, err)
	assert.Equal(t, Found, res.Status)
	assert.Equal(t, "[18, 51, 62]", res.Format(true))
	assert.Equal(t, alpha.Nodata{18, 51, 62}, res.Candidate.Nodata())
}

func TestDiscover_EdgePrefersOriginal(t *testing.T) {
	u := uniques()
	img := grayImage(8, 8, func(r, c int) int {
		switch {
		case c == 0 || c == 7:
			return 50
		case r == 1:
			return 80
		}
		return u()
	})

	im, err := Downsample(img)
	require.NoError(t, err)
	original, err := Mode(im.Pix)
	require.NoError(t, err)
	continuous, _, err := im.ContinuousCandidate(AxisCols)
	require.NoError(t, err)
	assert.Equal(t, Candidate{50, 50, 50}, original)
	assert.Equal(t, Candidate{80, 80, 80}, continuous)

	ec := im.SearchEdge(original, continuous)
	assert.Equal(t, [2]int{20, 0}, ec.Full)
	assert.Equal(t, [2]int{17, 0}, ec.Continuous)

	res, err := Discover(context.Background(), img, Options{})
	require.NoError(t, err)
	assert.Equal(t, Found, res.Status)
	assert.Equal(t, Candidate{50, 50, 50}, res.Candidate)
}

func TestDiscover_EdgePrefersContinuous(t *testing.T) {
	u := uniques()
	img := grayImage(12, 12, func(r, c int) int {
		switch {
		case r == 0:
			return 80
		case r < 11 && c > 0 && c < 11 && c%2 == 1:
			return 50
		}
		return u()
	})

	res, err := Discover(context.Background(), img, Options{})
	require.NoError(t, err)
	assert.Equal(t, Found, res.Status)
	assert.Equal(t, Candidate{80, 80, 80}, res.Candidate)
}

func TestDiscover_Ambiguous(t *testing.T) {
	u := uniques()
	img := grayImage(8, 8, func(r, c int) int {
		switch {
		case r == 0 || r == 7 || c == 0 || c == 7:
			return u()
		case r == 1:
			return 80
		case c%2 == 1:
			return 50
		}
		return u()
	})

	res, err := Discover(context.Background(), img, Options{})
	require.NoError(t, err)
	assert.Equal(t, Ambiguous, res.Status)
	assert.Equal(t, "None", res.Format(true))
	assert.Equal(t, "", res.Format(false))
}

func TestDiscover_InsufficientContinuous(t *testing.T) {
	u := uniques()
	img := grayImage(6, 6, func(r, c int) int { return u() })

	_, err := Discover(context.Background(), img, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientContinuousData))
}

func TestDiscover_DebugHook(t *testing.T) {
	img := alpha.NewBlock[uint8](3, 4, 4)
	seen := map[string]int{}
	_, err := Discover(context.Background(), img, Options{
		Debug: func(stage string, px Pixels) { seen[stage] = len(px) },
	})
	require.NoError(t, err)
	assert.Equal(t, 16, seen["full"])
	assert.Equal(t, 12, seen["continuous"])
}

func TestDownsample(t *testing.T) {
	tests := []struct {
		name             string
		rows, cols       int
		stride           int
		wantRows, wantCs int
	}{
		{"Small", 8, 10, 1, 8, 10},
		{"Boundary", 200, 500, 1, 200, 500},
		{"Large", 450, 300, 2, 225, 150},
		{"Odd", 601, 401, 3, 201, 134},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := alpha.NewBlock[uint8](3, tt.rows, tt.cols)
			im, err := Downsample(img)
			require.NoError(t, err)
			assert.Equal(t, tt.stride, im.Stride)
			assert.Equal(t, tt.wantRows, im.Rows)
			assert.Equal(t, tt.wantCs, im.Cols)
			assert.Len(t, im.Pix, tt.wantRows*tt.wantCs)
		})
	}
}

func TestDownsample_NeedsThreeBands(t *testing.T) {
	_, err := Downsample(alpha.NewBlock[uint8](1, 4, 4))
	assert.Error(t, err)
}

func TestEdgeRing(t *testing.T) {
	img := grayImage(2, 3, func(r, c int) int { return r*10 + c })
	im, err := Downsample(img)
	require.NoError(t, err)

	ring := im.EdgeRing()
	require.Len(t, ring, 2*2+2*3)
	var got []int
	for _, p := range ring {
		got = append(got, p[0])
	}
	// top, right, bottom, left
	assert.Equal(t, []int{0, 1, 2, 2, 12, 10, 11, 12, 0, 10}, got)
}

func TestContinuous(t *testing.T) {
	img := grayImage(2, 4, func(r, c int) int {
		return []int{1, 1, 2, 2, 3, 4, 4, 4}[r*4+c]
	})
	im, err := Downsample(img)
	require.NoError(t, err)
	cont := im.Continuous(AxisCols)
	assert.Equal(t, Pixels{{1, 1, 1}, {2, 2, 2}, {4, 4, 4}, {4, 4, 4}}, cont)

	_, _, err = im.ContinuousCandidate(AxisCols)
	require.NoError(t, err)
}

func TestContinuous_AllBandsMustMatch(t *testing.T) {
	img := alpha.NewBlock[uint8](3, 1, 3)
	// band 0 is constant, band 1 changes
	img.Set(1, 0, 1, 9)
	im, err := Downsample(img)
	require.NoError(t, err)
	assert.Empty(t, im.Continuous(AxisCols))
}

func TestMode(t *testing.T) {
	c, err := Mode(Pixels{{2, 5, 9}, {1, 5, 9}, {2, 6, 8}, {1, 6, 7}})
	require.NoError(t, err)
	assert.Equal(t, Candidate{1, 5, 9}, c, "ties go to the smaller value")

	_, err = Mode(nil)
	assert.Error(t, err)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		ec   EdgeCounts
		want int
	}{
		{"Original", EdgeCounts{Full: [2]int{17, 15}, Continuous: [2]int{28, 26}}, 0},
		{"Continuous", EdgeCounts{Full: [2]int{20, 25}, Continuous: [2]int{26, 28}}, 1},
		{"Disagree", EdgeCounts{Full: [2]int{17, 15}, Continuous: [2]int{26, 28}}, -1},
		{"Tie", EdgeCounts{Full: [2]int{3, 3}, Continuous: [2]int{4, 1}}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.ec))
		})
	}
}

func TestHistogram(t *testing.T) {
	h := Histogram(Pixels{{0, 1, 2}, {0, 1, 300}}, 256)
	assert.Equal(t, 2, h[0][0])
	assert.Equal(t, 2, h[1][1])
	assert.Equal(t, 1, h[2][2])
}
