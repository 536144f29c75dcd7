package alpha

import (
	"fmt"
	"image"
	"image/color"
)

// DefaultThreshold is the per-band tolerance used when none is given.
const DefaultThreshold = 7

// DefaultSieveFraction is the share of a block's pixels below which a
// region is sieved away.
const DefaultSieveFraction = 0.005

// DebugFunc observes intermediate masks ("threshold", "sieved", "eroded").
// It is a side channel and never changes the result.
type DebugFunc func(stage string, img image.Image)

// LossyOptions tunes MaskLossy. Threshold is used as given, 0 meaning an
// exact match; callers start from DefaultThreshold. A zero SieveSize selects
// DefaultSieveFraction of the block.
type LossyOptions struct {
	Threshold int
	SieveSize int
	Debug     DebugFunc
}

func (o LossyOptions) withDefaults(rows, cols int) (LossyOptions, error) {
	if o.Threshold < 0 {
		return o, fmt.Errorf("%w: threshold must be >= 0, got %d", ErrInvalidOption, o.Threshold)
	}
	if o.SieveSize < 0 {
		return o, fmt.Errorf("%w: sieve size must be >= 0, got %d", ErrInvalidOption, o.SieveSize)
	}
	if o.SieveSize == 0 {
		o.SieveSize = int(float64(rows*cols) * DefaultSieveFraction)
	}
	return o, nil
}

// MaskThreshold marks a pixel opaque when any band falls outside a single
// shared window [lo, hi], where lo is the smallest ndv-threshold and hi the
// largest ndv+threshold across bands.
func MaskThreshold[T Sample](b *Block[T], ndv Nodata, threshold int) (*Mask[T], error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(ndv) != b.Bands {
		return nil, &ShapeMismatchError{What: "ndv", Got: len(ndv), Want: b.Bands}
	}

	lo, hi := int64(ndv[0])-int64(threshold), int64(ndv[0])+int64(threshold)
	for _, v := range ndv[1:] {
		lo = min(lo, int64(v)-int64(threshold))
		hi = max(hi, int64(v)+int64(threshold))
	}

	opaque := MaxValue[T]()
	n := b.Rows * b.Cols
	m := NewMask[T](b.Rows, b.Cols)
	for i := 0; i < n; i++ {
		for band := 0; band < b.Bands; band++ {
			if v := int64(b.Pix[band*n+i]); v < lo || v > hi {
				m.Pix[i] = opaque
				break
			}
		}
	}
	return m, nil
}

// MaskLossy computes a nodata mask tolerant of compression noise: threshold
// mask, sieve (8-connected), 5x5 erosion, then binarize.
func MaskLossy[T Sample](b *Block[T], ndv Nodata, opts LossyOptions) (*Mask[T], error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	opts, err := opts.withDefaults(b.Rows, b.Cols)
	if err != nil {
		return nil, err
	}

	thresh, err := MaskThreshold(b, ndv, opts.Threshold)
	if err != nil {
		return nil, err
	}
	sieved := Sieve(thresh, opts.SieveSize, Connectivity8)
	eroded := Binarize(Erode(sieved, ErodeSize))

	if opts.Debug != nil {
		opts.Debug("threshold", thresh.Image())
		opts.Debug("sieved", sieved.Image())
		opts.Debug("eroded", eroded.Image())
	}
	return eroded, nil
}

// Image renders the mask as 16-bit grayscale scaled to the range of T.
func (m *Mask[T]) Image() image.Image {
	img := image.NewGray16(image.Rect(0, 0, m.Cols, m.Rows))
	top := float64(MaxValue[T]())
	for y := 0; y < m.Rows; y++ {
		for x := 0; x < m.Cols; x++ {
			v := float64(m.Pix[y*m.Cols+x])
			if v < 0 {
				v = 0
			}
			img.SetGray16(x, y, color.Gray16{Y: uint16(v / top * 0xFFFF)})
		}
	}
	return img
}
