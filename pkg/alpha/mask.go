package alpha

// MaskExact computes an alpha plane where a pixel is transparent (0) only if
// every band equals its nodata value, and opaque (max of T) otherwise.
func MaskExact[T Sample](b *Block[T], ndv Nodata) (*Mask[T], error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(ndv) != b.Bands {
		return nil, &ShapeMismatchError{What: "ndv", Got: len(ndv), Want: b.Bands}
	}

	opaque := MaxValue[T]()
	n := b.Rows * b.Cols
	m := NewMask[T](b.Rows, b.Cols)
	for i := 0; i < n; i++ {
		for band := 0; band < b.Bands; band++ {
			if float64(b.Pix[band*n+i]) != ndv[band] {
				m.Pix[i] = opaque
				break
			}
		}
	}
	return m, nil
}

// CalcAlpha is MaskExact with the zero-fill convention applied when no nodata
// value is supplied.
func CalcAlpha[T Sample](b *Block[T], ndv Nodata) (*Mask[T], error) {
	if len(ndv) == 0 {
		ndv = Zeros(b.Bands)
	}
	return MaskExact(b, ndv)
}

// AttachAlpha builds an RGBA block from b and m. A 4 band input has its
// existing band 4 replaced; a 3 band input gets the mask appended.
func AttachAlpha[T Sample](b *Block[T], m *Mask[T]) (*Block[T], error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &ShapeMismatchError{What: "mask", Got: 0, Want: b.Rows * b.Cols}
	}
	if m.Rows != b.Rows || m.Cols != b.Cols || len(m.Pix) != b.Rows*b.Cols {
		return nil, &ShapeMismatchError{What: "mask", Got: len(m.Pix), Want: b.Rows * b.Cols}
	}

	n := b.Rows * b.Cols
	switch b.Bands {
	case 4:
		rgba := b.Clone()
		copy(rgba.Pix[3*n:], m.Pix)
		return rgba, nil
	case 3:
		rgba := NewBlock[T](4, b.Rows, b.Cols)
		copy(rgba.Pix, b.Pix)
		copy(rgba.Pix[3*n:], m.Pix)
		return rgba, nil
	default:
		return nil, &UnsupportedBandCountError{Bands: b.Bands}
	}
}
