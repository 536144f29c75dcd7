package raster

import "github.com/jpfielding/alpha.go/pkg/alpha"

// DatasetMask derives a validity mask for a window from the dataset itself:
// the alpha band of a 4 band raster, else the declared nodata, else all valid.
func DatasetMask[T alpha.Sample](ds *Dataset, win Window) (*alpha.Mask[T], error) {
	b, err := ReadBlock[T](ds, win)
	if err != nil {
		return nil, err
	}
	switch {
	case ds.Bands == 4:
		m := alpha.NewMask[T](b.Rows, b.Cols)
		copy(m.Pix, b.Band(3))
		return m, nil
	case ds.NodataVector() != nil:
		return alpha.MaskExact(b, ds.NodataVector())
	}
	m := alpha.NewMask[T](b.Rows, b.Cols)
	m.Fill(alpha.MaxValue[T]())
	return m, nil
}
