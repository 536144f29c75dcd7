package alpha

// ErodeSize is the neighbourhood edge length used by the lossy mask cleanup.
const ErodeSize = 5

// Erode applies a size x size minimum filter. Windows are clamped at the
// image border, which for a minimum matches a reflected border.
func Erode[T Sample](m *Mask[T], size int) *Mask[T] {
	out := m.Clone()
	if size <= 1 || len(m.Pix) == 0 {
		return out
	}
	lo := (size - 1) / 2
	hi := size - 1 - lo
	w, h := m.Cols, m.Rows

	// minimum is separable: rows first, then columns
	rows := make([]T, len(m.Pix))
	for y := 0; y < h; y++ {
		line := m.Pix[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			rows[y*w+x] = minRange(line, x-lo, x+hi)
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			v := rows[max(y-lo, 0)*w+x]
			for yy := max(y-lo, 0) + 1; yy <= min(y+hi, h-1); yy++ {
				if p := rows[yy*w+x]; p < v {
					v = p
				}
			}
			out.Pix[y*w+x] = v
		}
	}
	return out
}

func minRange[T Sample](line []T, from, to int) T {
	from = max(from, 0)
	to = min(to, len(line)-1)
	v := line[from]
	for i := from + 1; i <= to; i++ {
		if p := line[i]; p < v {
			v = p
		}
	}
	return v
}

// Binarize forces every value other than the opaque maximum to 0.
func Binarize[T Sample](m *Mask[T]) *Mask[T] {
	out := m.Clone()
	opaque := MaxValue[T]()
	for i, v := range out.Pix {
		if v != opaque {
			out.Pix[i] = 0
		}
	}
	return out
}
