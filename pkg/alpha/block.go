package alpha

import "fmt"

// Sample is the set of integer raster sample types a Block can carry.
type Sample interface {
	~uint8 | ~uint16 | ~uint32 | ~int8 | ~int16 | ~int32
}

// MaxValue returns the largest value representable by T (the "opaque" alpha value).
func MaxValue[T Sample]() T {
	// fill the value bit by bit until it stops growing; for signed types the
	// sign bit wraps the value negative and ends the loop
	var v T
	for {
		next := v<<1 | 1
		if next <= v {
			return v
		}
		v = next
	}
}

// Block is a band-sequential pixel buffer with axes (band, row, col).
// Pixel (b, r, c) lives at Pix[b*Rows*Cols + r*Cols + c].
type Block[T Sample] struct {
	Bands int
	Rows  int
	Cols  int
	Pix   []T
}

// NewBlock allocates a zeroed block with the given shape
func NewBlock[T Sample](bands, rows, cols int) *Block[T] {
	return &Block[T]{
		Bands: bands,
		Rows:  rows,
		Cols:  cols,
		Pix:   make([]T, bands*rows*cols),
	}
}

// Validate checks the shape invariants of the block.
func (b *Block[T]) Validate() error {
	if b == nil {
		return fmt.Errorf("nil block")
	}
	if b.Bands < 1 {
		return fmt.Errorf("block must have at least one band, got %d", b.Bands)
	}
	if b.Rows < 0 || b.Cols < 0 {
		return fmt.Errorf("invalid block dimensions: %dx%d", b.Cols, b.Rows)
	}
	if len(b.Pix) != b.Bands*b.Rows*b.Cols {
		return fmt.Errorf("block buffer holds %d samples, want %d (%d bands x %d x %d)",
			len(b.Pix), b.Bands*b.Rows*b.Cols, b.Bands, b.Rows, b.Cols)
	}
	return nil
}

// At returns the sample at (band, row, col)
func (b *Block[T]) At(band, row, col int) T {
	return b.Pix[band*b.Rows*b.Cols+row*b.Cols+col]
}

// Set stores the sample at (band, row, col)
func (b *Block[T]) Set(band, row, col int, v T) {
	b.Pix[band*b.Rows*b.Cols+row*b.Cols+col] = v
}

// Band returns the plane for one band. The slice aliases the block.
func (b *Block[T]) Band(band int) []T {
	n := b.Rows * b.Cols
	return b.Pix[band*n : (band+1)*n]
}

// Pixel returns a copy of the per-band values at (row, col).
func (b *Block[T]) Pixel(row, col int) []T {
	px := make([]T, b.Bands)
	n := b.Rows * b.Cols
	off := row*b.Cols + col
	for i := range px {
		px[i] = b.Pix[i*n+off]
	}
	return px
}

// Clone returns a deep copy of the block.
func (b *Block[T]) Clone() *Block[T] {
	c := &Block[T]{Bands: b.Bands, Rows: b.Rows, Cols: b.Cols, Pix: make([]T, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// Mask is a single band alpha plane in row-major order.
type Mask[T Sample] struct {
	Rows int
	Cols int
	Pix  []T
}

// NewMask allocates a zeroed (fully transparent) mask.
func NewMask[T Sample](rows, cols int) *Mask[T] {
	return &Mask[T]{Rows: rows, Cols: cols, Pix: make([]T, rows*cols)}
}

// At returns the mask value at (row, col)
func (m *Mask[T]) At(row, col int) T {
	return m.Pix[row*m.Cols+col]
}

// Clone returns a deep copy of the mask.
func (m *Mask[T]) Clone() *Mask[T] {
	c := &Mask[T]{Rows: m.Rows, Cols: m.Cols, Pix: make([]T, len(m.Pix))}
	copy(c.Pix, m.Pix)
	return c
}

// Fill sets every value of the mask
func (m *Mask[T]) Fill(v T) {
	for i := range m.Pix {
		m.Pix[i] = v
	}
}

// Count returns how many values equal v.
func (m *Mask[T]) Count(v T) int {
	n := 0
	for _, p := range m.Pix {
		if p == v {
			n++
		}
	}
	return n
}
