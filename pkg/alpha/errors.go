package alpha

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrShapeMismatch indicates a nodata tuple or mask does not fit the block.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrBandCountMismatch indicates a parsed nodata list has the wrong length.
	ErrBandCountMismatch = errors.New("nodata band count mismatch")
	// ErrUnsupportedBandCount indicates an image that is neither RGB nor RGBA.
	ErrUnsupportedBandCount = errors.New("unsupported band count")
	// ErrValueConversion indicates a nodata token that is not numeric.
	ErrValueConversion = errors.New("invalid nodata value")
	// ErrInvalidOption indicates a negative lossy threshold or sieve size.
	ErrInvalidOption = errors.New("invalid lossy option")
)

// ShapeMismatchError reports a nodata length (or mask shape) that does not
// match the block it is applied to.
type ShapeMismatchError struct {
	Want int
	Got  int
	What string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s length must equal num bands: got %d, want %d", e.What, e.Got, e.Want)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// BandCountMismatchError reports a bracketed nodata list whose length is not the band count.
type BandCountMismatchError struct {
	Input  string
	Parsed []float64
	Bands  int
}

func (e *BandCountMismatchError) Error() string {
	return fmt.Sprintf("%s parsed to ndv of %s does not match band count of %d",
		e.Input, formatFloats(e.Parsed), e.Bands)
}

func (e *BandCountMismatchError) Unwrap() error { return ErrBandCountMismatch }

// UnsupportedBandCountError is returned when attaching alpha to a block that
// is not 3 or 4 bands.
type UnsupportedBandCountError struct {
	Bands int
}

func (e *UnsupportedBandCountError) Error() string {
	return fmt.Sprintf("array must have 3 or 4 bands (RGB or RGBA), got %d", e.Bands)
}

func (e *UnsupportedBandCountError) Unwrap() error { return ErrUnsupportedBandCount }

// ValueConversionError names a token that could not be parsed as a number.
type ValueConversionError struct {
	Token string
}

func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("%s is not a valid nodata value", e.Token)
}

func (e *ValueConversionError) Unwrap() error { return ErrValueConversion }

func formatFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'f', 1, 64)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
