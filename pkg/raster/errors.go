package raster

import "errors"

var (
	// ErrInvalidFormat indicates the file is not a readable TIFF.
	ErrInvalidFormat = errors.New("invalid TIFF")
	// ErrUnsupported indicates a valid TIFF feature this package does not handle.
	ErrUnsupported = errors.New("unsupported TIFF feature")
	// ErrDTypeMismatch indicates a block type that differs from the dataset's.
	ErrDTypeMismatch = errors.New("sample type mismatch")
	// ErrWindowBounds indicates a window outside the raster.
	ErrWindowBounds = errors.New("window out of bounds")
	// ErrCreationOption indicates an unknown or invalid creation option.
	ErrCreationOption = errors.New("invalid creation option")
)
