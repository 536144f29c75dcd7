package raster

import (
	"encoding/binary"
	"fmt"

	"github.com/jpfielding/alpha.go/pkg/alpha"
)

// DType is the sample type of a raster.
type DType int

const (
	Unknown DType = iota
	Uint8
	Uint16
	Uint32
	Int8
	Int16
	Int32
)

func (d DType) String() string {
	switch d {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Uint32:
		return "uint32"
	case Int8:
		return "int8"
	case Int16:
		return "int16"
	case Int32:
		return "int32"
	}
	return "unknown"
}

// Size is the byte width of one sample.
func (d DType) Size() int {
	switch d {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32:
		return 4
	}
	return 0
}

// Signed reports whether samples are two's complement integers.
func (d DType) Signed() bool {
	return d == Int8 || d == Int16 || d == Int32
}

func dtypeFor(bits, format int) (DType, error) {
	switch {
	case format == sfUint && bits == 8:
		return Uint8, nil
	case format == sfUint && bits == 16:
		return Uint16, nil
	case format == sfUint && bits == 32:
		return Uint32, nil
	case format == sfInt && bits == 8:
		return Int8, nil
	case format == sfInt && bits == 16:
		return Int16, nil
	case format == sfInt && bits == 32:
		return Int32, nil
	}
	return Unknown, fmt.Errorf("%w: %d-bit samples with sample format %d", ErrUnsupported, bits, format)
}

func (d DType) sampleFormat() int {
	if d.Signed() {
		return sfInt
	}
	return sfUint
}

// DTypeOf maps a Go sample type to its raster DType.
func DTypeOf[T alpha.Sample]() DType {
	var zero T
	switch any(zero).(type) {
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	}
	return Unknown
}

// getSample decodes the little-endian sample at buf[off:].
func getSample[T alpha.Sample](buf []byte, off int, d DType) T {
	switch d {
	case Uint8:
		return T(buf[off])
	case Int8:
		return T(int8(buf[off]))
	case Uint16:
		return T(binary.LittleEndian.Uint16(buf[off:]))
	case Int16:
		return T(int16(binary.LittleEndian.Uint16(buf[off:])))
	case Uint32:
		return T(binary.LittleEndian.Uint32(buf[off:]))
	case Int32:
		return T(int32(binary.LittleEndian.Uint32(buf[off:])))
	}
	return 0
}

// putSample encodes v little-endian at buf[off:].
func putSample[T alpha.Sample](buf []byte, off int, d DType, v T) {
	switch d.Size() {
	case 1:
		buf[off] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf[off:], uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf[off:], uint32(v))
	}
}
