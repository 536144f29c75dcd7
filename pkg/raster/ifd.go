package raster

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Field is one IFD entry. Raw holds the value bytes in little-endian order
// whatever the byte order of the source file was.
type Field struct {
	Tag   uint16
	Type  uint16
	Count uint32
	Raw   []byte
}

func (f Field) elemLen() int {
	if int(f.Type) < len(typeLen) {
		return typeLen[f.Type]
	}
	return 0
}

// Uints decodes integer fields.
func (f Field) Uints() []uint64 {
	out := make([]uint64, 0, f.Count)
	for i := 0; i < int(f.Count); i++ {
		switch f.Type {
		case dtByte, dtUndefined:
			out = append(out, uint64(f.Raw[i]))
		case dtShort:
			out = append(out, uint64(binary.LittleEndian.Uint16(f.Raw[2*i:])))
		case dtLong:
			out = append(out, uint64(binary.LittleEndian.Uint32(f.Raw[4*i:])))
		default:
			return out
		}
	}
	return out
}

// Floats decodes DOUBLE fields.
func (f Field) Floats() []float64 {
	if f.Type != dtDouble {
		return nil
	}
	out := make([]float64, f.Count)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(f.Raw[8*i:]))
	}
	return out
}

// String decodes ASCII fields, dropping the NUL terminator.
func (f Field) String() string {
	return strings.TrimRight(string(f.Raw), "\x00")
}

// ifd is a parsed image file directory keyed by tag.
type ifd map[uint16]Field

func (d ifd) uint(tag uint16, def uint64) uint64 {
	f, ok := d[tag]
	if !ok {
		return def
	}
	if v := f.Uints(); len(v) > 0 {
		return v[0]
	}
	return def
}

func (d ifd) uints(tag uint16) []uint64 {
	f, ok := d[tag]
	if !ok {
		return nil
	}
	return f.Uints()
}

// sorted returns the fields ordered by tag, as TIFF requires on disk.
func (d ifd) sorted() []Field {
	out := make([]Field, 0, len(d))
	for _, f := range d {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// parseHeader validates the TIFF header and returns the byte order and the
// offset of the first IFD.
func parseHeader(buf []byte) (binary.ByteOrder, uint32, error) {
	if len(buf) < 8 {
		return nil, 0, fmt.Errorf("%w: file too short", ErrInvalidFormat)
	}
	var bo binary.ByteOrder
	switch string(buf[:4]) {
	case leHeader:
		bo = binary.LittleEndian
	case beHeader:
		bo = binary.BigEndian
	default:
		if buf[0] == buf[1] && (buf[0] == 'I' || buf[0] == 'M') {
			return nil, 0, fmt.Errorf("%w: BigTIFF", ErrUnsupported)
		}
		return nil, 0, fmt.Errorf("%w: bad header %q", ErrInvalidFormat, buf[:4])
	}
	return bo, bo.Uint32(buf[4:8]), nil
}

// parseIFD reads the directory at off. Only the first image of a file is used.
func parseIFD(buf []byte, bo binary.ByteOrder, off uint32) (ifd, error) {
	if int(off)+2 > len(buf) {
		return nil, fmt.Errorf("%w: IFD offset %d beyond file", ErrInvalidFormat, off)
	}
	n := int(bo.Uint16(buf[off:]))
	start := int(off) + 2
	if start+n*ifdEntryLen > len(buf) {
		return nil, fmt.Errorf("%w: IFD with %d entries truncated", ErrInvalidFormat, n)
	}

	d := make(ifd, n)
	for i := 0; i < n; i++ {
		e := buf[start+i*ifdEntryLen:]
		f := Field{
			Tag:   bo.Uint16(e[0:2]),
			Type:  bo.Uint16(e[2:4]),
			Count: bo.Uint32(e[4:8]),
		}
		size := f.elemLen() * int(f.Count)
		if f.elemLen() == 0 {
			// unknown type: skip, as readers must
			continue
		}
		var raw []byte
		if size <= 4 {
			raw = e[8 : 8+size]
		} else {
			vo := int(bo.Uint32(e[8:12]))
			if vo < 0 || vo+size > len(buf) {
				return nil, fmt.Errorf("%w: tag %d value out of range", ErrInvalidFormat, f.Tag)
			}
			raw = buf[vo : vo+size]
		}
		f.Raw = toLittleEndian(raw, f.Type, bo)
		d[f.Tag] = f
	}
	return d, nil
}

// toLittleEndian copies raw and swaps each element when the file is big-endian.
func toLittleEndian(raw []byte, typ uint16, bo binary.ByteOrder) []byte {
	out := make([]byte, len(raw))
	copy(out, raw)
	if bo == binary.LittleEndian {
		return out
	}
	width := typeLen[typ]
	if typ == dtRational || typ == dtSRational {
		width = 4
	}
	if width > 1 {
		swapEach(out, width)
	}
	return out
}

func swapEach(b []byte, width int) {
	for i := 0; i+width <= len(b); i += width {
		for l, r := i, i+width-1; l < r; l, r = l+1, r-1 {
			b[l], b[r] = b[r], b[l]
		}
	}
}

// Field constructors for the writer. Values are little-endian.
func shortField(tag uint16, vals ...uint64) Field {
	raw := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint16(raw[2*i:], uint16(v))
	}
	return Field{Tag: tag, Type: dtShort, Count: uint32(len(vals)), Raw: raw}
}

func longField(tag uint16, vals ...uint64) Field {
	raw := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(raw[4*i:], uint32(v))
	}
	return Field{Tag: tag, Type: dtLong, Count: uint32(len(vals)), Raw: raw}
}

func asciiField(tag uint16, s string) Field {
	raw := append([]byte(s), 0)
	return Field{Tag: tag, Type: dtASCII, Count: uint32(len(raw)), Raw: raw}
}
