// Package rle implements the PackBits run-length scheme used by TIFF
// compression 32773.
package rle

import (
	"bytes"
	"errors"
	"fmt"
)

// Encode compresses data with PackBits. TIFF requires each row of a strip or
// tile to be encoded separately, so callers pass one row at a time.
func Encode(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}

	var buf bytes.Buffer
	i := 0
	for i < len(data) {
		runLen := 1
		for i+runLen < len(data) && runLen < 128 && data[i+runLen] == data[i] {
			runLen++
		}

		if runLen > 1 {
			buf.WriteByte(byte(int8(-(runLen - 1))))
			buf.WriteByte(data[i])
			i += runLen
			continue
		}

		// literal run until a run of 3 identical bytes starts, or 128 bytes
		litLen := 1
		for i+litLen < len(data) && litLen < 128 {
			if i+litLen+2 < len(data) &&
				data[i+litLen] == data[i+litLen+1] &&
				data[i+litLen] == data[i+litLen+2] {
				break
			}
			litLen++
		}
		buf.WriteByte(byte(int8(litLen - 1)))
		buf.Write(data[i : i+litLen])
		i += litLen
	}
	return buf.Bytes()
}

// EncodeRows compresses rows of rowLen bytes each and concatenates the result.
func EncodeRows(data []byte, rowLen int) []byte {
	if rowLen <= 0 {
		return Encode(data)
	}
	var out []byte
	for off := 0; off < len(data); off += rowLen {
		out = append(out, Encode(data[off:min(off+rowLen, len(data))])...)
	}
	return out
}

// Decode expands PackBits data. Decoding stops once expectedLen bytes have
// been produced when expectedLen > 0.
func Decode(data []byte, expectedLen int) ([]byte, error) {
	var buf bytes.Buffer
	if expectedLen > 0 {
		buf.Grow(expectedLen)
	}

	i := 0
	for i < len(data) {
		if expectedLen > 0 && buf.Len() >= expectedLen {
			break
		}

		n := int8(data[i])
		i++

		if n == -128 {
			continue
		}

		if n >= 0 {
			count := int(n) + 1
			if i+count > len(data) {
				return nil, fmt.Errorf("rle: compressed data truncated in literal run (i=%d, count=%d, len=%d)", i, count, len(data))
			}
			buf.Write(data[i : i+count])
			i += count
			continue
		}

		count := int(-n) + 1
		if i >= len(data) {
			return nil, errors.New("rle: compressed data truncated in replicate run")
		}
		val := data[i]
		i++
		for k := 0; k < count; k++ {
			buf.WriteByte(val)
		}
	}
	return buf.Bytes(), nil
}
