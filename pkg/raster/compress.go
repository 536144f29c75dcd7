package raster

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/image/tiff/lzw"

	"github.com/jpfielding/alpha.go/pkg/compress/rle"
)

// decompress expands one strip or tile to exactly n bytes.
func decompress(comp int, src []byte, n int) ([]byte, error) {
	out := make([]byte, n)
	switch comp {
	case cNone:
		if len(src) < n {
			return nil, fmt.Errorf("%w: chunk has %d bytes, want %d", ErrInvalidFormat, len(src), n)
		}
		copy(out, src)
		return out, nil

	case cLZW:
		r := lzw.NewReader(bytes.NewReader(src), lzw.MSB, 8)
		defer r.Close()
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, fmt.Errorf("lzw: %w", err)
		}
		return out, nil

	case cDeflate, cDeflateOld:
		r, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		defer r.Close()
		if _, err := io.ReadFull(r, out); err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		return out, nil

	case cPackBits:
		dec, err := rle.Decode(src, n)
		if err != nil {
			return nil, err
		}
		if len(dec) < n {
			return nil, fmt.Errorf("%w: packbits chunk expands to %d bytes, want %d", ErrInvalidFormat, len(dec), n)
		}
		copy(out, dec)
		return out, nil
	}
	return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, comp)
}

// compress encodes one strip or tile; rowLen keeps PackBits runs within rows.
func compress(comp int, src []byte, rowLen int) ([]byte, error) {
	switch comp {
	case cNone:
		return src, nil
	case cDeflate:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("deflate: %w", err)
		}
		return buf.Bytes(), nil
	case cPackBits:
		return rle.EncodeRows(src, rowLen), nil
	}
	return nil, fmt.Errorf("%w: cannot write compression %d", ErrUnsupported, comp)
}
