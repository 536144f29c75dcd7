package raster

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/jpfielding/alpha.go/pkg/alpha"
)

// stripBytes is the target uncompressed size of one strip.
const stripBytes = 64 << 10

// Writer accumulates an output raster in memory. Blocks written to disjoint
// windows may be written from separate goroutines.
type Writer struct {
	Profile Profile
	Geo     []Field

	data []byte
}

// NewWriter allocates an output raster for p. geo fields are copied into the
// output directory unchanged.
func NewWriter(p Profile, geo []Field) (*Writer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Writer{
		Profile: p,
		Geo:     geo,
		data:    make([]byte, p.Width*p.Height*p.Count*p.DType.Size()),
	}, nil
}

// WriteBlock stores a band sequential block at win.
func WriteBlock[T alpha.Sample](w *Writer, win Window, b *alpha.Block[T]) error {
	p := w.Profile
	if got := DTypeOf[T](); got != p.DType {
		return fmt.Errorf("%w: writer is %s, block is %s", ErrDTypeMismatch, p.DType, got)
	}
	if !win.Within(p.Width, p.Height) {
		return fmt.Errorf("%w: %v in %dx%d", ErrWindowBounds, win, p.Width, p.Height)
	}
	if b.Bands != p.Count || b.Rows != win.Height || b.Cols != win.Width {
		return fmt.Errorf("%w: block %dx%dx%d for %v with %d bands",
			ErrWindowBounds, b.Bands, b.Rows, b.Cols, win, p.Count)
	}

	size := p.DType.Size()
	plane := win.Width * win.Height
	for r := 0; r < win.Height; r++ {
		for c := 0; c < win.Width; c++ {
			px := ((win.Row+r)*p.Width + win.Col + c) * p.Count
			for band := 0; band < p.Count; band++ {
				putSample(w.data, (px+band)*size, p.DType, b.Pix[band*plane+r*win.Width+c])
			}
		}
	}
	return nil
}

// Save encodes the raster and writes it to path.
func (w *Writer) Save(ctx context.Context, path string) error {
	buf, err := w.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	raw := len(w.data)
	slog.InfoContext(ctx, "wrote raster",
		slog.String("path", path),
		slog.String("size", humanize.Bytes(uint64(len(buf)))),
		slog.String("raw", humanize.Bytes(uint64(raw))),
		slog.String("pixels", humanize.Comma(int64(w.Profile.Width*w.Profile.Height))))
	return nil
}

// Encode serializes the raster as a little-endian, pixel interleaved TIFF.
func (w *Writer) Encode() ([]byte, error) {
	p := w.Profile
	size := p.DType.Size()

	cw, ch := p.Width, max(1, min(p.Height, stripBytes/max(1, p.Width*p.Count*size)))
	if p.Tiled {
		cw, ch = p.BlockXSize, p.BlockYSize
	}
	rowLen := cw * p.Count * size

	var buf bytes.Buffer
	buf.WriteString(leHeader)
	buf.Write([]byte{0, 0, 0, 0})

	var offsets, counts []uint64
	for _, win := range grid(p.Width, p.Height, cw, ch) {
		rows := ch
		if !p.Tiled {
			rows = win.Height
		}
		chunk := w.chunk(win, cw, rows)
		if p.Predictor == prHorizontal {
			applyHorizontal(chunk, rowLen, p.Count, p.DType)
		}
		enc, err := compress(p.Compress, chunk, rowLen)
		if err != nil {
			return nil, err
		}
		pad(&buf)
		offsets = append(offsets, uint64(buf.Len()))
		counts = append(counts, uint64(len(enc)))
		buf.Write(enc)
	}

	d := w.fields(cw, ch, offsets, counts)
	pad(&buf)
	out := buf.Bytes()
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(out)))
	out = appendIFD(out, d)
	// the directory is last, so every offset is below len(out)
	if err := fits32(uint64(len(out))); err != nil {
		return nil, err
	}
	return out, nil
}

// fits32 rejects outputs that classic TIFF's 32 bit offsets cannot address.
func fits32(size uint64) error {
	if size > math.MaxUint32 {
		return fmt.Errorf("%w: %s output needs BigTIFF", ErrUnsupported, humanize.Bytes(size))
	}
	return nil
}

// chunk copies a window into a cw x rows buffer, zero padding partial tiles.
func (w *Writer) chunk(win Window, cw, rows int) []byte {
	p := w.Profile
	px := p.Count * p.DType.Size()
	out := make([]byte, cw*rows*px)
	for y := 0; y < win.Height; y++ {
		src := ((win.Row+y)*p.Width + win.Col) * px
		copy(out[y*cw*px:], w.data[src:src+win.Width*px])
	}
	return out
}

func (w *Writer) fields(cw, ch int, offsets, counts []uint64) ifd {
	p := w.Profile
	d := ifd{}
	add := func(f Field) { d[f.Tag] = f }

	bits := make([]uint64, p.Count)
	formats := make([]uint64, p.Count)
	for i := range bits {
		bits[i] = uint64(8 * p.DType.Size())
		formats[i] = uint64(p.DType.sampleFormat())
	}

	add(longField(tImageWidth, uint64(p.Width)))
	add(longField(tImageLength, uint64(p.Height)))
	add(shortField(tBitsPerSample, bits...))
	add(shortField(tCompression, uint64(p.Compress)))
	add(shortField(tSamplesPerPixel, uint64(p.Count)))
	add(shortField(tPlanarConfiguration, planarChunky))
	add(shortField(tSampleFormat, formats...))

	photometric := uint64(pBlackIsZero)
	extras := p.Count - 1
	if p.Count >= 3 {
		photometric = pRGB
		extras = p.Count - 3
	}
	add(shortField(tPhotometricInterpretation, photometric))
	if extras > 0 {
		es := make([]uint64, extras)
		// the first extra sample of an RGB(A) output is its alpha band
		if photometric == pRGB {
			es[0] = esUnassocAlpha
		}
		add(shortField(tExtraSamples, es...))
	}
	if p.Predictor == prHorizontal {
		add(shortField(tPredictor, prHorizontal))
	}

	if p.Tiled {
		add(longField(tTileWidth, uint64(cw)))
		add(longField(tTileLength, uint64(ch)))
		add(longField(tTileOffsets, offsets...))
		add(longField(tTileByteCounts, counts...))
	} else {
		add(longField(tRowsPerStrip, uint64(ch)))
		add(longField(tStripOffsets, offsets...))
		add(longField(tStripByteCounts, counts...))
	}

	for _, f := range w.Geo {
		add(f)
	}
	if p.Nodata != nil {
		add(asciiField(tGDALNodata, strconv.FormatFloat(*p.Nodata, 'f', -1, 64)))
	}
	return d
}

// appendIFD writes the directory followed by its out-of-line values.
func appendIFD(out []byte, d ifd) []byte {
	fields := d.sorted()
	start := len(out)
	extra := start + 2 + len(fields)*ifdEntryLen + 4

	var values []byte
	out = binary.LittleEndian.AppendUint16(out, uint16(len(fields)))
	for _, f := range fields {
		out = binary.LittleEndian.AppendUint16(out, f.Tag)
		out = binary.LittleEndian.AppendUint16(out, f.Type)
		out = binary.LittleEndian.AppendUint32(out, f.Count)
		if len(f.Raw) <= 4 {
			var inline [4]byte
			copy(inline[:], f.Raw)
			out = append(out, inline[:]...)
			continue
		}
		out = binary.LittleEndian.AppendUint32(out, uint32(extra+len(values)))
		values = append(values, f.Raw...)
		if len(values)%2 == 1 {
			values = append(values, 0)
		}
	}
	// no further directories
	out = binary.LittleEndian.AppendUint32(out, 0)
	return append(out, values...)
}

func pad(buf *bytes.Buffer) {
	if buf.Len()%2 == 1 {
		buf.WriteByte(0)
	}
}
