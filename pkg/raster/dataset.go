package raster

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/jpfielding/alpha.go/pkg/alpha"
)

// Dataset is a decoded single image raster. Samples are held pixel
// interleaved in little-endian order regardless of the file layout.
type Dataset struct {
	Path        string
	Width       int
	Height      int
	Bands       int
	DType       DType
	Photometric int
	// Nodata is the declared GDAL_NODATA value, nil when absent.
	Nodata *float64
	// Geo holds the georeferencing fields to carry over to outputs.
	Geo []Field

	// Source chunking and encoding, used to seed output profiles.
	Tiled       bool
	BlockWidth  int
	BlockHeight int
	Compression int
	Predictor   int

	data []byte
}

// Open reads and decodes the first image of a TIFF file.
func Open(path string) (*Dataset, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ds, err := Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	ds.Path = path
	return ds, nil
}

// Decode parses an in-memory TIFF.
func Decode(buf []byte) (*Dataset, error) {
	bo, off, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}
	d, err := parseIFD(buf, bo, off)
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Width:       int(d.uint(tImageWidth, 0)),
		Height:      int(d.uint(tImageLength, 0)),
		Bands:       int(d.uint(tSamplesPerPixel, 1)),
		Photometric: int(d.uint(tPhotometricInterpretation, pBlackIsZero)),
	}
	if ds.Width <= 0 || ds.Height <= 0 || ds.Bands <= 0 {
		return nil, fmt.Errorf("%w: %dx%d with %d samples", ErrInvalidFormat, ds.Width, ds.Height, ds.Bands)
	}

	bits := d.uints(tBitsPerSample)
	if len(bits) == 0 {
		bits = []uint64{1}
	}
	for _, b := range bits[1:] {
		if b != bits[0] {
			return nil, fmt.Errorf("%w: mixed bits per sample %v", ErrUnsupported, bits)
		}
	}
	format := d.uint(tSampleFormat, sfUint)
	if ds.DType, err = dtypeFor(int(bits[0]), int(format)); err != nil {
		return nil, err
	}

	if f, ok := d[tGDALNodata]; ok {
		s := strings.TrimSpace(f.String())
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: GDAL_NODATA %q", ErrInvalidFormat, s)
		}
		ds.Nodata = &v
	}
	for _, tag := range geoTags {
		if f, ok := d[tag]; ok {
			ds.Geo = append(ds.Geo, f)
		}
	}

	if err := ds.decodeChunks(buf, bo, d); err != nil {
		return nil, err
	}
	return ds, nil
}

// chunkLayout describes how pixel data is cut into strips or tiles.
type chunkLayout struct {
	width, height int // chunk size in pixels
	across, down  int // chunks per plane
	planes        int
	spp           int // samples per pixel within a chunk
	offsets       []uint64
	counts        []uint64
}

func (ds *Dataset) layout(d ifd) (chunkLayout, error) {
	l := chunkLayout{planes: 1, spp: ds.Bands}
	if d.uint(tPlanarConfiguration, planarChunky) == planarPlanar {
		l.planes, l.spp = ds.Bands, 1
	}

	if _, tiled := d[tTileWidth]; tiled {
		l.width = int(d.uint(tTileWidth, 0))
		l.height = int(d.uint(tTileLength, 0))
		l.offsets = d.uints(tTileOffsets)
		l.counts = d.uints(tTileByteCounts)
	} else {
		l.width = ds.Width
		l.height = int(min(d.uint(tRowsPerStrip, uint64(ds.Height)), uint64(ds.Height)))
		l.offsets = d.uints(tStripOffsets)
		l.counts = d.uints(tStripByteCounts)
	}
	if l.width <= 0 || l.height <= 0 {
		return l, fmt.Errorf("%w: chunk size %dx%d", ErrInvalidFormat, l.width, l.height)
	}
	l.across = (ds.Width + l.width - 1) / l.width
	l.down = (ds.Height + l.height - 1) / l.height

	n := l.across * l.down * l.planes
	if len(l.offsets) < n || len(l.counts) < n {
		return l, fmt.Errorf("%w: want %d chunks, have %d offsets and %d byte counts",
			ErrInvalidFormat, n, len(l.offsets), len(l.counts))
	}
	return l, nil
}

func (ds *Dataset) decodeChunks(buf []byte, bo binary.ByteOrder, d ifd) error {
	l, err := ds.layout(d)
	if err != nil {
		return err
	}
	_, ds.Tiled = d[tTileWidth]
	ds.BlockWidth, ds.BlockHeight = l.width, l.height

	comp := int(d.uint(tCompression, cNone))
	pred := int(d.uint(tPredictor, prNone))
	ds.Compression, ds.Predictor = comp, pred
	size := ds.DType.Size()
	ds.data = make([]byte, ds.Width*ds.Height*ds.Bands*size)

	for plane := 0; plane < l.planes; plane++ {
		for ty := 0; ty < l.down; ty++ {
			for tx := 0; tx < l.across; tx++ {
				i := plane*l.across*l.down + ty*l.across + tx
				off, n := l.offsets[i], l.counts[i]
				if off+n > uint64(len(buf)) {
					return fmt.Errorf("%w: chunk %d out of range", ErrInvalidFormat, i)
				}

				// tiles are always full size; the last strip may be short
				rows := l.height
				if !ds.Tiled {
					rows = min(l.height, ds.Height-ty*l.height)
				}
				rowLen := l.width * l.spp * size
				raw, err := decompress(comp, buf[off:off+n], rows*rowLen)
				if err != nil {
					return fmt.Errorf("chunk %d: %w", i, err)
				}
				if bo == binary.BigEndian && size > 1 {
					swapEach(raw, size)
				}
				switch pred {
				case prNone:
				case prHorizontal:
					undoHorizontal(raw, rowLen, l.spp, ds.DType)
				default:
					return fmt.Errorf("%w: predictor %d", ErrUnsupported, pred)
				}
				ds.place(raw, l, plane, tx*l.width, ty*l.height, rows)
			}
		}
	}
	return nil
}

// place copies a decoded chunk into the interleaved image buffer, clipping
// tile padding at the right and bottom edges.
func (ds *Dataset) place(raw []byte, l chunkLayout, plane, x0, y0, rows int) {
	size := ds.DType.Size()
	cols := min(l.width, ds.Width-x0)
	rows = min(rows, ds.Height-y0)
	for y := 0; y < rows; y++ {
		src := raw[y*l.width*l.spp*size:]
		if l.planes == 1 {
			dst := ((y0+y)*ds.Width + x0) * ds.Bands * size
			copy(ds.data[dst:dst+cols*ds.Bands*size], src)
			continue
		}
		for x := 0; x < cols; x++ {
			dst := (((y0+y)*ds.Width+x0+x)*ds.Bands + plane) * size
			copy(ds.data[dst:dst+size], src[x*size:])
		}
	}
}

// undoHorizontal reverses TIFF predictor 2 on little-endian samples.
func undoHorizontal(raw []byte, rowLen, spp int, dt DType) {
	size := dt.Size()
	for row := 0; row+rowLen <= len(raw); row += rowLen {
		line := raw[row : row+rowLen]
		for i := spp * size; i < rowLen; i += size {
			prev := i - spp*size
			switch size {
			case 1:
				line[i] += line[prev]
			case 2:
				v := binary.LittleEndian.Uint16(line[i:]) + binary.LittleEndian.Uint16(line[prev:])
				binary.LittleEndian.PutUint16(line[i:], v)
			case 4:
				v := binary.LittleEndian.Uint32(line[i:]) + binary.LittleEndian.Uint32(line[prev:])
				binary.LittleEndian.PutUint32(line[i:], v)
			}
		}
	}
}

// applyHorizontal is the encoding side of predictor 2.
func applyHorizontal(raw []byte, rowLen, spp int, dt DType) {
	size := dt.Size()
	for row := 0; row+rowLen <= len(raw); row += rowLen {
		line := raw[row : row+rowLen]
		for i := rowLen - size; i >= spp*size; i -= size {
			prev := i - spp*size
			switch size {
			case 1:
				line[i] -= line[prev]
			case 2:
				v := binary.LittleEndian.Uint16(line[i:]) - binary.LittleEndian.Uint16(line[prev:])
				binary.LittleEndian.PutUint16(line[i:], v)
			case 4:
				v := binary.LittleEndian.Uint32(line[i:]) - binary.LittleEndian.Uint32(line[prev:])
				binary.LittleEndian.PutUint32(line[i:], v)
			}
		}
	}
}

// Bounds is the full-raster window.
func (ds *Dataset) Bounds() Window {
	return Window{Width: ds.Width, Height: ds.Height}
}

// NodataVector broadcasts the declared nodata to every band, or returns nil.
func (ds *Dataset) NodataVector() alpha.Nodata {
	if ds.Nodata == nil || math.IsNaN(*ds.Nodata) {
		return nil
	}
	return alpha.Broadcast(*ds.Nodata, ds.Bands)
}

// ReadBlock extracts a window of the dataset as a band sequential block.
func ReadBlock[T alpha.Sample](ds *Dataset, win Window) (*alpha.Block[T], error) {
	if want := DTypeOf[T](); want != ds.DType {
		return nil, fmt.Errorf("%w: dataset is %s, block is %s", ErrDTypeMismatch, ds.DType, want)
	}
	if !win.Within(ds.Width, ds.Height) {
		return nil, fmt.Errorf("%w: %v in %dx%d", ErrWindowBounds, win, ds.Width, ds.Height)
	}

	size := ds.DType.Size()
	b := alpha.NewBlock[T](ds.Bands, win.Height, win.Width)
	plane := win.Width * win.Height
	for r := 0; r < win.Height; r++ {
		for c := 0; c < win.Width; c++ {
			px := ((win.Row+r)*ds.Width + win.Col + c) * ds.Bands
			for band := 0; band < ds.Bands; band++ {
				b.Pix[band*plane+r*win.Width+c] = getSample[T](ds.data, (px+band)*size, ds.DType)
			}
		}
	}
	return b, nil
}
