package raster

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// DefaultBlockSize is the tile edge used when no block size is requested.
const DefaultBlockSize = 256

// Profile describes an output raster.
type Profile struct {
	Width  int
	Height int
	Count  int
	DType  DType
	// Nodata is written as GDAL_NODATA when set. Alpha outputs leave it nil.
	Nodata *float64

	Tiled      bool
	BlockXSize int
	BlockYSize int
	Compress   int
	Predictor  int
}

// NewProfile copies the shape and encoding of a source dataset. Sources that
// use a compression this package cannot write fall back to deflate.
func NewProfile(ds *Dataset) Profile {
	p := Profile{
		Width:     ds.Width,
		Height:    ds.Height,
		Count:     ds.Bands,
		DType:     ds.DType,
		Nodata:    ds.Nodata,
		Tiled:     ds.Tiled,
		Compress:  ds.Compression,
		Predictor: ds.Predictor,
	}
	if ds.Tiled {
		p.BlockXSize, p.BlockYSize = ds.BlockWidth, ds.BlockHeight
	}
	switch p.Compress {
	case cNone, cDeflate, cPackBits:
	case cDeflateOld:
		p.Compress = cDeflate
	default:
		slog.Debug("source compression not writable, using deflate", slog.Int("compression", p.Compress))
		p.Compress = cDeflate
	}
	if p.Predictor != prHorizontal {
		p.Predictor = prNone
	}
	return p
}

// SetBlockSize requests square tiles of n pixels. Rasters narrower than n in
// either dimension are written as strips instead.
func (p *Profile) SetBlockSize(n int) {
	if n <= 0 {
		n = DefaultBlockSize
	}
	if n > min(p.Width, p.Height) {
		p.Tiled, p.BlockXSize, p.BlockYSize = false, 0, 0
		return
	}
	p.Tiled, p.BlockXSize, p.BlockYSize = true, n, n
}

// ApplyCreationOptions applies GDAL style KEY=VALUE options. Keys are case
// insensitive; unknown keys are logged and ignored.
func (p *Profile) ApplyCreationOptions(opts map[string]string) error {
	for k, v := range opts {
		key, val := strings.ToLower(strings.TrimSpace(k)), strings.ToLower(strings.TrimSpace(v))
		switch key {
		case "compress":
			switch val {
			case "none", "":
				p.Compress = cNone
			case "deflate", "zip":
				p.Compress = cDeflate
			case "packbits":
				p.Compress = cPackBits
			case "lzw":
				return fmt.Errorf("%w: compress=lzw is read-only, use deflate", ErrCreationOption)
			default:
				return fmt.Errorf("%w: compress=%s", ErrCreationOption, v)
			}
		case "tiled":
			b, err := parseBool(val)
			if err != nil {
				return fmt.Errorf("%w: tiled=%s", ErrCreationOption, v)
			}
			p.Tiled = b
		case "blockxsize", "blockysize":
			n, err := strconv.Atoi(val)
			if err != nil || n <= 0 {
				return fmt.Errorf("%w: %s=%s", ErrCreationOption, key, v)
			}
			if key == "blockxsize" {
				p.BlockXSize = n
			} else {
				p.BlockYSize = n
			}
		case "predictor":
			switch val {
			case "1", "none":
				p.Predictor = prNone
			case "2", "horizontal":
				p.Predictor = prHorizontal
			default:
				return fmt.Errorf("%w: predictor=%s", ErrCreationOption, v)
			}
		default:
			slog.Warn("ignoring unknown creation option", slog.String("key", k), slog.String("value", v))
		}
	}
	return p.Validate()
}

// ParseCreationOptions turns KEY=VALUE pairs into a map.
func ParseCreationOptions(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("%w: %q is not KEY=VALUE", ErrCreationOption, kv)
		}
		out[k] = v
	}
	return out, nil
}

// Validate checks the profile can be written. Tiled profiles with no block
// size get the default.
func (p *Profile) Validate() error {
	if p.Width <= 0 || p.Height <= 0 || p.Count <= 0 {
		return fmt.Errorf("%w: %dx%d with %d bands", ErrCreationOption, p.Width, p.Height, p.Count)
	}
	if p.DType.Size() == 0 {
		return fmt.Errorf("%w: dtype %s", ErrCreationOption, p.DType)
	}
	if p.Compress == 0 {
		p.Compress = cNone
	}
	if p.Predictor == 0 {
		p.Predictor = prNone
	}
	if !p.Tiled {
		return nil
	}
	if p.BlockXSize == 0 {
		p.BlockXSize = DefaultBlockSize
	}
	if p.BlockYSize == 0 {
		p.BlockYSize = DefaultBlockSize
	}
	if p.BlockXSize%16 != 0 || p.BlockYSize%16 != 0 {
		return fmt.Errorf("%w: tile size %dx%d must be a multiple of 16", ErrCreationOption, p.BlockXSize, p.BlockYSize)
	}
	return nil
}

// Windows returns the processing windows for the profile: tiles when tiled,
// otherwise bands of rows of roughly DefaultBlockSize.
func (p Profile) Windows() []Window {
	if p.Tiled {
		return grid(p.Width, p.Height, p.BlockXSize, p.BlockYSize)
	}
	return grid(p.Width, p.Height, p.Width, min(p.Height, DefaultBlockSize))
}

func parseBool(s string) (bool, error) {
	switch s {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}
