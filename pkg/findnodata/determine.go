package findnodata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jpfielding/alpha.go/pkg/alpha"
	"github.com/jpfielding/alpha.go/pkg/raster"
)

// AlphaToken is reported when the dataset already carries an alpha band.
const AlphaToken = "alpha"

// DetermineOptions selects the sources Determine may consult.
type DetermineOptions struct {
	// User is a caller supplied value, reported verbatim when set.
	User      string
	Discovery bool
	Verbose   bool
	Options
}

// Determine reports the nodata value of ds, in order of precedence: the user
// value, AlphaToken for 4 band data, the declared nodata, and finally the
// discovered candidate when discovery is enabled. Undetermined, ambiguous and
// inconclusive outcomes yield "" (or "None" for ambiguity when verbose).
func Determine(ctx context.Context, ds *raster.Dataset, opts DetermineOptions) (string, error) {
	switch {
	case strings.TrimSpace(opts.User) != "":
		return strings.TrimSpace(opts.User), nil
	case ds.Bands == 4:
		return AlphaToken, nil
	case ds.Nodata != nil:
		return strconv.FormatFloat(*ds.Nodata, 'f', -1, 64), nil
	case !opts.Discovery:
		return "", nil
	}

	res, err := DiscoverDataset(ctx, ds, opts.Options)
	if errors.Is(err, ErrInsufficientContinuousData) {
		slog.InfoContext(ctx, "nodata discovery inconclusive", slog.String("path", ds.Path), slog.Any("error", err))
		return "", nil
	}
	if err != nil {
		return "", err
	}
	slog.DebugContext(ctx, "nodata discovery", slog.String("status", res.Status.String()), slog.String("candidate", res.Candidate.String()))
	return res.Format(opts.Verbose), nil
}

// DiscoverDataset runs Discover over the whole of ds.
func DiscoverDataset(ctx context.Context, ds *raster.Dataset, opts Options) (Result, error) {
	switch ds.DType {
	case raster.Uint8:
		return discoverAs[uint8](ctx, ds, opts)
	case raster.Uint16:
		return discoverAs[uint16](ctx, ds, opts)
	case raster.Uint32:
		return discoverAs[uint32](ctx, ds, opts)
	case raster.Int8:
		return discoverAs[int8](ctx, ds, opts)
	case raster.Int16:
		return discoverAs[int16](ctx, ds, opts)
	case raster.Int32:
		return discoverAs[int32](ctx, ds, opts)
	}
	return Result{}, fmt.Errorf("%w: %s", raster.ErrUnsupported, ds.DType)
}

func discoverAs[T alpha.Sample](ctx context.Context, ds *raster.Dataset, opts Options) (Result, error) {
	b, err := raster.ReadBlock[T](ds, ds.Bounds())
	if err != nil {
		return Result{}, err
	}
	return Discover(ctx, b, opts)
}
