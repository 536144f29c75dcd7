package findnodata

import (
	"context"
	"log/slog"

	"github.com/jpfielding/alpha.go/pkg/alpha"
)

// DebugFunc receives the pixel sets the estimators were computed from:
// "full" for the downsampled image and "continuous" for its continuous subset.
type DebugFunc func(stage string, px Pixels)

// Options tunes Discover.
type Options struct {
	Debug DebugFunc
}

// Discover guesses the nodata value of img (at least 3 bands, only the first
// three are used). It returns ErrInsufficientContinuousData when the image has
// too few uniform runs to estimate from.
func Discover[T alpha.Sample](ctx context.Context, img *alpha.Block[T], opts Options) (Result, error) {
	im, err := Downsample(img)
	if err != nil {
		return Result{}, err
	}

	original, err := Mode(im.Pix)
	if err != nil {
		return Result{}, err
	}
	continuous, cont, err := im.ContinuousCandidate(AxisCols)
	if opts.Debug != nil {
		opts.Debug("full", im.Pix)
		opts.Debug("continuous", cont)
	}
	if err != nil {
		return Result{}, err
	}
	slog.DebugContext(ctx, "nodata candidates",
		"original", original.String(),
		"continuous", continuous.String(),
		"stride", im.Stride,
	)

	if original == continuous {
		return Result{Status: Found, Candidate: original}, nil
	}

	ec := im.SearchEdge(original, continuous)
	slog.DebugContext(ctx, "competing nodata candidates, searched image edge",
		"edge_full", ec.Full[:],
		"edge_continuous", ec.Continuous[:],
	)
	switch Evaluate(ec) {
	case 0:
		return Result{Status: Found, Candidate: original}, nil
	case 1:
		return Result{Status: Found, Candidate: continuous}, nil
	}
	return Result{Status: Ambiguous}, nil
}

// Histogram bins each band of px into values [0, bins).
func Histogram(px Pixels, bins int) [3][]int {
	var h [3][]int
	for b := range h {
		h[b] = make([]int, bins)
	}
	for _, p := range px {
		for b := 0; b < 3; b++ {
			if v := p[b]; v >= 0 && v < bins {
				h[b][v]++
			}
		}
	}
	return h
}
