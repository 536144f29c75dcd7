package raster

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/jpfielding/alpha.go/pkg/alpha"
)

// WindowFunc computes the output block for one window of ds.
type WindowFunc[T alpha.Sample] func(ctx context.Context, ds *Dataset, win Window) (*alpha.Block[T], error)

// Run applies fn to every window of the output profile using up to workers
// goroutines, writing each result into out. The first error cancels the rest.
func Run[T alpha.Sample](ctx context.Context, ds *Dataset, out *Writer, workers int, fn WindowFunc[T]) error {
	if ds.Width != out.Profile.Width || ds.Height != out.Profile.Height {
		return fmt.Errorf("%w: source %dx%d, output %dx%d",
			ErrWindowBounds, ds.Width, ds.Height, out.Profile.Width, out.Profile.Height)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	windows := out.Profile.Windows()
	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, win := range windows {
		if gctx.Err() != nil {
			break
		}
		win := win
		g.Go(func() error {
			b, err := fn(gctx, ds, win)
			if err != nil {
				return fmt.Errorf("%v: %w", win, err)
			}
			if err := WriteBlock(out, win, b); err != nil {
				return err
			}
			slog.DebugContext(gctx, "window done",
				slog.String("window", win.String()),
				slog.Int64("done", done.Add(1)),
				slog.Int("total", len(windows)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
