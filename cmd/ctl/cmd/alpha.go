package cmd

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jpfielding/alpha.go/pkg/alpha"
	"github.com/jpfielding/alpha.go/pkg/config"
	"github.com/jpfielding/alpha.go/pkg/logging"
	"github.com/jpfielding/alpha.go/pkg/raster"
	"github.com/jpfielding/alpha.go/pkg/util"
	"github.com/spf13/cobra"
)

// alphaJob holds everything a window worker needs.
type alphaJob struct {
	Src       string
	Dst       string
	Nodata    alpha.Nodata
	Lossy     bool
	Threshold int
	SieveSize int
	Blocksize int
	Workers   int
	Options   map[string]string
	DebugDir  string `json:"-"`
}

// NewAlphaCmd adds or replaces the alpha band of an RGB(A) raster.
func NewAlphaCmd(ctx context.Context, cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alpha SRC DST",
		Short: "add or replace the alpha band of an RGB(A) raster",
		Long: `Writes DST as SRC plus an alpha band. With --ndv pixels equal to the
nodata value in every band are transparent; without it the source mask is
used (an existing alpha band, declared nodata, or fully opaque). --lossy
tolerates compression noise around the nodata value.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			job := alphaJob{
				Src:       args[0],
				Dst:       args[1],
				Threshold: cfg.Alpha.Threshold,
				SieveSize: cfg.Alpha.SieveSize,
				Blocksize: cfg.Alpha.Blocksize,
				Workers:   cfg.Alpha.Workers,
				Options:   map[string]string{},
			}
			for k, v := range cfg.Alpha.CreationOptions {
				job.Options[k] = v
			}
			flags := cmd.Flags()
			job.Lossy, _ = flags.GetBool("lossy")
			job.DebugDir, _ = flags.GetString("debug-dir")
			if flags.Changed("workers") {
				job.Workers, _ = flags.GetInt("workers")
			}
			if flags.Changed("threshold") {
				job.Threshold, _ = flags.GetInt("threshold")
			}
			if flags.Changed("sieve-size") {
				job.SieveSize, _ = flags.GetInt("sieve-size")
			}
			if flags.Changed("blocksize") {
				job.Blocksize, _ = flags.GetInt("blocksize")
			}
			co, _ := flags.GetStringArray("co")
			parsed, err := raster.ParseCreationOptions(co)
			if err != nil {
				return err
			}
			for k, v := range parsed {
				job.Options[k] = v
			}

			ds, err := raster.Open(job.Src)
			if err != nil {
				return fmt.Errorf("failed to open source: %w", err)
			}
			if ndv, _ := flags.GetString("ndv"); ndv != "" {
				if job.Nodata, err = alpha.ParseNodata(ndv, ds.Bands); err != nil {
					return fmt.Errorf("invalid --ndv: %w", err)
				}
			}
			return runAlpha(ctx, ds, job)
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("ndv", "", "nodata value, a single value or a per-band list such as '[0, 0, 0]'")
	pf.StringArray("co", nil, "creation option KEY=VALUE, repeatable (compress, tiled, blockxsize, blockysize, predictor)")
	pf.IntP("workers", "j", 0, "concurrent windows (default: number of CPUs)")
	pf.Bool("lossy", false, "threshold the nodata value and clean the mask with a sieve and erosion")
	pf.Int("threshold", alpha.DefaultThreshold, "per-band tolerance around the nodata value for --lossy, 0 for an exact match")
	pf.Int("sieve-size", 0, "smallest region kept by the --lossy sieve (default: 0.5% of a window)")
	pf.Int("blocksize", raster.DefaultBlockSize, "tile size of the --lossy output")
	pf.String("debug-dir", "", "write intermediate --lossy masks as PNGs into this directory")
	return cmd
}

func runAlpha(ctx context.Context, ds *raster.Dataset, job alphaJob) error {
	ctx = logging.AppendCtx(ctx, slog.String("job", util.JobID(job)))
	start := time.Now()

	p := raster.NewProfile(ds)
	if job.Lossy {
		p.Compress = 0
		p.Predictor = 0
		p.SetBlockSize(job.Blocksize)
		// lossy outputs are compressed unless told otherwise
		if err := p.ApplyCreationOptions(map[string]string{"compress": "deflate"}); err != nil {
			return err
		}
	}
	if err := p.ApplyCreationOptions(job.Options); err != nil {
		return err
	}
	p.Count = 4
	p.Nodata = nil

	w, err := raster.NewWriter(p, ds.Geo)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "adding alpha band",
		slog.String("src", job.Src),
		slog.String("dst", job.Dst),
		slog.String("dtype", ds.DType.String()),
		slog.Int("bands", ds.Bands),
		slog.String("pixels", humanize.Comma(int64(ds.Width*ds.Height))),
		slog.Bool("lossy", job.Lossy),
		slog.String("ndv", job.Nodata.String()))

	switch ds.DType {
	case raster.Uint8:
		err = raster.Run(ctx, ds, w, job.Workers, alphaWindow[uint8](job))
	case raster.Uint16:
		err = raster.Run(ctx, ds, w, job.Workers, alphaWindow[uint16](job))
	case raster.Uint32:
		err = raster.Run(ctx, ds, w, job.Workers, alphaWindow[uint32](job))
	case raster.Int8:
		err = raster.Run(ctx, ds, w, job.Workers, alphaWindow[int8](job))
	case raster.Int16:
		err = raster.Run(ctx, ds, w, job.Workers, alphaWindow[int16](job))
	case raster.Int32:
		err = raster.Run(ctx, ds, w, job.Workers, alphaWindow[int32](job))
	default:
		err = fmt.Errorf("%w: %s", raster.ErrUnsupported, ds.DType)
	}
	if err != nil {
		return fmt.Errorf("alpha %s: %w", job.Src, err)
	}
	if err := w.Save(ctx, job.Dst); err != nil {
		return err
	}
	slog.InfoContext(ctx, "alpha done", slog.Duration("elapsed", time.Since(start)))
	return nil
}

// alphaWindow computes the mask for one window and attaches it.
func alphaWindow[T alpha.Sample](job alphaJob) raster.WindowFunc[T] {
	return func(ctx context.Context, ds *raster.Dataset, win raster.Window) (*alpha.Block[T], error) {
		b, err := raster.ReadBlock[T](ds, win)
		if err != nil {
			return nil, err
		}

		var m *alpha.Mask[T]
		switch {
		case job.Lossy && job.Nodata != nil:
			opts := alpha.LossyOptions{Threshold: job.Threshold, SieveSize: job.SieveSize}
			if job.DebugDir != "" {
				opts.Debug = func(stage string, img image.Image) {
					name := fmt.Sprintf("%s_c%d_r%d.png", stage, win.Col, win.Row)
					if err := writePNG(job.DebugDir, name, img); err != nil {
						slog.WarnContext(ctx, "debug mask not written", slog.String("name", name), slog.Any("error", err))
					}
				}
			}
			m, err = alpha.MaskLossy(b, job.Nodata, opts)
		case job.Lossy:
			// no value to threshold around: zero fill convention
			m, err = alpha.CalcAlpha(b, nil)
		case job.Nodata != nil:
			m, err = alpha.MaskExact(b, job.Nodata)
		default:
			m, err = raster.DatasetMask[T](ds, win)
		}
		if err != nil {
			return nil, err
		}
		return alpha.AttachAlpha(b, m)
	}
}
