package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jpfielding/alpha.go/pkg/alpha"
	"github.com/jpfielding/alpha.go/pkg/logging"
	"github.com/jpfielding/alpha.go/pkg/raster"
	"github.com/jpfielding/alpha.go/pkg/util"
	"github.com/spf13/cobra"
)

// LossyFlag is printed when the nodata mask looks fragmented, ready to be
// spliced into an alpha command line.
const LossyFlag = "--lossy lossy"

// NewIsLossyCmd reports whether a raster's nodata mask shows lossy compression.
func NewIsLossyCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "islossy SRC",
		Short: "report whether the nodata mask looks lossy-compressed",
		Long: fmt.Sprintf(`Counts the connected nodata regions of SRC. Prints %q when there are
%d or more, an empty line otherwise.`, LossyFlag, alpha.LossyRegionThreshold),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ndvFlag, _ := cmd.Flags().GetString("ndv")
			connFlag, _ := cmd.Flags().GetInt("connectivity")
			conn, err := alpha.ParseConnectivity(connFlag)
			if err != nil {
				return err
			}

			ds, err := raster.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open source: %w", err)
			}
			ndv, err := alpha.ParseNodata(ndvFlag, ds.Bands)
			if err != nil {
				return fmt.Errorf("invalid --ndv: %w", err)
			}
			ctx := logging.AppendCtx(ctx, slog.String("job", util.JobID([]any{args[0], ndv, connFlag})))

			var n int
			switch ds.DType {
			case raster.Uint8:
				n, err = countRegions[uint8](ds, ndv, conn)
			case raster.Uint16:
				n, err = countRegions[uint16](ds, ndv, conn)
			case raster.Uint32:
				n, err = countRegions[uint32](ds, ndv, conn)
			case raster.Int8:
				n, err = countRegions[int8](ds, ndv, conn)
			case raster.Int16:
				n, err = countRegions[int16](ds, ndv, conn)
			case raster.Int32:
				n, err = countRegions[int32](ds, ndv, conn)
			default:
				err = fmt.Errorf("%w: %s", raster.ErrUnsupported, ds.DType)
			}
			if err != nil {
				return err
			}
			slog.DebugContext(ctx, "nodata regions", slog.String("src", args[0]), slog.Int("regions", n))

			if alpha.IsLossy(n) {
				fmt.Fprintln(cmd.OutOrStdout(), LossyFlag)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "")
			}
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("ndv", "[0, 0, 0]", "nodata value, a single value or a per-band list")
	pf.Int("connectivity", int(alpha.Connectivity8), "pixel connectivity of a region (4 or 8)")
	return cmd
}

func countRegions[T alpha.Sample](ds *raster.Dataset, ndv alpha.Nodata, conn alpha.Connectivity) (int, error) {
	b, err := raster.ReadBlock[T](ds, ds.Bounds())
	if err != nil {
		return 0, err
	}
	return alpha.CountNodataRegions(b, ndv, conn)
}
