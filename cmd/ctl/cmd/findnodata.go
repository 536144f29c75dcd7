package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jpfielding/alpha.go/pkg/findnodata"
	"github.com/jpfielding/alpha.go/pkg/logging"
	"github.com/jpfielding/alpha.go/pkg/raster"
	"github.com/jpfielding/alpha.go/pkg/util"
	"github.com/spf13/cobra"
)

// NewFindNodataCmd reports the nodata value of a raster.
func NewFindNodataCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findnodata SRC",
		Short: "report or discover the nodata value of a raster",
		Long: `Prints, in order of precedence: the --user_nodata value, "alpha" for a
4 band raster, the declared nodata value, or with --discovery a value guessed
from the pixels as "[r, g, b]". Prints an empty line when undetermined.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			opts := findnodata.DetermineOptions{}
			opts.User, _ = flags.GetString("user_nodata")
			opts.Discovery, _ = flags.GetBool("discovery")
			opts.Verbose, _ = flags.GetBool("verbose")
			debug, _ := flags.GetBool("debug")
			debugDir, _ := flags.GetString("debug-dir")

			ctx := logging.AppendCtx(ctx, slog.String("job", util.JobID([]any{args[0], opts.User, opts.Discovery})))
			if debug {
				opts.Debug = func(stage string, px findnodata.Pixels) {
					name := "histogram_" + stage + ".png"
					if err := writeHistogram(debugDir, name, findnodata.Histogram(px, 256)); err != nil {
						slog.WarnContext(ctx, "histogram not written", slog.String("name", name), slog.Any("error", err))
						return
					}
					slog.InfoContext(ctx, "wrote histogram", slog.String("stage", stage), slog.Int("pixels", len(px)))
				}
			}

			ds, err := raster.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open source: %w", err)
			}
			out, err := findnodata.Determine(ctx, ds, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	pf := cmd.PersistentFlags()
	pf.String("user_nodata", "", "nodata value to report as is")
	pf.Bool("discovery", false, "guess the nodata value from the pixels when none is declared")
	pf.Bool("debug", false, "write histograms of the pixels used for discovery")
	pf.String("debug-dir", ".", "directory for --debug histograms")
	pf.BoolP("verbose", "v", false, `print "None" when discovery is ambiguous`)
	return cmd
}
