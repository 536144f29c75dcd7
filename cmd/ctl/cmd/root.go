package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jpfielding/alpha.go/pkg/config"
	"github.com/jpfielding/alpha.go/pkg/logging"
	"github.com/spf13/cobra"
)

func NewRoot(ctx context.Context, gitsha string) *cobra.Command {
	cfg := config.Default()
	closeLog := func() error { return nil }

	cmd := &cobra.Command{
		Use:          "rioalpha",
		Short:        "alpha band and nodata tools for RGB rasters",
		Long:         "Adds alpha bands to RGB(A) GeoTIFFs, discovers nodata values and flags lossy nodata masks.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg = loaded

			if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
				cfg.Logging.Level = f.Value.String()
			}
			if f := cmd.Flags().Lookup("log-file"); f != nil && f.Changed {
				cfg.Logging.Logfile = f.Value.String()
			}
			if f := cmd.Flags().Lookup("log-json"); f != nil && f.Changed {
				cfg.Logging.JSON, _ = cmd.Flags().GetBool("log-json")
			}

			w, closer := cfg.Logging.File().Writer(os.Stderr)
			closeLog = closer
			slog.SetDefault(logging.Logger(w, cfg.Logging.JSON, cfg.Logging.SlogLevel()))

			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Logging.Level))); err != nil {
				slog.WarnContext(ctx, "Invalid log level, defaulting to INFO", "level", cfg.Logging.Level, "error", err)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return closeLog()
		},
		Run: func(cmd *cobra.Command, args []string) {
			printCommandTree(cmd, 0)
		},
	}
	cmd.AddCommand(
		NewVersionCmd(ctx, gitsha),
		NewAlphaCmd(ctx, &cfg),
		NewIsLossyCmd(ctx),
		NewFindNodataCmd(ctx),
	)
	pf := cmd.PersistentFlags()
	pf.String("config", "", "TOML config file with [alpha] and [logging] defaults")
	pf.String("log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	pf.String("log-file", "", "rotate logs into this file instead of stderr")
	pf.Bool("log-json", false, "log as JSON")
	return cmd
}

func printCommandTree(cmd *cobra.Command, indent int) {
	fmt.Fprintln(cmd.OutOrStdout(), strings.Repeat("\t", indent), cmd.Use+":", cmd.Short)
	for _, subCmd := range cmd.Commands() {
		printCommandTree(subCmd, indent+1)
	}
}

func NewVersionCmd(ctx context.Context, gitsha string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "git sha for this build",
		Long:  "git sha for this build",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), gitsha)
		},
	}
	return cmd
}
