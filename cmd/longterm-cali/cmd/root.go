package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pollynet/longterm-cali/internal/service/longterm"
	"github.com/pollynet/longterm-cali/internal/version"
)

var (
	// configPath stores the path to the optional settings YAML file.
	configPath string
	// logLevel overrides the level from the settings file.
	logLevel string

	// rootCmd renders the calibration figure of one bundle.
	rootCmd = &cobra.Command{
		Use:   "longterm-cali <input.mat> <output-dir>",
		Short: "Render the long-term lidar calibration figure.",
		Long: `Reads a calibration bundle exported by the processing chain and draws the
long-term history of lidar constants, transmission ratios and the depolarization
calibration constant, overlaid with logbook events.

The figure is written as <YYYYMMDD>_long_term_cali_results.png into the output
directory, named after the bundle's data time. Nothing is written when the bundle
is missing or cannot be read.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			_, err := longterm.Run(ctx, &longterm.Options{
				InputPath:  args[0],
				OutputDir:  args[1],
				ConfigPath: configPath,
				LogLevel:   logLevel,
			})

			return err
		},
	}
)

// Execute runs the longterm-cali CLI and exits with non-zero status on error.
func Execute() {
	rootCmd.AddCommand(version.Command(), sampleCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to settings file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level: debug, info, warn or error")
}
