package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/pollynet/longterm-cali/internal/logger"
	"github.com/pollynet/longterm-cali/internal/service/sample"
)

// sampleCommand returns the `sample` subcommand writing a synthetic bundle.
func sampleCommand() *cobra.Command {
	var (
		opts  sample.Options
		start string
	)

	cmd := &cobra.Command{
		Use:   "sample <output.mat>",
		Short: "Write a synthetic calibration bundle.",
		Long: `Writes a deterministic calibration bundle with daily lidar constants,
logbook events, ND-filter changes and depolarization calibrations. Render it with
the root command to check an installation without the processing chain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok && logLevel != "" {
				logger.SetLevel(level)
			}

			if start != "" {
				t, err := time.Parse(time.DateOnly, start)
				if err != nil {
					return err
				}

				opts.Spec.Start = t
			}

			opts.OutputPath = args[0]

			return sample.Run(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "campaign start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&opts.Spec.Days, "days", sample.DefaultDays, "number of daily calibrations")
	cmd.Flags().Float64Var(&opts.Spec.DPI, "dpi", sample.DefaultDPI, "figure resolution stored in the bundle")
	cmd.Flags().StringVar(&opts.Spec.Instrument, "instrument", "", "instrument name")
	cmd.Flags().StringVar(&opts.Spec.Location, "location", "", "campaign location")
	cmd.Flags().BoolVar(&opts.Uncompressed, "uncompressed", false, "store variables without zlib compression")

	return cmd
}
