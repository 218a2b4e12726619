package cmd

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/lucasjlepore/tss-estimator/fitconvert"
	"github.com/lucasjlepore/tss-estimator/pipeline"
	"github.com/lucasjlepore/tss-estimator/report"
	"github.com/spf13/cobra"
)

// estimateCmd prints the gap-corrected estimate of every file.
var estimateCmd = &cobra.Command{
	Use:   "estimate [dir]",
	Short: "Print the estimated TSS of every activity CSV of a directory.",
	Long: `Estimate TSS for every file of the directory, one file at a time, scaling the
heart-rate sum to the recorded elapsed time. With --fit-dir the directory is
first cleared of CSV files and refilled from the FIT files.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEstimate(cmd, dirArg(args))
	},
}

func runEstimate(cmd *cobra.Command, dir string) error {
	out := cmd.OutOrStdout()

	if settings.FitDir != "" {
		if err := refreshCSVs(out, settings.FitDir, dir); err != nil {
			return err
		}
	}

	estimates, err := pipeline.EstimateDir(dir, settings.Estimator)
	var dirErr *pipeline.DirError
	if errors.As(err, &dirErr) {
		return report.WriteDirError(out, dirErr.Dir)
	}
	if err != nil {
		return err
	}
	return report.WriteEstimates(out, estimates)
}

// refreshCSVs replaces the CSV files of csvDir with conversions of fitDir.
func refreshCSVs(out io.Writer, fitDir, csvDir string) error {
	removed, err := fitconvert.ClearDir(csvDir)
	if err != nil {
		return err
	}
	slog.Debug("cleared csv directory", "dir", csvDir, "removed", removed)

	res, err := fitconvert.ConvertDir(fitDir, csvDir, fitconvert.Options{Overwrite: true})
	if errors.Is(err, fs.ErrNotExist) {
		return report.WriteDirError(out, fitDir)
	}
	if err != nil {
		return err
	}
	for _, f := range res.Failures {
		if err := report.WriteFileError(out, f.Path, f.Err); err != nil {
			return err
		}
	}
	slog.Info("converted fit files", "dir", fitDir, "converted", len(res.Converted), "failed", len(res.Failures))
	return nil
}
