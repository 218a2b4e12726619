package cmd

import (
	"errors"
	"time"

	"github.com/lucasjlepore/tss-estimator/pipeline"
	"github.com/lucasjlepore/tss-estimator/report"
	"github.com/spf13/cobra"
)

// researchCmd compares estimates with the recorded reference scores.
var researchCmd = &cobra.Command{
	Use:   "research [dir]",
	Short: "Compare estimated and recorded TSS for every file of a directory.",
	Long: `Parse every activity CSV of the directory concurrently, drop files without a
session summary or with too few heart-rate samples, and print the estimate next
to the recorded score rescaled to the sample count.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResearch(cmd, dirArg(args))
	},
}

func runResearch(cmd *cobra.Command, dir string) error {
	out := cmd.OutOrStdout()
	start := time.Now()

	set, err := pipeline.ScanDir(dir, pipeline.Options{
		MaxTimePerSample: settings.Estimator.MaxTimePerSample,
		Workers:          settings.Workers,
	})
	var dirErr *pipeline.DirError
	if errors.As(err, &dirErr) {
		if err := report.WriteDirError(out, dirErr.Dir); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	r := report.BuildResearch(set, settings.Estimator)
	r.Elapsed = time.Since(start)
	return report.WriteResearch(out, r, report.Options{Format: settings.Format, Width: settings.Width})
}

// dirArg returns the positional directory, or the configured one.
func dirArg(args []string) string {
	if len(args) == 1 && args[0] != "" {
		return args[0]
	}
	return settings.Dir
}
