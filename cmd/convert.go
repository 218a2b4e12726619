package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/lucasjlepore/tss-estimator/fitconvert"
	"github.com/lucasjlepore/tss-estimator/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// convertCmd writes one activity CSV per FIT file.
var convertCmd = &cobra.Command{
	Use:   "convert [fit-dir]",
	Short: "Convert FIT activity files into activity CSV files.",
	Long: `Decode every *.fit file of the FIT directory and write <name>.csv into --dir in
the row format read by research and estimate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fitDir := settings.FitDir
		if len(args) == 1 {
			fitDir = args[0]
		}
		if fitDir == "" {
			return fmt.Errorf("a FIT directory is required (argument or --fit-dir)")
		}
		return runConvert(cmd, fitDir, settings.Dir, viper.GetBool("clear"), viper.GetBool("overwrite"))
	},
}

func runConvert(cmd *cobra.Command, fitDir, csvDir string, clearFirst, overwrite bool) error {
	out := cmd.OutOrStdout()

	if clearFirst {
		if _, err := fitconvert.ClearDir(csvDir); err != nil {
			return err
		}
	}

	res, err := fitconvert.ConvertDir(fitDir, csvDir, fitconvert.Options{Overwrite: overwrite})
	if errors.Is(err, fs.ErrNotExist) {
		return report.WriteDirError(out, fitDir)
	}
	if err != nil {
		return err
	}

	for _, r := range res.Converted {
		if _, err := fmt.Fprintf(out, "%s -> %s (%d heart rate samples, %d sessions)\n",
			r.SourcePath, r.OutputPath, r.HeartRateSamples, r.SessionCount); err != nil {
			return err
		}
	}
	for _, f := range res.Failures {
		if err := report.WriteFileError(out, f.Path, f.Err); err != nil {
			return err
		}
	}
	return nil
}
