// Package cmd defines the command-line interface for tss-estimator.
package cmd

import (
	tss "github.com/lucasjlepore/tss-estimator"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(versionCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Int("rest-hr", tss.DefaultRestHR, "Resting heart rate in bpm")
	rootCmd.PersistentFlags().Int("threshold-hr", tss.DefaultThresholdHR, "Threshold heart rate in bpm")
	rootCmd.PersistentFlags().Float64("alpha", tss.DefaultAlpha, "Exponent applied to the heart-rate reserve fraction")
	rootCmd.PersistentFlags().Float64("max-time-per-sample", tss.DefaultMaxTimePerSample, "Reject files with more elapsed seconds per heart-rate sample")
	rootCmd.PersistentFlags().StringP("dir", "d", DefaultDir, "Directory of activity CSV files")
	rootCmd.PersistentFlags().String("fit-dir", "", "Directory of FIT files to convert before estimating")
	rootCmd.PersistentFlags().Int("workers", 0, "Concurrent file tasks for research (0 = one per file)")
	rootCmd.PersistentFlags().StringP("format", "f", DefaultFormat, "Research output format: text or table or json")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override for table output (0 = auto-detect)")
	rootCmd.PersistentFlags().String("log-level", DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("color", DefaultColor, "Colored error labels (auto/yes/no)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		logFatal("Error binding root flags", err)
	}

	// Bind all flags of convertCmd to Viper
	convertCmd.Flags().Bool("overwrite", true, "Replace CSV files that already exist")
	convertCmd.Flags().Bool("clear", false, "Remove existing CSV files from --dir first")
	if err := viper.BindPFlags(convertCmd.Flags()); err != nil {
		logFatal("Error binding convert flags", err)
	}
}
