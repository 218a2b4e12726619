package cmd

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Set by the linker at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings holds the validated configuration once PersistentPreRunE has run.
var settings = &Settings{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:   "tss-estimator",
	Short: "Estimate heart-rate based training stress for FIT activities.",
	Long: `tss-estimator computes a heart-rate based Training Stress Score for every
activity CSV in a directory and compares it with the score recorded by the
device.`,
	Version:           version,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: sharedSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig points Viper at the config file and the TSS_* environment.
func initConfig() {
	configureSources(viper.GetViper(), viper.GetString("config"))
}

// sharedSetup loads and validates settings, then applies the logging and
// colour options.
func sharedSetup(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(viper.GetViper())
	if err != nil {
		return err
	}
	*settings = *s

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: settings.LogLevel})
	slog.SetDefault(slog.New(handler).With("run", uuid.NewString()))
	if settings.UseColors != nil {
		color.NoColor = !*settings.UseColors
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func logFatal(msg string, err error) {
	_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}
