package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	tss "github.com/lucasjlepore/tss-estimator"
	"github.com/lucasjlepore/tss-estimator/report"
	"github.com/spf13/viper"
)

// Defaults for the keys that are not part of tss.Config.
const (
	DefaultDir      = "CSVs"
	DefaultFormat   = string(report.TextFormat)
	DefaultLogLevel = "info"
	DefaultColor    = "auto"
)

// RawInput holds the unvalidated values resolved by Viper from defaults, the
// config file, TSS_* environment variables and flags.
type RawInput struct {
	RestHR           int     `mapstructure:"rest-hr"`
	ThresholdHR      int     `mapstructure:"threshold-hr"`
	Alpha            float64 `mapstructure:"alpha"`
	MaxTimePerSample float64 `mapstructure:"max-time-per-sample"`

	Dir      string `mapstructure:"dir"`
	FitDir   string `mapstructure:"fit-dir"`
	Workers  int    `mapstructure:"workers"`
	Format   string `mapstructure:"format"`
	Width    int    `mapstructure:"width"`
	LogLevel string `mapstructure:"log-level"`
	Color    string `mapstructure:"color"`
}

// Settings is the validated configuration shared by all commands.
type Settings struct {
	Estimator tss.Config
	Dir       string
	FitDir    string
	Workers   int
	Format    report.Format
	Width     int
	LogLevel  slog.Level
	// UseColors is nil when colour should follow terminal detection.
	UseColors *bool
}

// setDefaults registers the default of every key on v.
func setDefaults(v *viper.Viper) {
	v.SetDefault("rest-hr", tss.DefaultRestHR)
	v.SetDefault("threshold-hr", tss.DefaultThresholdHR)
	v.SetDefault("alpha", tss.DefaultAlpha)
	v.SetDefault("max-time-per-sample", tss.DefaultMaxTimePerSample)
	v.SetDefault("dir", DefaultDir)
	v.SetDefault("fit-dir", "")
	v.SetDefault("workers", 0)
	v.SetDefault("format", DefaultFormat)
	v.SetDefault("width", 0)
	v.SetDefault("log-level", DefaultLogLevel)
	v.SetDefault("color", DefaultColor)
}

// configureSources points v at the config file and the environment.
func configureSources(v *viper.Viper, configFile string) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".tss-estimator")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}
	v.SetEnvPrefix("TSS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// loadSettings reads the config file if there is one, then unmarshals and
// validates every resolved value.
func loadSettings(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var input RawInput
	if err := v.Unmarshal(&input); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	return processInput(input)
}

// processInput validates input and converts it into Settings.
func processInput(input RawInput) (*Settings, error) {
	s := &Settings{
		Estimator: tss.Config{
			RestHR:           input.RestHR,
			ThresholdHR:      input.ThresholdHR,
			Alpha:            input.Alpha,
			MaxTimePerSample: input.MaxTimePerSample,
		},
		Dir:     strings.TrimSpace(input.Dir),
		FitDir:  strings.TrimSpace(input.FitDir),
		Workers: input.Workers,
		Width:   input.Width,
	}
	if err := s.Estimator.Validate(); err != nil {
		return nil, err
	}
	if s.Dir == "" {
		return nil, fmt.Errorf("dir must not be empty")
	}
	if s.Workers < 0 {
		return nil, fmt.Errorf("workers must be 0 or greater (received %d)", s.Workers)
	}
	if s.Width < 0 {
		return nil, fmt.Errorf("width must be 0 or greater (received %d)", s.Width)
	}

	format, err := report.ParseFormat(input.Format)
	if err != nil {
		return nil, err
	}
	s.Format = format

	if err := s.LogLevel.UnmarshalText([]byte(strings.TrimSpace(input.LogLevel))); err != nil {
		return nil, fmt.Errorf("invalid --log-level value %q: %w", input.LogLevel, err)
	}

	colors, err := parseColor(input.Color)
	if err != nil {
		return nil, fmt.Errorf("invalid --color value: %w", err)
	}
	s.UseColors = colors

	return s, nil
}

func parseColor(s string) (*bool, error) {
	var on bool
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return nil, nil
	case "yes", "true", "1":
		on = true
	case "no", "false", "0":
		on = false
	default:
		return nil, fmt.Errorf("invalid color mode: %s (expected auto/yes/no/true/false/1/0)", s)
	}
	return &on, nil
}
