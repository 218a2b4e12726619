// Package tss estimates a heart-rate based training stress score.
package tss

import (
	"errors"
	"fmt"
	"math"
)

const (
	secondsPerHour = 3600.0

	// pointsPerHour is the score of one hour spent exactly at threshold heart rate.
	pointsPerHour = 100.0
)

// Defaults for Config.
const (
	DefaultRestHR           = 49
	DefaultThresholdHR      = 189
	DefaultAlpha            = 2.0
	DefaultMaxTimePerSample = 2.0
)

// ErrInvalidConfig is wrapped by every Config.Validate failure.
var ErrInvalidConfig = errors.New("invalid estimator config")

// Config holds the athlete-specific calibration of the estimate.
type Config struct {
	RestHR      int     `mapstructure:"rest-hr"`
	ThresholdHR int     `mapstructure:"threshold-hr"`
	Alpha       float64 `mapstructure:"alpha"`
	// MaxTimePerSample is the largest average number of elapsed seconds per
	// heart-rate sample a recording may have before it is rejected.
	MaxTimePerSample float64 `mapstructure:"max-time-per-sample"`
}

// DefaultConfig returns the calibration used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		RestHR:           DefaultRestHR,
		ThresholdHR:      DefaultThresholdHR,
		Alpha:            DefaultAlpha,
		MaxTimePerSample: DefaultMaxTimePerSample,
	}
}

// Validate checks that the estimate is computable with cfg.
func (cfg Config) Validate() error {
	if cfg.RestHR < 0 {
		return fmt.Errorf("%w: rest heart rate %d is negative", ErrInvalidConfig, cfg.RestHR)
	}
	if cfg.ThresholdHR <= cfg.RestHR {
		return fmt.Errorf("%w: threshold heart rate %d must exceed rest heart rate %d", ErrInvalidConfig, cfg.ThresholdHR, cfg.RestHR)
	}
	if !isFinite(cfg.Alpha) || cfg.Alpha <= 0 {
		return fmt.Errorf("%w: alpha %v must be positive", ErrInvalidConfig, cfg.Alpha)
	}
	if !isFinite(cfg.MaxTimePerSample) || cfg.MaxTimePerSample <= 0 {
		return fmt.Errorf("%w: max time per sample %v must be positive", ErrInvalidConfig, cfg.MaxTimePerSample)
	}
	return nil
}

// ReserveFraction is the fraction of the usable heart-rate range used at hr.
func (cfg Config) ReserveFraction(hr int) float64 {
	return float64(hr-cfg.RestHR) / float64(cfg.ThresholdHR-cfg.RestHR)
}

// Estimate sums the strain of one-second heart-rate samples:
//
//	100/3600 * sum(max(0, reserveFraction(hr))^alpha)
//
// so that an hour at threshold heart rate scores 100. Samples at or below rest
// contribute nothing.
func Estimate(heartRate []int, cfg Config) float64 {
	acc := 0.0
	for _, hr := range heartRate {
		frac := cfg.ReserveFraction(hr)
		if frac <= 0 {
			continue
		}
		acc += math.Pow(frac, cfg.Alpha)
	}
	return acc * pointsPerHour / secondsPerHour
}

// GapCorrected rescales an estimate computed over samples seconds of heart
// rate to the elapsed duration of the recording.
func GapCorrected(estimate, elapsedSeconds float64, samples int) float64 {
	if samples <= 0 {
		return 0
	}
	return estimate * elapsedSeconds / float64(samples)
}

// HeartRateStats summarizes a heart-rate series.
type HeartRateStats struct {
	Count int     `json:"count"`
	Min   int     `json:"min"`
	Avg   float64 `json:"avg"`
	Max   int     `json:"max"`
}

// Stats returns min, average and max of heartRate. All are zero for an
// empty series.
func Stats(heartRate []int) HeartRateStats {
	if len(heartRate) == 0 {
		return HeartRateStats{}
	}
	st := HeartRateStats{Count: len(heartRate), Min: heartRate[0], Max: heartRate[0]}
	total := 0.0
	for _, hr := range heartRate {
		if hr < st.Min {
			st.Min = hr
		}
		if hr > st.Max {
			st.Max = hr
		}
		total += float64(hr)
	}
	st.Avg = total / float64(len(heartRate))
	return st
}

// Mean returns the arithmetic mean of the finite values, or 0.
func Mean(values []float64) float64 {
	total := 0.0
	count := 0
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		total += v
		count++
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
