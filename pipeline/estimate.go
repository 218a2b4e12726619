package pipeline

import (
	"log/slog"

	tss "github.com/lucasjlepore/tss-estimator"
	"github.com/lucasjlepore/tss-estimator/fitcsv"
)

// EstimateDir runs the standalone estimate over dir, one file at a time and in
// name order. Files without an elapsed time get an Estimate with Err set and
// the remaining files are still processed.
func EstimateDir(dir string, cfg tss.Config) ([]Estimate, error) {
	paths, err := listFiles(dir)
	if err != nil {
		return nil, &DirError{Dir: dir, Err: err}
	}

	out := make([]Estimate, 0, len(paths))
	for _, path := range paths {
		est := EstimateFile(path, cfg)
		if est.Err != nil {
			slog.Debug("no estimate", "path", path, "error", est.Err)
		}
		out = append(out, est)
	}
	return out, nil
}

// EstimateFile computes the gap-corrected estimate of one file.
func EstimateFile(path string, cfg tss.Config) Estimate {
	raw, err := ParseFileUnfiltered(path)
	if err != nil {
		return Estimate{Path: path, Err: err}
	}
	return EstimateRaw(raw, cfg)
}

// EstimateRaw computes the gap-corrected estimate of an already parsed file.
func EstimateRaw(raw RawFile, cfg tss.Config) Estimate {
	est := Estimate{Path: raw.Path, ElapsedTime: raw.ElapsedTime, Samples: len(raw.HeartRate)}
	switch {
	case raw.ElapsedTime == fitcsv.Unset:
		est.Err = ErrNoElapsedTime
	case len(raw.HeartRate) == 0:
		est.Err = ErrNoSamples
	default:
		est.TSS = tss.GapCorrected(tss.Estimate(raw.HeartRate, cfg), raw.ElapsedTime, len(raw.HeartRate))
	}
	return est
}
