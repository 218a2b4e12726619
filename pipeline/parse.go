package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/lucasjlepore/tss-estimator/fitcsv"
)

const maxRowBytes = 16 * 1024 * 1024

// ParseFile reads one CSV activity export and applies the quality filter.
// Rejected files return an error for which IsRejection is true.
func ParseFile(path string, opts Options) (FileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ParseReader(path, f, opts)
}

// ParseReader is ParseFile over an already open stream; name labels errors
// and the result.
func ParseReader(name string, r io.Reader, opts Options) (FileResult, error) {
	opts = opts.withDefaults()
	var (
		heartRate []int
		summary   = fitcsv.UnsetSummary()
		seen      bool
	)
	err := eachRow(r, name, func(row string) error {
		hr, ok, err := fitcsv.HeartRate(row)
		if err != nil {
			return err
		}
		if ok {
			heartRate = append(heartRate, hr)
		}

		s, ok, err := fitcsv.Session(row)
		if err != nil {
			return err
		}
		if ok {
			summary = s
			seen = true
		}
		return nil
	})
	if err != nil {
		return FileResult{}, err
	}

	if err := checkQuality(summary, seen, len(heartRate), opts.MaxTimePerSample); err != nil {
		return FileResult{}, fmt.Errorf("%s: %w", name, err)
	}
	return FileResult{
		Path:         name,
		ReferenceTSS: normalizeTSS(summary, len(heartRate)),
		HeartRate:    heartRate,
	}, nil
}

// ParseFileUnfiltered reads one CSV activity export without any filtering.
func ParseFileUnfiltered(path string) (RawFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawFile{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ParseReaderUnfiltered(path, f)
}

// ParseReaderUnfiltered is ParseFileUnfiltered over an already open stream.
func ParseReaderUnfiltered(name string, r io.Reader) (RawFile, error) {
	raw := RawFile{Path: name, ElapsedTime: fitcsv.Unset}
	err := eachRow(r, name, func(row string) error {
		hr, ok, err := fitcsv.HeartRate(row)
		if err != nil {
			return err
		}
		if ok {
			raw.HeartRate = append(raw.HeartRate, hr)
		}

		elapsed, ok, err := fitcsv.ElapsedTime(row)
		if err != nil {
			return err
		}
		if ok {
			raw.ElapsedTime = elapsed
		}
		return nil
	})
	if err != nil {
		return RawFile{}, err
	}
	return raw, nil
}

func checkQuality(s fitcsv.SessionSummary, seen bool, samples int, maxTimePerSample float64) error {
	switch {
	case !seen:
		return ErrNoSession
	case samples == 0:
		return ErrNoSamples
	case s.TotalElapsedTime <= 0:
		return ErrInvalidElapsedTime
	case s.TotalElapsedTime > maxTimePerSample*float64(samples):
		return ErrTooSparse
	}
	return nil
}

// normalizeTSS rescales the vendor score, computed over the elapsed time, to
// the seconds that actually carry a heart-rate sample.
func normalizeTSS(s fitcsv.SessionSummary, samples int) float64 {
	return s.ReferenceTSS / s.TotalElapsedTime * float64(samples)
}

func eachRow(r io.Reader, path string, fn func(row string) error) error {
	sc := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	sc.Buffer(buf, maxRowBytes)

	line := 0
	for sc.Scan() {
		line++
		if err := fn(sc.Text()); err != nil {
			return &RowError{Path: path, Line: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
