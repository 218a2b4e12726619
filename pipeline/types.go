package pipeline

import (
	"errors"
	"fmt"

	tss "github.com/lucasjlepore/tss-estimator"
)

// Options configures directory scans.
type Options struct {
	// MaxTimePerSample rejects files whose elapsed time exceeds this many
	// seconds per heart-rate sample.
	MaxTimePerSample float64
	// Workers caps concurrent file tasks. Zero runs one task per file.
	Workers int
}

// DefaultOptions returns the scan options matching tss.DefaultConfig.
func DefaultOptions() Options {
	return Options{MaxTimePerSample: tss.DefaultMaxTimePerSample}
}

func (o Options) withDefaults() Options {
	if o.MaxTimePerSample <= 0 {
		o.MaxTimePerSample = tss.DefaultMaxTimePerSample
	}
	if o.Workers < 0 {
		o.Workers = 0
	}
	return o
}

// FileResult is one accepted activity file.
type FileResult struct {
	Path string
	// ReferenceTSS is the vendor score rescaled from the elapsed time to the
	// number of heart-rate samples.
	ReferenceTSS float64
	HeartRate    []int
}

// Samples returns the number of heart-rate samples.
func (r FileResult) Samples() int { return len(r.HeartRate) }

// FileFailure records a file that produced no result.
type FileFailure struct {
	Path string
	Err  error
}

// ResultSet is every accepted file of one directory scan. Order is not
// meaningful to consumers.
type ResultSet struct {
	Dir      string
	Files    []FileResult
	Failures []FileFailure
}

// RawFile is a file read without quality filtering.
type RawFile struct {
	Path string
	// ElapsedTime is the last total_elapsed_time seen, or fitcsv.Unset.
	ElapsedTime float64
	HeartRate   []int
}

// Estimate is the outcome of the standalone estimate for one file. Err is set
// when no estimate could be computed.
type Estimate struct {
	Path        string
	ElapsedTime float64
	Samples     int
	TSS         float64
	Err         error
}

// Rejection reasons. Rejected files are skipped, never fatal.
var (
	ErrNoSession          = errors.New("no session summary in data file")
	ErrNoSamples          = errors.New("no heart rate samples in data file")
	ErrInvalidElapsedTime = errors.New("total elapsed time is not positive")
	ErrTooSparse          = errors.New("too few heart rate samples for elapsed time")
	ErrNoElapsedTime      = errors.New("no total elapsed time in data file")
)

// IsRejection reports whether err is a data-quality rejection rather than a
// read or format failure.
func IsRejection(err error) bool {
	return errors.Is(err, ErrNoSession) ||
		errors.Is(err, ErrNoSamples) ||
		errors.Is(err, ErrInvalidElapsedTime) ||
		errors.Is(err, ErrTooSparse) ||
		errors.Is(err, ErrNoElapsedTime)
}

// RowError locates a row that violates the field schema.
type RowError struct {
	Path string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// DirError reports a directory that could not be listed.
type DirError struct {
	Dir string
	Err error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("no such directory: %s: %v", e.Dir, e.Err)
}

func (e *DirError) Unwrap() error { return e.Err }
