package fitconvert

// Extensions of the files read and written by the converter.
const (
	FITExt = ".fit"
	CSVExt = ".csv"
)

// Options controls conversion behavior.
type Options struct {
	// Overwrite replaces an existing CSV of the same name.
	Overwrite bool
}

// Result describes one converted file.
type Result struct {
	SourcePath       string `json:"source_path"`
	OutputPath       string `json:"output_path"`
	RowCount         int    `json:"row_count"`
	RecordCount      int    `json:"record_count"`
	HeartRateSamples int    `json:"heart_rate_samples"`
	SessionCount     int    `json:"session_count"`
}

// Failure is a FIT file that could not be converted.
type Failure struct {
	Path string
	Err  error
}

// DirResult collects the outcome of converting a directory.
type DirResult struct {
	Converted []Result
	Failures  []Failure
}
