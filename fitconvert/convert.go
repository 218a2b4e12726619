// Package fitconvert turns FIT activity files into the row-oriented CSV
// format read by package fitcsv.
package fitconvert

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ConvertFile converts one FIT file into outputDir/<name>.csv.
func ConvertFile(inputPath, outputDir string, opts Options) (*Result, error) {
	if strings.TrimSpace(inputPath) == "" {
		return nil, fmt.Errorf("input path is required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read fit file: %w", err)
	}
	rows, err := ConvertBytes(data)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", inputPath, err)
	}

	if err := ensureOutputDir(outputDir); err != nil {
		return nil, err
	}
	outPath := filepath.Join(outputDir, csvName(inputPath))
	if err := checkTarget(outPath, opts.Overwrite); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outPath, rows.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}

	return &Result{
		SourcePath:       inputPath,
		OutputPath:       outPath,
		RowCount:         rows.Len(),
		RecordCount:      rows.RecordCount,
		HeartRateSamples: rows.HeartRateSamples,
		SessionCount:     rows.SessionCount,
	}, nil
}

// ConvertDir converts every *.fit file of fitDir. Files that fail are
// collected and the remaining ones are still converted.
func ConvertDir(fitDir, outputDir string, opts Options) (*DirResult, error) {
	entries, err := os.ReadDir(fitDir)
	if err != nil {
		return nil, fmt.Errorf("read fit directory: %w", err)
	}
	if err := ensureOutputDir(outputDir); err != nil {
		return nil, err
	}

	out := &DirResult{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), FITExt) {
			continue
		}
		path := filepath.Join(fitDir, e.Name())
		res, err := ConvertFile(path, outputDir, opts)
		if err != nil {
			slog.Warn("fit conversion failed", "path", path, "error", err)
			out.Failures = append(out.Failures, Failure{Path: path, Err: err})
			continue
		}
		slog.Debug("fit converted", "path", path, "output", res.OutputPath, "rows", res.RowCount)
		out.Converted = append(out.Converted, *res)
	}
	return out, nil
}

// ClearDir removes the CSV files left in dir by an earlier conversion and
// returns how many were removed. A missing directory is not an error.
func ClearDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read csv directory: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), CSVExt) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			return removed, fmt.Errorf("remove csv: %w", err)
		}
		removed++
	}
	return removed, nil
}

func csvName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + CSVExt
}

func ensureOutputDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	return nil
}

func checkTarget(path string, overwrite bool) error {
	if overwrite {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("output file exists: %s (set overwrite=true to allow)", path)
	}
	return nil
}
