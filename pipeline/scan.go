package pipeline

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
)

// ScanDir parses every file of dir concurrently and keeps the accepted ones.
// A directory that cannot be listed yields an empty set together with a
// *DirError; the caller decides how to report it.
func ScanDir(dir string, opts Options) (*ResultSet, error) {
	opts = opts.withDefaults()
	set := &ResultSet{Dir: dir}

	paths, err := listFiles(dir)
	if err != nil {
		return set, &DirError{Dir: dir, Err: err}
	}

	type outcome struct {
		result FileResult
		err    error
	}
	outcomes := make([]outcome, len(paths))

	start := time.Now()
	var g errgroup.Group
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for i, path := range paths {
		i, path := i, path
		// Each task owns outcomes[i] only.
		g.Go(func() error {
			res, err := ParseFile(path, opts)
			outcomes[i] = outcome{result: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for i, o := range outcomes {
		if o.err != nil {
			if IsRejection(o.err) {
				slog.Debug("file rejected", "path", paths[i], "reason", o.err)
			} else {
				slog.Warn("file failed", "path", paths[i], "error", o.err)
			}
			set.Failures = append(set.Failures, FileFailure{Path: paths[i], Err: o.err})
			continue
		}
		set.Files = append(set.Files, o.result)
	}

	slog.Debug("directory scanned",
		"dir", dir,
		"files", len(paths),
		"accepted", len(set.Files),
		"elapsed", time.Since(start),
	)
	return set, nil
}

// listFiles returns the regular files of dir in name order.
func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
