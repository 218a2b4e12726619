package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/lucasjlepore/tss-estimator/pipeline"
)

var errorLabel = color.New(color.FgRed, color.Bold).SprintFunc()

// WriteEstimates writes one line per file: the estimate, or the reason none
// could be computed.
func WriteEstimates(w io.Writer, estimates []pipeline.Estimate) error {
	for _, est := range estimates {
		var err error
		if est.Err != nil {
			err = WriteFileError(w, est.Path, est.Err)
		} else {
			_, err = fmt.Fprintf(w, "%s. Estimated TSS = %.1f\n", est.Path, est.TSS)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteFileError reports a file that produced no estimate.
func WriteFileError(w io.Writer, path string, cause error) error {
	_, err := fmt.Fprintf(w, "%s in %s:  %s\n", errorLabel("Error"), path, reason(path, cause))
	return err
}

// WriteDirError reports a directory that could not be read.
func WriteDirError(w io.Writer, dir string) error {
	_, err := fmt.Fprintf(w, "%s: No such directory: %s. Please check the directory path\n", errorLabel("Error"), dir)
	return err
}

// reason drops the location prefix of row errors, which the line already names.
func reason(path string, cause error) string {
	var rowErr *pipeline.RowError
	if errors.As(cause, &rowErr) && rowErr.Path == path {
		return fmt.Sprintf("line %d: %v", rowErr.Line, rowErr.Err)
	}
	return cause.Error()
}
