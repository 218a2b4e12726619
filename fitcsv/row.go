// Package fitcsv reads rows of the CSV format produced by FitCSVTool style
// converters. It is not a general CSV reader: values are located by key and
// must follow the fixed `,key,"value"` shape.
package fitcsv

import (
	"errors"
	"fmt"
	"strings"
)

const dataPrefix = "Data"

var (
	// ErrMalformedField reports a key whose value does not follow `,key,"value"`.
	ErrMalformedField = errors.New("malformed field")
	// ErrInvalidNumber reports a value that does not parse as the expected number.
	ErrInvalidNumber = errors.New("invalid number")
)

// FieldError describes a row that violates the field schema.
type FieldError struct {
	Key    string
	Offset int
	Reason string
	Err    error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q at column %d: %s", strings.TrimPrefix(e.Key, ","), e.Offset, e.Reason)
}

func (e *FieldError) Unwrap() error { return e.Err }

// IsDataRow reports whether row is a data record rather than a header or
// definition row.
func IsDataRow(row string) bool {
	return strings.HasPrefix(row, dataPrefix)
}

// ExtractField returns the quoted value following the first occurrence of key.
// Callers pass a leading comma (",heart_rate") so that keys such as
// "avg_heart_rate" are not matched. ok is false when the key is absent.
func ExtractField(row, key string) (value string, ok bool, err error) {
	pos := strings.Index(row, key)
	if pos < 0 {
		return "", false, nil
	}
	end := pos + len(key)

	open := strings.IndexByte(row[end:], '"')
	if open < 0 {
		return "", false, &FieldError{Key: key, Offset: end, Reason: "no quoted value after key", Err: ErrMalformedField}
	}
	open += end
	if open != end+1 {
		return "", false, &FieldError{Key: key, Offset: open, Reason: "value must follow key directly", Err: ErrMalformedField}
	}
	if row[open-1] != ',' {
		return "", false, &FieldError{Key: key, Offset: open - 1, Reason: "missing comma before value", Err: ErrMalformedField}
	}

	closing := strings.IndexByte(row[open+1:], '"')
	if closing < 0 {
		return "", false, &FieldError{Key: key, Offset: open, Reason: "unterminated quoted value", Err: ErrMalformedField}
	}
	return row[open+1 : open+1+closing], true, nil
}

// DataRow is a single data record. The zero value is not a data row.
type DataRow struct {
	text string
}

// NewDataRow returns the row and whether it is a data record.
func NewDataRow(row string) (DataRow, bool) {
	if !IsDataRow(row) {
		return DataRow{}, false
	}
	return DataRow{text: row}, true
}

// Field looks up key in the row. See ExtractField.
func (r DataRow) Field(key string) (string, bool, error) {
	if r.text == "" {
		return "", false, nil
	}
	return ExtractField(r.text, key)
}

// Message reports whether the row carries the given message type, e.g. "session".
func (r DataRow) Message(name string) bool {
	return strings.Contains(r.text, ","+name+",")
}
