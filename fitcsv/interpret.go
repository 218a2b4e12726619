package fitcsv

import (
	"math"
	"strconv"
	"strings"
)

// Keys of the fields read from data rows.
const (
	KeyHeartRate           = ",heart_rate"
	KeyTotalElapsedTime    = ",total_elapsed_time"
	KeyTrainingStressScore = ",training_stress_score"

	sessionMessage = "session"
)

// Unset marks session values that were never read.
const Unset = -1.0

// SessionSummary holds the whole-activity values of a session row.
type SessionSummary struct {
	TotalElapsedTime float64 // seconds
	ReferenceTSS     float64 // vendor computed training stress score
}

// UnsetSummary returns a summary with both values at the Unset sentinel.
func UnsetSummary() SessionSummary {
	return SessionSummary{TotalElapsedTime: Unset, ReferenceTSS: Unset}
}

// HeartRate returns the heart_rate value of a data row. A value that is not an
// integer is an error; the row schema is trusted otherwise.
func HeartRate(row string) (int, bool, error) {
	dr, ok := NewDataRow(row)
	if !ok {
		return 0, false, nil
	}
	raw, ok, err := dr.Field(KeyHeartRate)
	if err != nil || !ok {
		return 0, false, err
	}
	hr, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, false, &FieldError{Key: KeyHeartRate, Offset: strings.Index(row, KeyHeartRate), Reason: "heart rate " + strconv.Quote(raw) + " is not an integer", Err: ErrInvalidNumber}
	}
	return hr, true, nil
}

// Session returns the summary of a session row. Rows missing either value, or
// carrying values that are not numbers, are skipped.
func Session(row string) (SessionSummary, bool, error) {
	dr, ok := sessionRow(row)
	if !ok {
		return SessionSummary{}, false, nil
	}
	elapsed, ok, err := floatField(dr, KeyTotalElapsedTime)
	if err != nil || !ok {
		return SessionSummary{}, false, err
	}
	tss, ok, err := floatField(dr, KeyTrainingStressScore)
	if err != nil || !ok {
		return SessionSummary{}, false, err
	}
	return SessionSummary{TotalElapsedTime: elapsed, ReferenceTSS: tss}, true, nil
}

// ElapsedTime returns total_elapsed_time of a session row.
func ElapsedTime(row string) (float64, bool, error) {
	dr, ok := sessionRow(row)
	if !ok {
		return 0, false, nil
	}
	return floatField(dr, KeyTotalElapsedTime)
}

func sessionRow(row string) (DataRow, bool) {
	dr, ok := NewDataRow(row)
	if !ok || !dr.Message(sessionMessage) {
		return DataRow{}, false
	}
	return dr, true
}

func floatField(dr DataRow, key string) (float64, bool, error) {
	raw, ok, err := dr.Field(key)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}
