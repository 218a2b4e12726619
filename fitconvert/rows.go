package fitconvert

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tormoder/fit"
)

var fitEpoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// Local message numbers written in the second column.
const (
	localRecord = iota
	localLap
	localSession
)

type field struct {
	name  string
	value string
	units string
}

// Rows holds the CSV rendering of one activity.
type Rows struct {
	lines            []string
	maxFields        int
	lastDefinition   map[int]string
	RecordCount      int
	HeartRateSamples int
	SessionCount     int
}

// ConvertBytes decodes a FIT activity and renders it as CSV rows.
func ConvertBytes(data []byte) (*Rows, error) {
	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode fit: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity fit expected: %w", err)
	}
	return RenderActivity(activity), nil
}

// RenderActivity renders record, lap and session messages in that order.
func RenderActivity(activity *fit.ActivityFile) *Rows {
	rows := &Rows{lastDefinition: make(map[int]string)}
	if activity == nil {
		return rows
	}
	for _, rec := range activity.Records {
		if rec == nil {
			continue
		}
		fields := recordFields(rec)
		if len(fields) == 0 {
			continue
		}
		rows.add(localRecord, "record", fields)
		rows.RecordCount++
		if rec.HeartRate != math.MaxUint8 {
			rows.HeartRateSamples++
		}
	}
	for _, lap := range activity.Laps {
		if lap == nil {
			continue
		}
		if fields := lapFields(lap); len(fields) > 0 {
			rows.add(localLap, "lap", fields)
		}
	}
	for _, s := range activity.Sessions {
		if s == nil {
			continue
		}
		if fields := sessionFields(s); len(fields) > 0 {
			rows.add(localSession, "session", fields)
			rows.SessionCount++
		}
	}
	return rows
}

// Len returns the number of rows, header included.
func (r *Rows) Len() int { return len(r.lines) + 1 }

// Bytes returns the rows with a header line sized to the widest message.
func (r *Rows) Bytes() []byte {
	var b strings.Builder
	b.WriteString("Type,Local Number,Message")
	for i := 1; i <= r.maxFields; i++ {
		fmt.Fprintf(&b, ",Field %d,Value %d,Units %d", i, i, i)
	}
	b.WriteByte('\n')
	for _, line := range r.lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func (r *Rows) add(local int, message string, fields []field) {
	if sig := signature(fields); r.lastDefinition[local] != sig {
		r.lastDefinition[local] = sig
		r.lines = append(r.lines, definitionRow(local, message, fields))
	}
	r.lines = append(r.lines, dataRow(local, message, fields))
	r.maxFields = max(r.maxFields, len(fields))
}

func signature(fields []field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return strings.Join(names, "|")
}

func definitionRow(local int, message string, fields []field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Definition,%d,%s,", local, message)
	for _, f := range fields {
		fmt.Fprintf(&b, "%s,1,,", f.name)
	}
	return b.String()
}

func dataRow(local int, message string, fields []field) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Data,%d,%s,", local, message)
	for _, f := range fields {
		fmt.Fprintf(&b, "%s,\"%s\",%s,", f.name, f.value, f.units)
	}
	return b.String()
}

func recordFields(rec *fit.RecordMsg) []field {
	var out []field
	out = appendTime(out, "timestamp", rec.Timestamp)
	out = appendFloat(out, "distance", rec.GetDistanceScaled(), "m")
	if rec.HeartRate != math.MaxUint8 {
		out = append(out, field{name: "heart_rate", value: strconv.Itoa(int(rec.HeartRate)), units: "bpm"})
	}
	if rec.Cadence != math.MaxUint8 {
		out = append(out, field{name: "cadence", value: strconv.Itoa(int(rec.Cadence)), units: "rpm"})
	}
	if rec.Power != math.MaxUint16 {
		out = append(out, field{name: "power", value: strconv.Itoa(int(rec.Power)), units: "watts"})
	}
	return out
}

func lapFields(lap *fit.LapMsg) []field {
	var out []field
	out = appendTime(out, "timestamp", lap.Timestamp)
	out = appendTime(out, "start_time", lap.StartTime)
	out = appendFloat(out, "total_elapsed_time", lap.GetTotalElapsedTimeScaled(), "s")
	out = appendFloat(out, "total_timer_time", lap.GetTotalTimerTimeScaled(), "s")
	if lap.AvgHeartRate != math.MaxUint8 {
		out = append(out, field{name: "avg_heart_rate", value: strconv.Itoa(int(lap.AvgHeartRate)), units: "bpm"})
	}
	return out
}

func sessionFields(s *fit.SessionMsg) []field {
	var out []field
	out = appendTime(out, "timestamp", s.Timestamp)
	out = appendTime(out, "start_time", s.StartTime)
	out = appendFloat(out, "total_elapsed_time", s.GetTotalElapsedTimeScaled(), "s")
	out = appendFloat(out, "total_timer_time", s.GetTotalTimerTimeScaled(), "s")
	if s.AvgHeartRate != math.MaxUint8 {
		out = append(out, field{name: "avg_heart_rate", value: strconv.Itoa(int(s.AvgHeartRate)), units: "bpm"})
	}
	if s.MaxHeartRate != math.MaxUint8 {
		out = append(out, field{name: "max_heart_rate", value: strconv.Itoa(int(s.MaxHeartRate)), units: "bpm"})
	}
	out = appendFloat(out, "training_stress_score", s.GetTrainingStressScoreScaled(), "")
	return out
}

func appendTime(out []field, name string, t time.Time) []field {
	if t.IsZero() || fit.IsBaseTime(t) || t.Before(fitEpoch) {
		return out
	}
	secs := int64(t.Sub(fitEpoch) / time.Second)
	return append(out, field{name: name, value: strconv.FormatInt(secs, 10), units: "s"})
}

func appendFloat(out []field, name string, v float64, units string) []field {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return out
	}
	return append(out, field{name: name, value: strconv.FormatFloat(v, 'f', -1, 64), units: units})
}
