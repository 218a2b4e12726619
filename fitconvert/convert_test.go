package fitconvert

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lucasjlepore/tss-estimator/fitcsv"
	"github.com/lucasjlepore/tss-estimator/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tormoder/fit"
)

func TestConvertBytesRendersRows(t *testing.T) {
	data := buildTestFIT(t, 120, 1)

	rows, err := ConvertBytes(data)
	require.NoError(t, err)
	assert.Equal(t, 121, rows.RecordCount)
	assert.Equal(t, 120, rows.HeartRateSamples)
	assert.Equal(t, 1, rows.SessionCount)

	lines := strings.Split(strings.TrimSpace(string(rows.Bytes())), "\n")
	require.Equal(t, rows.Len(), len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "Type,Local Number,Message,Field 1,Value 1,Units 1"))

	var (
		heartRates  []int
		sessions    []fitcsv.SessionSummary
		definitions int
	)
	for _, line := range lines {
		if strings.HasPrefix(line, "Definition") {
			definitions++
		}
		hr, ok, err := fitcsv.HeartRate(line)
		require.NoError(t, err, line)
		if ok {
			heartRates = append(heartRates, hr)
		}
		s, ok, err := fitcsv.Session(line)
		require.NoError(t, err, line)
		if ok {
			sessions = append(sessions, s)
		}
	}
	assert.Len(t, heartRates, 120)
	assert.Equal(t, 130, heartRates[0])
	assert.Positive(t, definitions)
	require.Len(t, sessions, 1)
	assert.InDelta(t, 180.0, sessions[0].TotalElapsedTime, 1e-9)
	assert.InDelta(t, 42.5, sessions[0].ReferenceTSS, 1e-9)
}

func TestConvertBytesRejectsGarbage(t *testing.T) {
	_, err := ConvertBytes([]byte("not a fit file"))
	require.Error(t, err)
}

func TestConvertFile(t *testing.T) {
	tmp := t.TempDir()
	inputPath := filepath.Join(tmp, "Morning_Ride.fit")
	require.NoError(t, os.WriteFile(inputPath, buildTestFIT(t, 60, 1), 0o644))

	outDir := filepath.Join(tmp, "CSVs")
	res, err := ConvertFile(inputPath, outDir, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "Morning_Ride.csv"), res.OutputPath)
	assert.Equal(t, 60, res.HeartRateSamples)
	_, err = os.Stat(res.OutputPath)
	require.NoError(t, err)

	_, err = ConvertFile(inputPath, outDir, Options{})
	require.Error(t, err, "existing output without overwrite")

	_, err = ConvertFile(inputPath, outDir, Options{Overwrite: true})
	require.NoError(t, err)
}

func TestConvertFileRequiresPaths(t *testing.T) {
	_, err := ConvertFile("", t.TempDir(), Options{})
	require.Error(t, err)
	_, err = ConvertFile("x.fit", " ", Options{})
	require.Error(t, err)
}

func TestConvertDirFeedsScan(t *testing.T) {
	tmp := t.TempDir()
	fitDir := filepath.Join(tmp, "Activities")
	csvDir := filepath.Join(tmp, "CSVs")
	require.NoError(t, os.Mkdir(fitDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(fitDir, "a.fit"), buildTestFIT(t, 180, 1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fitDir, "b.FIT"), buildTestFIT(t, 30, 1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fitDir, "broken.fit"), []byte("garbage"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(fitDir, "notes.txt"), []byte("ignored"), 0o644))

	res, err := ConvertDir(fitDir, csvDir, Options{Overwrite: true})
	require.NoError(t, err)
	assert.Len(t, res.Converted, 2)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, filepath.Join(fitDir, "broken.fit"), res.Failures[0].Path)

	set, err := pipeline.ScanDir(csvDir, pipeline.DefaultOptions())
	require.NoError(t, err)
	// 180 samples over 180s is accepted, 30 samples over 180s is too sparse.
	require.Len(t, set.Files, 1)
	assert.Equal(t, filepath.Join(csvDir, "a.csv"), set.Files[0].Path)
	assert.InDelta(t, 42.5, set.Files[0].ReferenceTSS, 1e-9)
	require.Len(t, set.Failures, 1)
	assert.ErrorIs(t, set.Failures[0].Err, pipeline.ErrTooSparse)
}

func TestClearDir(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.csv", "b.CSV", "keep.fit", "keep.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755))

	n, err := ClearDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"keep.fit", "keep.txt", "sub.csv"}, names)

	n, err = ClearDir(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, n)
}

// buildTestFIT encodes an activity with hrSamples one-second records carrying
// heart rate, one record without, and sessions session messages spanning
// 180 seconds.
func buildTestFIT(t *testing.T, hrSamples, sessions int) []byte {
	t.Helper()

	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeActivity, header)
	require.NoError(t, err)

	activity, err := file.Activity()
	require.NoError(t, err)

	start := time.Date(2017, 5, 14, 7, 0, 0, 0, time.UTC)
	event := fit.NewEventMsg()
	event.Timestamp = start
	event.Event = fit.EventTimer
	event.EventType = fit.EventTypeStart
	activity.Events = append(activity.Events, event)

	for i := 0; i < hrSamples; i++ {
		record := fit.NewRecordMsg()
		record.Timestamp = start.Add(time.Duration(i) * time.Second)
		record.HeartRate = uint8(130 + i%40)
		record.Cadence = 90
		activity.Records = append(activity.Records, record)
	}
	noHR := fit.NewRecordMsg()
	noHR.Timestamp = start.Add(time.Duration(hrSamples) * time.Second)
	noHR.Power = 200
	activity.Records = append(activity.Records, noHR)

	for i := 0; i < sessions; i++ {
		session := fit.NewSessionMsg()
		session.Timestamp = start.Add(180 * time.Second)
		session.StartTime = start
		session.TotalElapsedTime = 180000
		session.TotalTimerTime = 180000
		session.AvgHeartRate = 140
		session.TrainingStressScore = 425
		activity.Sessions = append(activity.Sessions, session)
	}

	var buf bytes.Buffer
	require.NoError(t, fit.Encode(&buf, file, binary.LittleEndian))
	return buf.Bytes()
}
