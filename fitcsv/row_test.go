package fitcsv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	recordRow      = `Data,0,record,timestamp,"1046268000",s,distance,"12.5",m,heart_rate,"142",bpm,cadence,"88",rpm,`
	definitionRow  = `Definition,0,record,timestamp,1,,distance,1,,heart_rate,1,,cadence,1,,`
	sessionRowText = `Data,1,session,timestamp,"1046271600",s,total_elapsed_time,"3600.0",s,avg_heart_rate,"140",bpm,training_stress_score,"120.0",,`
)

func TestIsDataRow(t *testing.T) {
	tests := []struct {
		row  string
		want bool
	}{
		{recordRow, true},
		{sessionRowText, true},
		{"Data", true},
		{definitionRow, false},
		{"Type,Local Number,Message,Field 1,Value 1,Units 1", false},
		{" Data,0,record", false},
		{"data,0,record", false},
		{"Dat", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsDataRow(tt.row), "row %q", tt.row)
	}
}

func TestExtractFieldWellFormed(t *testing.T) {
	values := []string{"142", "", "3600.0", "a b c", "with,comma", "  7 "}
	for _, v := range values {
		row := `X,key,"` + v + `",Y`
		got, ok, err := ExtractField(row, ",key")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestExtractFieldMissingKey(t *testing.T) {
	got, ok, err := ExtractField(recordRow, ",power")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestExtractFieldLeadingCommaSkipsSuffixKeys(t *testing.T) {
	row := `Data,1,session,avg_heart_rate,"140",bpm,max_heart_rate,"181",bpm,`
	_, ok, err := ExtractField(row, ",heart_rate")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExtractFieldFirstOccurrenceWins(t *testing.T) {
	row := `Data,0,record,heart_rate,"120",bpm,heart_rate,"130",bpm,`
	got, ok, err := ExtractField(row, ",heart_rate")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "120", got)
}

func TestExtractFieldMalformed(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"definition row", definitionRow},
		{"gap before quote", `Data,0,record,heart_rate, "120",bpm`},
		{"no comma before quote", `Data,0,record,heart_rate;"120",bpm`},
		{"quote glued to key", `Data,0,record,heart_rate"120",bpm`},
		{"unterminated", `Data,0,record,heart_rate,"120`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := ExtractField(tt.row, ",heart_rate")
			require.Error(t, err)
			assert.False(t, ok)
			assert.True(t, errors.Is(err, ErrMalformedField))

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, ",heart_rate", fe.Key)
			assert.Contains(t, fe.Error(), `"heart_rate"`)
		})
	}
}

func TestDataRow(t *testing.T) {
	_, ok := NewDataRow(definitionRow)
	assert.False(t, ok)

	var zero DataRow
	_, ok, err := zero.Field(KeyHeartRate)
	require.NoError(t, err)
	assert.False(t, ok)

	dr, ok := NewDataRow(sessionRowText)
	require.True(t, ok)
	assert.True(t, dr.Message("session"))
	assert.False(t, dr.Message("record"))
}
