package chart

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/climateviz/internal/series"
	"github.com/lox/climateviz/internal/stats"
)

func mergedRecords(t *testing.T) []series.Record {
	t.Helper()
	records, err := series.Merge(
		[]series.Variable{series.Temperature, series.Precipitation},
		map[series.Variable]*series.Input{
			series.Temperature: {
				Dates:       []string{"2023-01-01", "2023-02-01"},
				Values:      []float64{12.5, 14},
				IsPredicted: []bool{false, true},
				Unit:        "°C",
			},
			series.Precipitation: {
				Dates:       []string{"2023-02-01", "2023-03-01"},
				Values:      []float64{0.8, 1.5},
				IsPredicted: []bool{false, false},
				Unit:        "mm",
			},
		},
	)
	require.NoError(t, err)
	return records
}

func TestBuild(t *testing.T) {
	d := Build(mergedRecords(t), []series.Variable{series.Temperature, series.Precipitation}, nil)

	assert.Len(t, d.Labels, 3)
	assert.Equal(t, []series.Variable{series.Temperature, series.Precipitation}, d.Axes)
	require.Len(t, d.Lines, 4)

	temp, tempPred := d.Lines[0], d.Lines[1]
	assert.Equal(t, "Température (°C)", temp.Name)
	assert.False(t, temp.Predicted)
	assert.Equal(t, []any{12.5, missing, missing}, temp.Values)
	assert.True(t, tempPred.Predicted)
	assert.Equal(t, []any{missing, 14.0, missing}, tempPred.Values)
	assert.Equal(t, 0, tempPred.Axis)

	precip := d.Lines[2]
	assert.Equal(t, 1, precip.Axis)
	assert.Equal(t, []any{missing, 0.8, 1.5}, precip.Values)
	assert.Equal(t, 2, precip.Points())
	assert.Equal(t, 0, d.Lines[3].Points())
}

func TestBuild_SkipsAbsentVariables(t *testing.T) {
	records, err := series.Merge(
		[]series.Variable{series.Temperature},
		map[series.Variable]*series.Input{
			series.Temperature: {Dates: []string{"2023-01-01"}, Values: []float64{10}, IsPredicted: []bool{false}},
		},
	)
	require.NoError(t, err)

	d := Build(records, []series.Variable{series.Precipitation, series.Temperature}, map[series.Variable]string{series.Temperature: "K"})
	assert.Equal(t, []series.Variable{series.Temperature}, d.Axes)
	require.Len(t, d.Lines, 2)
	assert.Equal(t, "Température (K)", d.Lines[0].Name)
	assert.Equal(t, 0, d.Lines[0].Axis)
}

func TestBuild_NonFiniteIsGap(t *testing.T) {
	records, err := series.Merge(
		[]series.Variable{series.Temperature},
		map[series.Variable]*series.Input{
			series.Temperature: {
				Dates:       []string{"2023-01-01", "2023-01-02"},
				Values:      []float64{math.NaN(), 3},
				IsPredicted: []bool{false, false},
			},
		},
	)
	require.NoError(t, err)

	d := Build(records, []series.Variable{series.Temperature}, nil)
	assert.Equal(t, []any{missing, 3.0}, d.Lines[0].Values)
	assert.Equal(t, 1, d.Lines[0].Points())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "t", "", records, []series.Variable{series.Temperature}, nil))
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "Analyse des données climatiques", "1 janv. 2023 - 31 mars 2023",
		mergedRecords(t), []series.Variable{series.Temperature, series.Precipitation}, nil)
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "dashed")
	assert.Contains(t, html, "yAxisIndex")
}

func TestCaption(t *testing.T) {
	summaries := map[series.Variable]stats.Summary{
		series.Temperature:   {Count: 365},
		series.Precipitation: {Count: 12},
	}
	assert.Equal(t,
		[]string{"365 points de température", "12 points de précipitation"},
		Caption(summaries, []series.Variable{series.Temperature, series.Precipitation}),
	)
	assert.Empty(t, Caption(summaries, nil))
}

func TestStyleFor_Unknown(t *testing.T) {
	st := StyleFor("humidity")
	assert.Equal(t, "humidity", st.Label)
	assert.NotEmpty(t, st.Color)
}
