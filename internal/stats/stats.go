// Package stats computes the summary cards shown next to a chart.
package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lox/climateviz/internal/series"
)

// Summary describes one variable's values over the selected range.
type Summary struct {
	Count     int     `json:"count"`
	Predicted int     `json:"predicted"`
	Min       float64 `json:"min"`
	Mean      float64 `json:"mean"`
	Max       float64 `json:"max"`
	StdDev    float64 `json:"stdDev"`
	Unit      string  `json:"unit,omitempty"`
}

// Summarize returns the summary of values. StdDev is the sample standard
// deviation and is 0 for fewer than two values. NaN and infinite values are
// skipped.
func Summarize(values []float64) Summary {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Summary{}
	}

	s := Summary{
		Count: len(clean),
		Min:   floats.Min(clean),
		Max:   floats.Max(clean),
	}
	if len(clean) == 1 {
		s.Mean = clean[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(clean, nil)
	return s
}

// ForInput summarizes an upstream series, counting predicted samples
// separately.
func ForInput(in *series.Input) Summary {
	if in == nil {
		return Summary{}
	}
	s := Summarize(in.Values)
	for _, p := range in.IsPredicted {
		if p {
			s.Predicted++
		}
	}
	s.Unit = in.Unit
	return s
}

// ForRecords summarizes variable v across merged records, real and
// predicted values together.
func ForRecords(records []series.Record, v series.Variable) Summary {
	values := make([]float64, 0, len(records))
	predicted := 0
	for _, r := range records {
		val, ok := r.Value(v)
		if !ok {
			continue
		}
		values = append(values, val.Float())
		if val.IsPredicted() {
			predicted++
		}
	}
	s := Summarize(values)
	s.Predicted = predicted
	return s
}
