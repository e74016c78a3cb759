package colorscale

import (
	"fmt"
	"strconv"

	"github.com/lox/climateviz/internal/series"
)

// Bucket is one band of a color scale.
type Bucket struct {
	// Index is the 0-based position of the bucket in its scale.
	Index int `json:"index"`
	// Upper is the exclusive upper bound; the last bucket has no bound.
	Upper *float64 `json:"upper,omitempty"`
	// Color is a CSS hex color.
	Color string `json:"color"`
	// Label is the legend text, e.g. "15-20°C".
	Label string `json:"label"`
}

// Scale is an ascending list of thresholds with one more color than
// thresholds. A value v falls into the first bucket whose threshold is
// greater than v, or into the last bucket.
type Scale struct {
	Unit       string
	Thresholds []float64
	Colors     []string
}

// TemperatureScale buckets mean air temperature in °C.
var TemperatureScale = Scale{
	Unit:       "°C",
	Thresholds: []float64{15, 20, 25, 30},
	Colors: []string{
		"#3b82f6", // blue
		"#22c55e", // green
		"#eab308", // yellow
		"#f97316", // orange
		"#ef4444", // red
	},
}

// PrecipitationScale buckets precipitation in mm.
var PrecipitationScale = Scale{
	Unit:       "mm",
	Thresholds: []float64{0.5, 1, 2, 4},
	Colors: []string{
		"#fef3c7", // pale yellow
		"#93c5fd",
		"#3b82f6",
		"#1d4ed8",
		"#1e3a8a", // deep blue
	},
}

var scales = map[series.Variable]Scale{
	series.Temperature:   TemperatureScale,
	series.Precipitation: PrecipitationScale,
}

// ForVariable returns the scale for v. Variables without a scale of their
// own use the precipitation scale.
func ForVariable(v series.Variable) Scale {
	if s, ok := scales[v]; ok {
		return s
	}
	return PrecipitationScale
}

// Classify returns the bucket v's value falls into. It is total: values
// below the lowest threshold land in the first bucket, values at or above
// the highest (and NaN) in the last.
func Classify(v series.Variable, value float64) Bucket {
	return ForVariable(v).Classify(value)
}

// Legend returns every bucket of v's scale in ascending order.
func Legend(v series.Variable) []Bucket {
	return ForVariable(v).Buckets()
}

// Classify returns the bucket value falls into. NaN compares false against
// every threshold and so lands in the last bucket.
func (s Scale) Classify(value float64) Bucket {
	for i, th := range s.Thresholds {
		if value < th {
			return s.bucket(i)
		}
	}
	return s.bucket(len(s.Thresholds))
}

// Buckets returns one bucket per color, lowest first, with labels built from
// the thresholds and Unit.
func (s Scale) Buckets() []Bucket {
	out := make([]Bucket, len(s.Colors))
	for i := range out {
		out[i] = s.bucket(i)
	}
	return out
}

func (s Scale) bucket(i int) Bucket {
	b := Bucket{Index: i, Color: s.Colors[i]}
	switch {
	case i == 0:
		th := s.Thresholds[0]
		b.Upper = &th
		b.Label = fmt.Sprintf("< %s%s", formatBound(th), s.Unit)
	case i == len(s.Thresholds):
		b.Label = fmt.Sprintf("> %s%s", formatBound(s.Thresholds[i-1]), s.Unit)
	default:
		th := s.Thresholds[i]
		b.Upper = &th
		b.Label = fmt.Sprintf("%s-%s%s", formatBound(s.Thresholds[i-1]), formatBound(th), s.Unit)
	}
	return b
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
