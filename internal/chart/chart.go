// Package chart renders merged series as an interactive go-echarts line
// chart. Each variable gets two lines on its own y axis: observed values
// drawn solid and model predictions drawn dashed.
package chart

import (
	"fmt"
	"io"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lox/climateviz/internal/series"
	"github.com/lox/climateviz/internal/stats"
)

// missing is the echarts placeholder for a gap in a line.
const missing = "-"

// Style is how one variable is drawn.
type Style struct {
	Label          string
	PredictedLabel string
	Color          string
	Unit           string
}

var styles = map[series.Variable]Style{
	series.Temperature: {
		Label:          "Température",
		PredictedLabel: "Température prédite",
		Color:          "#f97316",
		Unit:           "°C",
	},
	series.Precipitation: {
		Label:          "Précipitation",
		PredictedLabel: "Précipitation prédite",
		Color:          "#3b82f6",
		Unit:           "mm",
	},
}

// StyleFor returns the drawing style of v. Unknown variables are drawn in
// gray under their own name.
func StyleFor(v series.Variable) Style {
	if s, ok := styles[v]; ok {
		return s
	}
	return Style{Label: string(v), PredictedLabel: string(v) + " (pred.)", Color: "#6b7280"}
}

// Line is one drawable line. Values holds a float64 per label, or the
// missing placeholder where the line has no point.
type Line struct {
	Name      string
	Variable  series.Variable
	Predicted bool
	Axis      int
	Color     string
	Values    []any
}

// Points counts the non-missing values.
func (l Line) Points() int {
	n := 0
	for _, v := range l.Values {
		if _, ok := v.(float64); ok {
			n++
		}
	}
	return n
}

// Data is the chart-ready form of merged records.
type Data struct {
	Labels []string
	Axes   []series.Variable
	Lines  []Line
}

// Build lays out records for charting. Variables are drawn in the given
// order, each on its own axis; a variable absent from every record is
// skipped. Units override the default axis unit per variable.
func Build(records []series.Record, variables []series.Variable, units map[series.Variable]string) Data {
	present := make(map[series.Variable]bool)
	for _, v := range series.VariablesOf(records) {
		present[v] = true
	}

	d := Data{Labels: make([]string, len(records))}
	for i, r := range records {
		d.Labels[i] = r.DisplayDate
	}

	for _, v := range variables {
		if !present[v] {
			continue
		}
		st := StyleFor(v)
		unit := st.Unit
		if u := units[v]; u != "" {
			unit = u
		}
		axis := len(d.Axes)
		d.Axes = append(d.Axes, v)

		obs := Line{Name: withUnit(st.Label, unit), Variable: v, Axis: axis, Color: st.Color}
		pred := Line{Name: withUnit(st.PredictedLabel, unit), Variable: v, Predicted: true, Axis: axis, Color: st.Color}
		for _, r := range records {
			val, _ := r.Value(v)
			obs.Values = append(obs.Values, point(val.Real))
			pred.Values = append(pred.Values, point(val.Predicted))
		}
		d.Lines = append(d.Lines, obs, pred)
	}
	return d
}

func point(f *float64) any {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return missing
	}
	return *f
}

func withUnit(label, unit string) string {
	if unit == "" {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, unit)
}

// NewLine builds the echarts line chart for d.
func NewLine(title, subtitle string, d Data) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "100%",
			Height:    "380px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
	)

	for i, v := range d.Axes {
		st := StyleFor(v)
		y := opts.YAxis{
			Name:     st.Label,
			Type:     "value",
			Position: "left",
		}
		if i > 0 {
			y.Position = "right"
		}
		if i == 0 {
			line.SetGlobalOptions(charts.WithYAxisOpts(y))
		} else {
			line.ExtendYAxis(y)
		}
	}

	line.SetXAxis(d.Labels)
	for _, l := range d.Lines {
		data := make([]opts.LineData, len(l.Values))
		for i, v := range l.Values {
			data[i] = opts.LineData{Value: v}
		}

		style := opts.LineStyle{Color: l.Color, Width: 3}
		if l.Predicted {
			style.Type = "dashed"
		}
		line.AddSeries(l.Name, data,
			charts.WithLineChartOpts(opts.LineChart{
				YAxisIndex:   l.Axis,
				ConnectNulls: opts.Bool(false),
			}),
			charts.WithLineStyleOpts(style),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: l.Color}),
		)
	}
	return line
}

// Render writes a standalone HTML page with the chart for records.
func Render(w io.Writer, title, subtitle string, records []series.Record, variables []series.Variable, units map[series.Variable]string) error {
	page := components.NewPage()
	page.AddCharts(NewLine(title, subtitle, Build(records, variables, units)))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// Caption is the "N points" line shown above the chart, per variable.
func Caption(summaries map[series.Variable]stats.Summary, variables []series.Variable) []string {
	var out []string
	for _, v := range variables {
		s, ok := summaries[v]
		if !ok {
			continue
		}
		out = append(out, fmt.Sprintf("%d points de %s", s.Count, lowerFirst(StyleFor(v).Label)))
	}
	return out
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}
