package api

import (
	"github.com/lox/climateviz/internal/chart"
	"github.com/lox/climateviz/internal/colorscale"
	"github.com/lox/climateviz/internal/dashboard"
	"github.com/lox/climateviz/internal/models"
	"github.com/lox/climateviz/internal/series"
	"github.com/lox/climateviz/internal/stats"
)

// IndexData contains everything the dashboard page renders.
type IndexData struct {
	Selection    dashboard.Selection
	Regions      []models.Region
	RegionsError string
	Options      []VariableOption
	// Submitted is false on the first visit, before any control is used.
	Submitted bool
	Error     string

	// Time series mode.
	Series    *dashboard.Result
	Cards     []StatCard
	Captions  []string
	RangeText string
	ChartURL  string
	ExportURL string
	Missing   []string

	// Map mode.
	Map    *dashboard.MapResult
	MapURL string
	Legend []colorscale.Bucket
}

// VariableOption is one checkbox of the variable picker.
type VariableOption struct {
	Value   series.Variable
	Label   string
	Checked bool
}

// StatCard is one variable's summary card.
type StatCard struct {
	Label   string
	Color   string
	Unit    string
	Summary stats.Summary
}

func variableOptions(sel dashboard.Selection) []VariableOption {
	out := make([]VariableOption, len(series.Variables))
	for i, v := range series.Variables {
		out[i] = VariableOption{Value: v, Label: chart.StyleFor(v).Label, Checked: sel.Has(v)}
	}
	return out
}

func statCards(res *dashboard.Result) []StatCard {
	var cards []StatCard
	for _, v := range res.Variables() {
		st := chart.StyleFor(v)
		unit := res.Units[v]
		if unit == "" {
			unit = st.Unit
		}
		cards = append(cards, StatCard{Label: st.Label, Color: st.Color, Unit: unit, Summary: res.Stats[v]})
	}
	return cards
}
