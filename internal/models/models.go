package models

import (
	"sort"

	"github.com/lox/climateviz/internal/series"
)

// Aggregation values understood by the climate API.
const (
	AggregationDaily   = "Daily"
	AggregationMonthly = "Monthly"
)

type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type VisualizeRequest struct {
	Variables   []string `json:"variables"`
	Aggregation string   `json:"aggregation"`
	Region      string   `json:"region"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
}

// VariableData is one variable's series. The API replaces the series with
// an Error when the variable's source data is missing.
type VariableData struct {
	Dates       []string  `json:"dates,omitempty"`
	Values      []float64 `json:"values,omitempty"`
	IsPredicted []bool    `json:"is_predicted,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	Region      string    `json:"region,omitempty"`
	Error       string    `json:"error,omitempty"`
}

// Input converts the wire series into a merge input.
func (d *VariableData) Input() *series.Input {
	if d == nil || d.Error != "" {
		return nil
	}
	return &series.Input{
		Dates:       d.Dates,
		Values:      d.Values,
		IsPredicted: d.IsPredicted,
		Unit:        d.Unit,
		Region:      d.Region,
	}
}

type VisualizeResponse struct {
	Temperature   *VariableData `json:"temperature,omitempty"`
	Precipitation *VariableData `json:"precipitation,omitempty"`
}

// Variable returns the series for v, or nil.
func (r *VisualizeResponse) Variable(v series.Variable) *VariableData {
	if r == nil {
		return nil
	}
	switch v {
	case series.Temperature:
		return r.Temperature
	case series.Precipitation:
		return r.Precipitation
	}
	return nil
}

// Inputs converts every usable series in the response into merge inputs.
func (r *VisualizeResponse) Inputs() map[series.Variable]*series.Input {
	out := make(map[series.Variable]*series.Input, len(series.Variables))
	for _, v := range series.Variables {
		if in := r.Variable(v).Input(); in != nil {
			out[v] = in
		}
	}
	return out
}

type MapDataRequest struct {
	Variable  string `json:"variable"`
	Region    string `json:"region"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// MapDataResponse is the temporal mean of one variable at a region's
// center. TemporalMean is nil when the API has no data for the variable.
type MapDataResponse struct {
	Region       string      `json:"region"`
	Coordinates  Coordinates `json:"coordinates"`
	TemporalMean *float64    `json:"temporal_mean"`
	Unit         string      `json:"unit"`
	Variable     string      `json:"variable"`
}

type HealthCheckResponse struct {
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	DataFiles map[string]bool `json:"data_files"`
}

// MissingFiles lists data files the API reports as absent.
func (h *HealthCheckResponse) MissingFiles() []string {
	var missing []string
	for name, ok := range h.DataFiles {
		if !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
