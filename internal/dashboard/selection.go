// Package dashboard turns the dashboard's control state into climate API
// requests and chart-ready results.
package dashboard

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goodsign/monday"

	"github.com/lox/climateviz/internal/models"
	"github.com/lox/climateviz/internal/series"
)

// Mode is the display mode of the dashboard.
type Mode string

const (
	ModeTimeSeries Mode = "timeseries"
	ModeMap        Mode = "map"
)

const (
	AggregationDaily   = "daily"
	AggregationMonthly = "monthly"

	DefaultStart = "2023-01-01"
	DefaultEnd   = "2023-12-31"
)

var validate = validator.New()

// Selection is the state of the dashboard controls for one request.
type Selection struct {
	Variables   []series.Variable `json:"variables" validate:"min=1,dive,oneof=temperature precipitation"`
	Aggregation string            `json:"aggregation" validate:"oneof=daily monthly"`
	Region      string            `json:"region" validate:"required"`
	Start       string            `json:"start_date" validate:"required,datetime=2006-01-02"`
	End         string            `json:"end_date" validate:"required,datetime=2006-01-02"`
	Mode        Mode              `json:"mode" validate:"oneof=timeseries map"`
}

// DefaultSelection is the state of a freshly opened dashboard. No region
// is preselected.
func DefaultSelection() Selection {
	return Selection{
		Variables:   []series.Variable{series.Temperature},
		Aggregation: AggregationDaily,
		Start:       DefaultStart,
		End:         DefaultEnd,
		Mode:        ModeTimeSeries,
	}
}

// ParseSelection reads a selection from query or form values. An empty set
// of values yields DefaultSelection. Otherwise absent fields stay empty,
// except aggregation and mode which keep their defaults.
//
// Variables are read from repeated "variable" keys or a comma separated
// "variables" key.
func ParseSelection(q url.Values) Selection {
	if len(q) == 0 {
		return DefaultSelection()
	}

	s := Selection{
		Aggregation: AggregationDaily,
		Mode:        ModeTimeSeries,
		Region:      strings.TrimSpace(q.Get("region")),
		Start:       strings.TrimSpace(q.Get("start_date")),
		End:         strings.TrimSpace(q.Get("end_date")),
	}
	for _, raw := range q["variable"] {
		s.Variables = append(s.Variables, series.Variable(raw))
	}
	for _, raw := range strings.Split(q.Get("variables"), ",") {
		if raw = strings.TrimSpace(raw); raw != "" {
			s.Variables = append(s.Variables, series.Variable(raw))
		}
	}
	if a := q.Get("aggregation"); a != "" {
		s.Aggregation = a
	}
	if m := q.Get("mode"); m != "" {
		s.Mode = Mode(m)
	}
	s.Normalize()
	return s
}

// Normalize lowercases enumerations, drops duplicate variables and, in map
// mode, keeps only the first selected variable.
func (s *Selection) Normalize() {
	s.Aggregation = strings.ToLower(strings.TrimSpace(s.Aggregation))
	s.Mode = Mode(strings.ToLower(strings.TrimSpace(string(s.Mode))))

	vars := make([]series.Variable, 0, len(s.Variables))
	for _, v := range s.Variables {
		v = series.Variable(strings.ToLower(strings.TrimSpace(string(v))))
		if v != "" && !slices.Contains(vars, v) {
			vars = append(vars, v)
		}
	}
	if s.Mode == ModeMap && len(vars) > 1 {
		vars = vars[:1]
	}
	s.Variables = vars
}

// Has reports whether v is selected.
func (s Selection) Has(v series.Variable) bool {
	return slices.Contains(s.Variables, v)
}

// ValidationError is a selection the dashboard refuses to submit. Message is
// shown to the user as-is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Validate checks the selection and returns the first problem as a
// *ValidationError.
func (s Selection) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(s, verrs[0])
		}
		return fmt.Errorf("validate selection: %w", err)
	}

	start, _ := time.Parse(time.DateOnly, s.Start)
	end, _ := time.Parse(time.DateOnly, s.End)
	if start.After(end) {
		return &ValidationError{Field: "end_date", Message: "start date must be before end date"}
	}
	return nil
}

func fieldError(s Selection, fe validator.FieldError) *ValidationError {
	// Element errors are reported as "Variables[i]".
	name, _, _ := strings.Cut(fe.StructField(), "[")
	switch name {
	case "Variables":
		if fe.Tag() == "min" {
			return &ValidationError{Field: "variables", Message: "select at least one variable"}
		}
		return &ValidationError{Field: "variables", Message: fmt.Sprintf("unknown variable %q", fe.Value())}
	case "Region":
		return &ValidationError{Field: "region", Message: "select a region"}
	case "Start", "End":
		field := "start_date"
		if name == "End" {
			field = "end_date"
		}
		if fe.Tag() == "required" {
			return &ValidationError{Field: field, Message: "select a date range"}
		}
		return &ValidationError{Field: field, Message: fmt.Sprintf("invalid date %q", fe.Value())}
	case "Aggregation":
		return &ValidationError{Field: "aggregation", Message: fmt.Sprintf("unknown aggregation %q", s.Aggregation)}
	case "Mode":
		return &ValidationError{Field: "mode", Message: fmt.Sprintf("unknown mode %q", s.Mode)}
	}
	return &ValidationError{Field: fe.Field(), Message: fe.Error()}
}

// VisualizeRequest converts the selection into a time series request.
func (s Selection) VisualizeRequest() models.VisualizeRequest {
	vars := make([]string, len(s.Variables))
	for i, v := range s.Variables {
		vars[i] = string(v)
	}
	agg := models.AggregationDaily
	if s.Aggregation == AggregationMonthly {
		agg = models.AggregationMonthly
	}
	return models.VisualizeRequest{
		Variables:   vars,
		Aggregation: agg,
		Region:      s.Region,
		StartDate:   s.Start,
		EndDate:     s.End,
	}
}

// MapRequest converts the selection into a map aggregate request for its
// first variable.
func (s Selection) MapRequest() models.MapDataRequest {
	var v string
	if len(s.Variables) > 0 {
		v = string(s.Variables[0])
	}
	return models.MapDataRequest{
		Variable:  v,
		Region:    s.Region,
		StartDate: s.Start,
		EndDate:   s.End,
	}
}

// Query encodes the selection so ParseSelection can read it back.
func (s Selection) Query() url.Values {
	q := url.Values{}
	for _, v := range s.Variables {
		q.Add("variable", string(v))
	}
	q.Set("aggregation", s.Aggregation)
	q.Set("region", s.Region)
	q.Set("start_date", s.Start)
	q.Set("end_date", s.End)
	q.Set("mode", string(s.Mode))
	return q
}

// RangeLabel renders the date range as "1 janv. 2023 - 31 déc. 2023" in the
// given locale. Unparsable dates are shown as entered.
func (s Selection) RangeLabel(locale monday.Locale) string {
	return rangeDate(s.Start, locale) + " - " + rangeDate(s.End, locale)
}

func rangeDate(raw string, locale monday.Locale) string {
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return raw
	}
	return series.Format(t, "2 Jan 2006", locale)
}
