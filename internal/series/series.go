// Package series reshapes per-variable climate series into a single
// date-indexed sequence suitable for charting.
//
// Each input series arrives as three index-aligned slices (dates, values,
// predicted flags). Merge groups samples by date key and splits every
// variable into a "real" and a "predicted" field so a renderer can style
// observations and model output differently.
package series

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrShapeMismatch = errors.New("dates, values and flags differ in length")
)

// Variable names a climate variable as used by the upstream API.
type Variable string

const (
	Temperature   Variable = "temperature"
	Precipitation Variable = "precipitation"
)

// Variables lists the variables the upstream API knows about, in the order
// the dashboard presents them.
var Variables = []Variable{Temperature, Precipitation}

// Input is one variable's samples over the requested range.
// Dates, Values and IsPredicted must have the same length.
type Input struct {
	Dates       []string
	Values      []float64
	IsPredicted []bool
	Unit        string
	Region      string
}

// Len returns the number of samples, or -1 when the slices disagree.
func (in *Input) Len() int {
	n := len(in.Dates)
	if len(in.Values) != n || len(in.IsPredicted) != n {
		return -1
	}
	return n
}

// Value holds one variable's sample for a record. Exactly one of Real and
// Predicted is set.
type Value struct {
	Real      *float64
	Predicted *float64
}

// IsPredicted reports whether the sample came from the forecasting model.
func (v Value) IsPredicted() bool {
	return v.Predicted != nil
}

// Float returns whichever side is set.
func (v Value) Float() float64 {
	if v.Predicted != nil {
		return *v.Predicted
	}
	if v.Real != nil {
		return *v.Real
	}
	return 0
}

// Record is a single date in the merged output.
type Record struct {
	// Date is the raw date string the record was created from.
	Date string
	// DisplayDate is a month/year label for chart axes.
	DisplayDate string
	// IsPredicted carries the flag of the last sample written to this
	// record, whichever variable it belonged to. When two variables share a
	// date it can misrepresent the other one; use Values[v].IsPredicted()
	// for a per-variable answer.
	IsPredicted bool
	// Values is keyed by variable. Only merged variables are present.
	Values map[Variable]Value

	vars []Variable
	at   time.Time
}

// Time returns the parsed instant of Date.
func (r Record) Time() time.Time {
	return r.at
}

// Value returns the sample for v, if the record has one.
func (r Record) Value(v Variable) (Value, bool) {
	val, ok := r.Values[v]
	return val, ok
}

// MarshalJSON encodes the record as the flat object chart libraries expect:
// {"date", "displayDate", "isPredicted", "<v>Real", "<v>Predicted", "<v>IsPredicted"}.
// The absent side of each variable, and any NaN or infinite value, is
// encoded as null.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fields := []jsonField{
		{"date", r.Date},
		{"displayDate", r.DisplayDate},
		{"isPredicted", r.IsPredicted},
	}
	for _, v := range r.vars {
		val := r.Values[v]
		fields = append(fields,
			jsonField{string(v) + "Real", finite(val.Real)},
			jsonField{string(v) + "Predicted", finite(val.Predicted)},
			jsonField{string(v) + "IsPredicted", val.IsPredicted()},
		)
	}
	for i, f := range fields {
		if err := writeField(&buf, f.name, f.value, i == 0); err != nil {
			return nil, fmt.Errorf("encode %s: %w", f.name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

type jsonField struct {
	name  string
	value any
}

func writeField(buf *bytes.Buffer, name string, value any, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	k, err := json.Marshal(name)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}

// finite returns f, or nil when f is NaN or infinite.
func finite(f *float64) *float64 {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	return f
}

// VariablesOf returns the variables present across records in the order they
// were first merged.
func VariablesOf(records []Record) []Variable {
	seen := make(map[Variable]bool)
	var out []Variable
	for _, r := range records {
		for _, v := range r.vars {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}
