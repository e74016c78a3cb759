package series

import (
	"fmt"
	"slices"
	"time"

	"github.com/goodsign/monday"
)

type options struct {
	locale       monday.Locale
	calendarKeys bool
}

// Option configures Merge.
type Option func(*options)

// WithLocale sets the locale used for DisplayDate. The default is French.
func WithLocale(locale monday.Locale) Option {
	return func(o *options) {
		o.locale = locale
	}
}

// WithCalendarKeys groups samples by calendar day (YYYY-MM-DD) instead of
// by the raw date string, so "2023-01-01" and "2023-01-01T00:00:00Z" land in
// the same record. The record keeps the first raw string as its Date.
func WithCalendarKeys() Option {
	return func(o *options) {
		o.calendarKeys = true
	}
}

// Merge combines the selected variables' series into one record per date,
// ordered by parsed date ascending with ties kept in insertion order.
//
// selected is treated as a set. Known variables are processed in the order of
// Variables, followed by any others sorted by name, so the caller's ordering
// never changes the result. A variable that is not selected, or whose input
// is nil, contributes nothing. Within a record, a later sample for the same
// variable and date overwrites an earlier one. Any unparsable date aborts the merge with an error wrapping
// ErrInvalidDate.
//
// Merge does not modify its inputs and is safe for concurrent use.
func Merge(selected []Variable, inputs map[Variable]*Input, opts ...Option) ([]Record, error) {
	o := options{locale: monday.LocaleFrFR}
	for _, opt := range opts {
		opt(&o)
	}

	order := canonical(selected)
	byKey := make(map[string]int)
	var out []Record

	for _, v := range order {
		in := inputs[v]
		if in == nil {
			continue
		}
		if in.Len() < 0 {
			return nil, fmt.Errorf("merge %s: %d dates, %d values, %d flags: %w",
				v, len(in.Dates), len(in.Values), len(in.IsPredicted), ErrShapeMismatch)
		}

		for i, raw := range in.Dates {
			at, err := ParseDate(raw)
			if err != nil {
				return nil, fmt.Errorf("merge %s sample %d: %w", v, i, err)
			}

			key := raw
			if o.calendarKeys {
				key = at.Format(time.DateOnly)
			}

			idx, ok := byKey[key]
			if !ok {
				idx = len(out)
				byKey[key] = idx
				out = append(out, Record{
					Date:        raw,
					DisplayDate: DisplayDate(at, o.locale),
					Values:      make(map[Variable]Value, len(order)),
					at:          at,
				})
			}

			rec := &out[idx]
			rec.IsPredicted = in.IsPredicted[i]
			if _, seen := rec.Values[v]; !seen {
				rec.vars = append(rec.vars, v)
			}

			value := in.Values[i]
			if in.IsPredicted[i] {
				rec.Values[v] = Value{Predicted: &value}
			} else {
				rec.Values[v] = Value{Real: &value}
			}
		}
	}

	slices.SortStableFunc(out, func(a, b Record) int {
		return a.at.Compare(b.at)
	})
	return out, nil
}

// canonical returns the distinct members of selected: known variables in
// Variables order, then unknown ones sorted by name.
func canonical(selected []Variable) []Variable {
	out := make([]Variable, 0, len(selected))
	for _, v := range Variables {
		if slices.Contains(selected, v) {
			out = append(out, v)
		}
	}
	var extra []Variable
	for _, v := range selected {
		if !slices.Contains(Variables, v) && !slices.Contains(extra, v) {
			extra = append(extra, v)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
