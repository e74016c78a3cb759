package series

import (
	"encoding/csv"
	"io"
	"strconv"
)

// CSVOptions holds options for CSV export.
type CSVOptions struct {
	Delimiter rune // Field delimiter (default: ',')
	HasHeader bool // Whether to write a header row (default: true)
	Precision int  // Decimal places for values, -1 for shortest (default: -1)
}

// DefaultCSVOptions returns default options for CSV export.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		Delimiter: ',',
		HasHeader: true,
		Precision: -1,
	}
}

// WriteCSV writes records as one row per date with a real and a predicted
// column per variable. Absent values are empty cells.
func WriteCSV(w io.Writer, records []Record, variables []Variable, opts *CSVOptions) error {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	if opts.HasHeader {
		header := []string{"date", "display_date", "is_predicted"}
		for _, v := range variables {
			header = append(header, string(v)+"_real", string(v)+"_predicted")
		}
		if err := cw.Write(header); err != nil {
			return err
		}
	}

	row := make([]string, 0, 3+2*len(variables))
	for _, r := range records {
		row = append(row[:0], r.Date, r.DisplayDate, strconv.FormatBool(r.IsPredicted))
		for _, v := range variables {
			val := r.Values[v]
			row = append(row, formatCell(val.Real, opts.Precision), formatCell(val.Predicted, opts.Precision))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatCell(f *float64, precision int) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', precision, 64)
}
