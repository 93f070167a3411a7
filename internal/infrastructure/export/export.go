// Package export writes tabular data as XLSX or CSV spreadsheets.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is used for every date cell
const DateFormat = "2006-01-02"

// Format is a spreadsheet file format
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts xlsx (the default when empty) or csv
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName builds a download name like "items-20240102.xlsx"
func (f Format) FileName(base string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", base, now.Format("20060102"), f)
}

// Column describes one spreadsheet column
type Column struct {
	Header string
	Width  float64
}

// Table is a titled grid of values. Supported cell types are strings, ints,
// bools, decimals, times and pointers to them; nil pointers render empty.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]any
}

// AddRow appends a row
func (t *Table) AddRow(cells ...any) {
	t.Rows = append(t.Rows, cells)
}

// Headers returns the column headers
func (t Table) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Header
	}
	return out
}

// cellValue normalizes a cell for writing. Numbers stay numeric.
func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case decimal.Decimal:
		return x.InexactFloat64()
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
		return x.InexactFloat64()
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(DateFormat)
	case *time.Time:
		if x == nil || x.IsZero() {
			return ""
		}
		return x.Format(DateFormat)
	case *uint:
		if x == nil {
			return ""
		}
		return *x
	case *int:
		if x == nil {
			return ""
		}
		return *x
	case *string:
		if x == nil {
			return ""
		}
		return *x
	case fmt.Stringer:
		return x.String()
	}
	return v
}

// cellText renders a cell as text for CSV
func cellText(v any) string {
	switch x := v.(type) {
	case decimal.Decimal:
		return x.String()
	case *decimal.Decimal:
		if x == nil {
			return ""
		}
		return x.String()
	case bool:
		if x {
			return "true"
		}
		return "false"
	}
	return fmt.Sprint(cellValue(v))
}
