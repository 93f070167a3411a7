package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the header row followed by every data row
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, cellText(v))
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Write dispatches on format
func Write(w io.Writer, format Format, t Table) error {
	if format == FormatCSV {
		return WriteCSV(w, t)
	}
	return WriteXLSX(w, t)
}
