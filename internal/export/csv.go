package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// utf8BOM нужен, чтобы Excel открыл файл в UTF-8.
const utf8BOM = "\ufeff"

func writeCSV(w io.Writer, t Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	for _, row := range t.Rows {
		out := make([]string, len(row))
		for col, v := range row {
			out[col] = t.cell(col, v)
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	return nil
}
