package export

import "fmt"

// Column describes one column of an exported sheet. Width is in millimetres
// and only affects PDF output; zero widths share the remaining page width.
type Column struct {
	Header string
	Width  float64
}

// Sheet is a titled table rendered to CSV or PDF.
type Sheet struct {
	Title   string
	Meta    []string
	Columns []Column
	Rows    [][]string
}

func (s Sheet) validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("sheet requires at least one column")
	}
	for i, row := range s.Rows {
		if len(row) != len(s.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(s.Columns))
		}
	}
	return nil
}

func (s Sheet) headers() []string {
	headers := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		headers[i] = c.Header
	}
	return headers
}
