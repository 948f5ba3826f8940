package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV streams the sheet header and rows to w. Title and meta lines are
// not part of the CSV body.
func WriteCSV(w io.Writer, sheet Sheet) error {
	if err := sheet.validate(); err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(sheet.headers()); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range sheet.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
