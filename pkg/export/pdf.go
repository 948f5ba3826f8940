package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfMargin    = 10.0
	pdfRowHeight = 7.0
)

// RenderPDF lays the sheet out as a landscape A4 table, repeating the header
// row on every page.
func RenderPDF(sheet Sheet) ([]byte, error) {
	if err := sheet.validate(); err != nil {
		return nil, err
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin+5, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()
	widths := columnWidths(sheet.Columns, pageWidth-2*pdfMargin)

	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, sheet.Title, "", 1, "C", false, 0, "")
	}
	if len(sheet.Meta) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, line := range sheet.Meta {
			pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for i, c := range sheet.Columns {
			pdf.CellFormat(widths[i], 8, c.Header, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}
	header()

	limit := pageHeight - 2*pdfMargin
	for _, row := range sheet.Rows {
		if pdf.GetY()+pdfRowHeight > limit {
			pdf.AddPage()
			header()
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], pdfRowHeight, cell, "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func columnWidths(columns []Column, available float64) []float64 {
	widths := make([]float64, len(columns))
	fixed, flexible := 0.0, 0
	for i, c := range columns {
		if c.Width > 0 {
			widths[i] = c.Width
			fixed += c.Width
		} else {
			flexible++
		}
	}
	if flexible == 0 {
		return widths
	}
	share := (available - fixed) / float64(flexible)
	if share < 10 {
		share = 10
	}
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}
