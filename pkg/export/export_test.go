package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSheet() Sheet {
	return Sheet{
		Title:   "Orientation Day",
		Meta:    []string{"Finalized at 2026-10-01 12:00"},
		Columns: []Column{{Header: "Student ID", Width: 40}, {Header: "Name"}, {Header: "Status", Width: 30}},
		Rows: [][]string{
			{"s-1", "Ada, Lovelace", "PRESENT"},
			{"s-2", "Alan Turing", "ABSENT"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCSV(buf, sampleSheet()))
	assert.Equal(t, "Student ID,Name,Status\ns-1,\"Ada, Lovelace\",PRESENT\ns-2,Alan Turing,ABSENT\n", buf.String())
}

func TestWriteCSVRejectsRaggedRows(t *testing.T) {
	sheet := sampleSheet()
	sheet.Rows = append(sheet.Rows, []string{"s-3"})
	assert.Error(t, WriteCSV(&bytes.Buffer{}, sheet))
}

func TestRenderPDF(t *testing.T) {
	sheet := sampleSheet()
	for i := 0; i < 80; i++ {
		sheet.Rows = append(sheet.Rows, []string{"s-x", "Student", "LATE"})
	}
	payload, err := RenderPDF(sheet)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}

func TestRenderPDFRequiresColumns(t *testing.T) {
	_, err := RenderPDF(Sheet{Title: "empty"})
	assert.Error(t, err)
}

func TestColumnWidths(t *testing.T) {
	widths := columnWidths([]Column{{Width: 40}, {}, {}}, 200)
	assert.Equal(t, []float64{40, 80, 80}, widths)
}
