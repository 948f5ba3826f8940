package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/event-attendance-api/internal/models"
	appErrors "github.com/noah-isme/event-attendance-api/pkg/errors"
	"github.com/noah-isme/event-attendance-api/pkg/export"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type attendanceSheetSource interface {
	ListSheet(ctx context.Context, eventID string) ([]models.AttendanceSheetRow, error)
}

// AttendanceExport is a rendered attendance sheet ready for download.
type AttendanceExport struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// AttendanceExportService renders the attendance sheet of finalized events.
type AttendanceExportService struct {
	events  finalizationEventFinder
	records attendanceSheetSource
	logger  *zap.Logger
}

// NewAttendanceExportService constructs the service.
func NewAttendanceExportService(events finalizationEventFinder, records attendanceSheetSource, logger *zap.Logger) *AttendanceExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceExportService{events: events, records: records, logger: logger}
}

// Export renders the event's attendance. Only finalized events have a
// stable sheet, so anything else is rejected.
func (s *AttendanceExportService) Export(ctx context.Context, eventID string, format ExportFormat) (*AttendanceExport, error) {
	format = ExportFormat(strings.ToLower(string(format)))
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFoundOrInternal(err, "event not found", "failed to load event")
	}
	if event.Status != models.EventStatusFinalized {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "attendance can only be exported after the event is finalized")
	}

	rows, err := s.records.ListSheet(ctx, event.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance sheet")
	}
	sheet := buildAttendanceSheet(*event, rows)

	out := &AttendanceExport{Filename: fmt.Sprintf("attendance_%s.%s", sanitizeFilename(event.Name), format)}
	switch format {
	case ExportFormatCSV:
		buf := &bytes.Buffer{}
		if err := export.WriteCSV(buf, sheet); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		out.ContentType = "text/csv"
		out.Payload = buf.Bytes()
	case ExportFormatPDF:
		payload, err := export.RenderPDF(sheet)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		out.ContentType = "application/pdf"
		out.Payload = payload
	}
	s.logger.Info("attendance exported", zap.String("event_id", event.ID), zap.String("format", string(format)), zap.Int("rows", len(rows)))
	return out, nil
}

func buildAttendanceSheet(event models.Event, rows []models.AttendanceSheetRow) export.Sheet {
	counts := make(map[models.AttendanceStatus]int)
	body := make([][]string, 0, len(rows))
	for _, row := range rows {
		counts[row.Status]++
		body = append(body, []string{
			row.StudentID,
			row.StudentName,
			string(row.Status),
			formatSheetTime(row.TimeIn),
			formatSheetTime(row.TimeOut),
			derefString(row.Reason),
		})
	}
	return export.Sheet{
		Title: event.Name,
		Meta: []string{
			fmt.Sprintf("Event window: %s - %s", event.StartTime.Format(time.RFC3339), event.EndTime.Format(time.RFC3339)),
			fmt.Sprintf("Present %d, Late %d, Idle %d, Absent %d",
				counts[models.AttendanceStatusPresent],
				counts[models.AttendanceStatusLate],
				counts[models.AttendanceStatusIdle],
				counts[models.AttendanceStatusAbsent]),
		},
		Columns: []export.Column{
			{Header: "Student ID", Width: 45},
			{Header: "Name", Width: 60},
			{Header: "Status", Width: 25},
			{Header: "Time In", Width: 40},
			{Header: "Time Out", Width: 40},
			{Header: "Reason"},
		},
		Rows: body,
	}
}

func formatSheetTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func sanitizeFilename(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "event"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "\"", "", "..", ".")
	result := strings.ToLower(replacer.Replace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}

func notFoundOrInternal(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
