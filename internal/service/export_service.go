package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
	"github.com/atul951/trinity-scheduler-api/pkg/export"
)

// ExportFormat enumerates supported timetable export encodings.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportResult carries the rendered document and its metadata.
type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ExportService renders a semester's generated timetable as CSV or PDF.
type ExportService struct {
	semesters semesterReader
	sections  schedulerSectionRepository
	timeslots sectionTimeslotReader
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(semesters semesterReader, sections schedulerSectionRepository, timeslots sectionTimeslotReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		semesters: semesters,
		sections:  sections,
		timeslots: timeslots,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

func derefName(name *string) string {
	if name == nil {
		return ""
	}
	return *name
}

// Timetable renders the semester's scheduled sections, one row per weekly
// meeting, ordered by course then section.
func (s *ExportService) Timetable(ctx context.Context, semesterID string, format ExportFormat) (*ExportResult, error) {
	semester, err := s.semesters.FindByID(ctx, semesterID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
	}

	sections, err := s.sections.List(ctx, models.SectionFilter{
		SemesterID: semesterID,
		Status:     models.SectionStatusScheduled,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	timetable := export.Timetable{Title: fmt.Sprintf("Timetable %s", semester.Name)}
	for _, section := range sections {
		slots, err := s.timeslots.ListBySection(ctx, section.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslots")
		}
		for _, slot := range slots {
			timetable.Rows = append(timetable.Rows, export.TimetableRow{
				Course:    fmt.Sprintf("%s %s", section.CourseCode, section.CourseName),
				Section:   section.SectionNumber,
				Teacher:   derefName(section.TeacherName),
				Classroom: derefName(section.ClassroomName),
				Day:       models.DayName(slot.DayOfWeek),
				Start:     models.MinuteClock(slot.StartMinute),
				End:       models.MinuteClock(slot.EndMinute),
			})
		}
	}

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(timetable)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("timetable-%s.csv", semester.Name),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case ExportFormatPDF:
		data, err := s.pdf.Render(timetable)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			FileName:    fmt.Sprintf("timetable-%s.pdf", semester.Name),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
