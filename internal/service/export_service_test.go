package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type exportSectionsMock struct {
	details []models.SectionDetail
	filter  models.SectionFilter
}

func (m *exportSectionsMock) ListUnscheduledBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) ([]models.Section, error) {
	return nil, nil
}

func (m *exportSectionsMock) CountScheduledBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int, error) {
	return len(m.details), nil
}

func (m *exportSectionsMock) UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error {
	return nil
}

func (m *exportSectionsMock) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, error) {
	m.filter = filter
	return m.details, nil
}

func newExportFixture() (*ExportService, *exportSectionsMock) {
	sections := &exportSectionsMock{details: []models.SectionDetail{
		{
			Section:       models.Section{ID: "sec-1", SectionNumber: 1},
			CourseCode:    "MATH101",
			CourseName:    "Algebra I",
			TeacherName:   strPtr("R. Banner"),
			ClassroomName: strPtr("Room 12"),
		},
		{
			Section:    models.Section{ID: "sec-2", SectionNumber: 2},
			CourseCode: "PHYS201",
			CourseName: "Mechanics",
		},
	}}
	timeslots := &timeslotReaderMock{bySection: map[string][]models.SectionTimeslot{
		"sec-1": {
			{SectionID: "sec-1", DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 10 * 60},
			{SectionID: "sec-1", DayOfWeek: 3, StartMinute: 13 * 60, EndMinute: 15 * 60},
		},
		"sec-2": {
			{SectionID: "sec-2", DayOfWeek: 2, StartMinute: 10 * 60, EndMinute: 11 * 60},
		},
	}}
	semesters := &semesterReaderMock{semesters: map[string]*models.Semester{
		"sem-1": {ID: "sem-1", Name: "fall-2026", Year: 2026, OrderInYear: 1},
	}}
	return NewExportService(semesters, sections, timeslots, nil), sections
}

func TestExportTimetableCSV(t *testing.T) {
	svc, sections := newExportFixture()

	result, err := svc.Timetable(context.Background(), "sem-1", ExportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "timetable-fall-2026.csv", result.FileName)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, models.SectionStatusScheduled, sections.filter.Status)

	body := string(result.Data)
	lines := strings.Split(strings.TrimSpace(body), "\n")
	require.Len(t, lines, 4, "header plus one row per weekly meeting")
	assert.Equal(t, "Course,Section,Teacher,Classroom,Day,Start,End", strings.TrimSpace(lines[0]))
	assert.Equal(t, "MATH101 Algebra I,1,R. Banner,Room 12,MONDAY,09:00,10:00", strings.TrimSpace(lines[1]))
	assert.Contains(t, lines[2], "WEDNESDAY")
	assert.Contains(t, lines[2], "15:00")
	assert.Equal(t, "PHYS201 Mechanics,2,,,TUESDAY,10:00,11:00", strings.TrimSpace(lines[3]),
		"unassigned teacher and classroom render as empty columns")
}

func TestExportTimetablePDF(t *testing.T) {
	svc, _ := newExportFixture()

	result, err := svc.Timetable(context.Background(), "sem-1", ExportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "timetable-fall-2026.pdf", result.FileName)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Data), "%PDF"))
}

func TestExportTimetableUnknownSemester(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Timetable(context.Background(), "sem-404", ExportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportTimetableUnsupportedFormat(t *testing.T) {
	svc, _ := newExportFixture()

	_, err := svc.Timetable(context.Background(), "sem-1", ExportFormat("xlsx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
