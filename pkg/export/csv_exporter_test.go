package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTimetable() Timetable {
	return Timetable{
		Title: "Timetable fall-2026",
		Rows: []TimetableRow{
			{Course: "MATH101 Algebra I", Section: 1, Teacher: "R. Banner", Classroom: "Room 12", Day: "MONDAY", Start: "09:00", End: "10:00"},
			{Course: "PHYS201 Mechanics", Section: 2, Day: "TUESDAY", Start: "10:00", End: "11:00"},
		},
	}
}

func TestCSVExporterRendersRows(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleTimetable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Course,Section,Teacher,Classroom,Day,Start,End", strings.TrimSpace(lines[0]))
	assert.Equal(t, "MATH101 Algebra I,1,R. Banner,Room 12,MONDAY,09:00,10:00", strings.TrimSpace(lines[1]))
	assert.Equal(t, "PHYS201 Mechanics,2,,,TUESDAY,10:00,11:00", strings.TrimSpace(lines[2]))
}

func TestCSVExporterEmptyTimetable(t *testing.T) {
	data, err := NewCSVExporter().Render(Timetable{Title: "empty"})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1, "only the header row")
}

func TestPDFExporterRendersDocument(t *testing.T) {
	data, err := NewPDFExporter().Render(sampleTimetable())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestPDFExporterEmptyTimetable(t *testing.T) {
	data, err := NewPDFExporter().Render(Timetable{Title: "empty"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
