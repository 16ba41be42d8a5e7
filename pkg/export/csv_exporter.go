package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// TimetableRow is one weekly meeting of a scheduled section.
type TimetableRow struct {
	Course    string
	Section   int
	Teacher   string
	Classroom string
	Day       string
	Start     string
	End       string
}

// Timetable is a semester's schedule prepared for rendering, one row per
// weekly meeting.
type Timetable struct {
	Title string
	Rows  []TimetableRow
}

var timetableHeaders = []string{"Course", "Section", "Teacher", "Classroom", "Day", "Start", "End"}

func (r TimetableRow) record() []string {
	return []string{r.Course, strconv.Itoa(r.Section), r.Teacher, r.Classroom, r.Day, r.Start, r.End}
}

// CSVExporter renders a timetable into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render produces CSV encoded bytes for the timetable. The title is not part
// of the CSV body; it only names the download.
func (e *CSVExporter) Render(tt Timetable) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(timetableHeaders); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range tt.Rows {
		if err := writer.Write(row.record()); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
