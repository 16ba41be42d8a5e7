package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Landscape A4 leaves 277mm of printable width with 10mm margins. Course
// names get the widest column; day and clock columns stay narrow.
var timetableWidths = []float64{62, 20, 55, 50, 34, 28, 28}

// PDFExporter renders timetables into a landscape tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF timetable, one bordered row per weekly meeting.
func (e *PDFExporter) Render(tt Timetable) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if tt.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(tt.Title), "", 1, "C", false, 0, "")
		pdf.Ln(5)
	}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range timetableHeaders {
		pdf.CellFormat(timetableWidths[i], 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	if len(tt.Rows) == 0 {
		pdf.CellFormat(0, 7, "No scheduled sections.", "", 1, "C", false, 0, "")
	}
	for _, row := range tt.Rows {
		pdf.CellFormat(timetableWidths[0], 7, row.Course, "1", 0, "", false, 0, "")
		pdf.CellFormat(timetableWidths[1], 7, strconv.Itoa(row.Section), "1", 0, "C", false, 0, "")
		pdf.CellFormat(timetableWidths[2], 7, row.Teacher, "1", 0, "", false, 0, "")
		pdf.CellFormat(timetableWidths[3], 7, row.Classroom, "1", 0, "", false, 0, "")
		pdf.CellFormat(timetableWidths[4], 7, row.Day, "1", 0, "C", false, 0, "")
		pdf.CellFormat(timetableWidths[5], 7, row.Start, "1", 0, "C", false, 0, "")
		pdf.CellFormat(timetableWidths[6], 7, row.End, "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
