package dto

import "github.com/atul951/trinity-scheduler-api/internal/models"

// EnrollRequest registers a student into a section.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
}

// DropRequest removes a student from a section.
type DropRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	SectionID string `json:"section_id" validate:"required"`
}

// EnrollmentValidationResult aggregates every violation found during a
// dry-run validation instead of stopping at the first one.
type EnrollmentValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AddError records a hard violation and flips the validity flag.
func (r *EnrollmentValidationResult) AddError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

// AddWarning records a non-blocking advisory.
func (r *EnrollmentValidationResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// StudentScheduleEntry is one enrolled section with its weekly meetings.
type StudentScheduleEntry struct {
	SectionID     string                   `json:"section_id"`
	CourseCode    string                   `json:"course_code"`
	CourseName    string                   `json:"course_name"`
	SectionNumber int                      `json:"section_number"`
	Status        models.EnrollmentStatus  `json:"status"`
	Timeslots     []models.SectionTimeslot `json:"timeslots"`
}

// StudentScheduleResponse is a student's weekly schedule for a semester.
type StudentScheduleResponse struct {
	StudentID  string                 `json:"student_id"`
	SemesterID string                 `json:"semester_id"`
	Entries    []StudentScheduleEntry `json:"entries"`
}
