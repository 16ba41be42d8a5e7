package models

import "time"

// SectionStatus tracks the lifecycle of a course section.
type SectionStatus string

const (
	SectionStatusUnscheduled SectionStatus = "UNSCHEDULED"
	SectionStatusScheduled   SectionStatus = "SCHEDULED"
	SectionStatusActive      SectionStatus = "ACTIVE"
	SectionStatusCompleted   SectionStatus = "COMPLETED"
	SectionStatusCancelled   SectionStatus = "CANCELLED"
)

// Section is one parallel offering of a course within a semester.
// TeacherID and ClassroomID stay nil until the scheduler places it.
type Section struct {
	ID            string        `db:"id" json:"id"`
	CourseID      string        `db:"course_id" json:"course_id"`
	SemesterID    string        `db:"semester_id" json:"semester_id"`
	SectionNumber int           `db:"section_number" json:"section_number"`
	TeacherID     *string       `db:"teacher_id" json:"teacher_id,omitempty"`
	ClassroomID   *string       `db:"classroom_id" json:"classroom_id,omitempty"`
	Capacity      int           `db:"capacity" json:"capacity"`
	HoursPerWeek  int           `db:"hours_per_week" json:"hours_per_week"`
	Status        SectionStatus `db:"status" json:"status"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
}

// AcceptsEnrollment reports whether students may register for this section.
func (s *Section) AcceptsEnrollment() bool {
	return s.Status == SectionStatusScheduled || s.Status == SectionStatusActive
}

// SectionDetail enriches Section with joined catalog context.
type SectionDetail struct {
	Section
	CourseCode    string  `db:"course_code" json:"course_code"`
	CourseName    string  `db:"course_name" json:"course_name"`
	TeacherName   *string `db:"teacher_name" json:"teacher_name,omitempty"`
	ClassroomName *string `db:"classroom_name" json:"classroom_name,omitempty"`
	EnrolledCount int     `db:"enrolled_count" json:"enrolled_count"`
}

// SectionFilter narrows section listings.
type SectionFilter struct {
	SemesterID string
	CourseID   string
	Status     SectionStatus
}

// ScheduleRunResult aggregates the outcome of one semester scheduling run.
type ScheduleRunResult struct {
	Sections  []Section `json:"sections"`
	Scheduled int       `json:"scheduled"`
	Failed    int       `json:"failed"`
}
