package models

import "time"

// EnrollmentStatus represents the lifecycle of a student's registration.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled   EnrollmentStatus = "ENROLLED"
	EnrollmentStatusWaitlisted EnrollmentStatus = "WAITLISTED"
	EnrollmentStatusDropped    EnrollmentStatus = "DROPPED"
	EnrollmentStatusCompleted  EnrollmentStatus = "COMPLETED"
)

// ActiveEnrollmentStatuses count against duplicate-course and load-cap
// checks.
var ActiveEnrollmentStatuses = []EnrollmentStatus{
	EnrollmentStatusEnrolled,
	EnrollmentStatusWaitlisted,
}

// Enrollment links one student to one course section.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	SectionID  string           `db:"section_id" json:"section_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt time.Time        `db:"enrolled_at" json:"enrolled_at"`
	DroppedAt  *time.Time       `db:"dropped_at" json:"dropped_at,omitempty"`
}

// EnrollmentDetail enriches Enrollment with section and course context.
type EnrollmentDetail struct {
	Enrollment
	CourseID      string `db:"course_id" json:"course_id"`
	CourseCode    string `db:"course_code" json:"course_code"`
	CourseName    string `db:"course_name" json:"course_name"`
	SectionNumber int    `db:"section_number" json:"section_number"`
	SemesterID    string `db:"semester_id" json:"semester_id"`
}
