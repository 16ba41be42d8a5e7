package models

// StudentStatusActive marks a student eligible for demand analysis
// and enrollment.
const StudentStatusActive = "active"

// Student represents a learner registered at the institution.
type Student struct {
	ID                     string `db:"id" json:"id"`
	FirstName              string `db:"first_name" json:"first_name"`
	LastName               string `db:"last_name" json:"last_name"`
	GradeLevel             int    `db:"grade_level" json:"grade_level"`
	EnrollmentYear         int    `db:"enrollment_year" json:"enrollment_year"`
	ExpectedGraduationYear int    `db:"expected_graduation_year" json:"expected_graduation_year"`
	Status                 string `db:"status" json:"status"`
}

// FullName joins first and last name for display.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// CourseHistoryStatus values recorded for completed courses.
const (
	CourseHistoryPassed = "passed"
	CourseHistoryFailed = "failed"
)

// CourseHistory is one completed course attempt on a student's transcript.
type CourseHistory struct {
	ID       string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	CourseID string `db:"course_id" json:"course_id"`
	Grade    string `db:"grade" json:"grade"`
	Status   string `db:"status" json:"status"`
	Year     int    `db:"year" json:"year"`
}

// StudentProgress summarises transcript and current load for a student.
type StudentProgress struct {
	StudentID        string `json:"student_id"`
	StudentName      string `json:"student_name"`
	GradeLevel       int    `json:"grade_level"`
	CreditsEarned    int    `json:"credits_earned"`
	CreditsRequired  int    `json:"credits_required"`
	CreditsRemaining int    `json:"credits_remaining"`
	CoursesCompleted int    `json:"courses_completed"`
	CoursesPassed    int    `json:"courses_passed"`
	CoursesFailed    int    `json:"courses_failed"`
	CoursesEnrolled  int    `json:"courses_enrolled"`
	OnTrack          bool   `json:"on_track_for_graduation"`
}
