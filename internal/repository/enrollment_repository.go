package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// EnrollmentRepository handles access to enrollment records.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, student_id, section_id, status, enrolled_at, dropped_at`

// Create inserts an enrollment row.
func (r *EnrollmentRepository) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = time.Now().UTC()
	}
	query := `INSERT INTO enrollments (id, student_id, section_id, status, enrolled_at, dropped_at)
		VALUES (:id, :student_id, :section_id, :status, :enrolled_at, :dropped_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, enrollment); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// FindActive returns the student's active enrollment in a section, if any.
// Dropped and completed rows are ignored so a student can re-enroll later.
func (r *EnrollmentRepository) FindActive(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments
		WHERE student_id = $1 AND section_id = $2 AND status IN ('ENROLLED', 'WAITLISTED')`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := sqlx.GetContext(ctx, exec, &enrollment, query, studentID, sectionID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// ExistsActiveForCourse reports whether the student already holds an active
// enrollment in any section of the course within the semester.
func (r *EnrollmentRepository) ExistsActiveForCourse(ctx context.Context, exec sqlx.ExtContext, studentID, courseID, semesterID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM enrollments e
		JOIN sections s ON s.id = e.section_id
		WHERE e.student_id = $1 AND s.course_id = $2 AND s.semester_id = $3
		  AND e.status IN ('ENROLLED', 'WAITLISTED')
	)`
	var exists bool
	if err := sqlx.GetContext(ctx, exec, &exists, query, studentID, courseID, semesterID); err != nil {
		return false, fmt.Errorf("check course enrollment: %w", err)
	}
	return exists, nil
}

// CountActiveBySemester counts the student's active enrollments in a semester.
func (r *EnrollmentRepository) CountActiveBySemester(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments e
		JOIN sections s ON s.id = e.section_id
		WHERE e.student_id = $1 AND s.semester_id = $2 AND e.status IN ('ENROLLED', 'WAITLISTED')`
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, query, studentID, semesterID); err != nil {
		return 0, fmt.Errorf("count semester enrollments: %w", err)
	}
	return count, nil
}

// UpdateStatus moves an enrollment to a new status, stamping dropped_at when
// the status is DROPPED.
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	query := `UPDATE enrollments SET status = :status, dropped_at = :dropped_at WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, enrollment); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// ListActiveByStudentAndSemester returns the student's active enrollments in
// the semester with course and section details joined in.
func (r *EnrollmentRepository) ListActiveByStudentAndSemester(ctx context.Context, studentID, semesterID string) ([]models.EnrollmentDetail, error) {
	query := `SELECT e.id, e.student_id, e.section_id, e.status, e.enrolled_at, e.dropped_at,
			s.course_id, c.code AS course_code, c.name AS course_name,
			s.section_number, s.semester_id
		FROM enrollments e
		JOIN sections s ON s.id = e.section_id
		JOIN courses c ON c.id = s.course_id
		WHERE e.student_id = $1 AND s.semester_id = $2 AND e.status IN ('ENROLLED', 'WAITLISTED')
		ORDER BY c.code, s.section_number`
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, semesterID); err != nil {
		return nil, fmt.Errorf("list student enrollments: %w", err)
	}
	return enrollments, nil
}

// CountActiveAllSemesters counts the student's active enrollments across all
// semesters. Used by progress reporting.
func (r *EnrollmentRepository) CountActiveAllSemesters(ctx context.Context, studentID string) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE student_id = $1 AND status IN ('ENROLLED', 'WAITLISTED')`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID); err != nil {
		return 0, fmt.Errorf("count active enrollments: %w", err)
	}
	return count, nil
}
