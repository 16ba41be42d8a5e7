package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// CourseHistoryRepository handles read access to completed course records.
type CourseHistoryRepository struct {
	db *sqlx.DB
}

// NewCourseHistoryRepository constructs the repository.
func NewCourseHistoryRepository(db *sqlx.DB) *CourseHistoryRepository {
	return &CourseHistoryRepository{db: db}
}

const courseHistoryColumns = `id, student_id, course_id, grade, status, year`

// ListByStudent returns all course history rows for a student.
func (r *CourseHistoryRepository) ListByStudent(ctx context.Context, studentID string) ([]models.CourseHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM course_history WHERE student_id = $1 ORDER BY year, course_id`, courseHistoryColumns)
	var history []models.CourseHistory
	if err := r.db.SelectContext(ctx, &history, query, studentID); err != nil {
		return nil, fmt.Errorf("list course history: %w", err)
	}
	return history, nil
}

// HasPassed reports whether the student has a passed record for the course.
func (r *CourseHistoryRepository) HasPassed(ctx context.Context, studentID, courseID string) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM course_history
		WHERE student_id = $1 AND course_id = $2 AND status = $3
	)`
	var passed bool
	if err := r.db.GetContext(ctx, &passed, query, studentID, courseID, models.CourseHistoryPassed); err != nil {
		return false, fmt.Errorf("check passed course: %w", err)
	}
	return passed, nil
}
