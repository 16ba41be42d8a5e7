package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// CourseRepository handles read access to the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, code, name, credits, hours_per_week, specialization_id, prerequisite_id, semester_order, grade_level_min, grade_level_max`

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListBySemesterOrder returns courses offered in the given term slot.
func (r *CourseRepository) ListBySemesterOrder(ctx context.Context, semesterOrder int) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE semester_order = $1 ORDER BY id`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, semesterOrder); err != nil {
		return nil, fmt.Errorf("list courses by semester order: %w", err)
	}
	return courses, nil
}

// SumCredits totals the credits of the given course IDs.
func (r *CourseRepository) SumCredits(ctx context.Context, courseIDs []string) (int, error) {
	if len(courseIDs) == 0 {
		return 0, nil
	}
	placeholders := make([]string, len(courseIDs))
	args := make([]interface{}, len(courseIDs))
	for i, id := range courseIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf("SELECT COALESCE(SUM(credits), 0) FROM courses WHERE id IN (%s)", strings.Join(placeholders, ","))
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("sum course credits: %w", err)
	}
	return total, nil
}
