package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// StudentRepository handles read access to student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, first_name, last_name, grade_level, enrollment_year, expected_graduation_year, status`

// FindByID returns a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListActiveByGradeLevel returns active students in the given grade.
func (r *StudentRepository) ListActiveByGradeLevel(ctx context.Context, gradeLevel int) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE grade_level = $1 AND status = $2 ORDER BY last_name, first_name`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, gradeLevel, models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("list students by grade level: %w", err)
	}
	return students, nil
}

// Demand analysis brackets eligibility by the academic year: a student is in
// residence when the year falls between enrollment and expected graduation.
const activeEligiblePredicate = `status = $1 AND grade_level BETWEEN $2 AND $3
	AND enrollment_year <= $4 AND expected_graduation_year >= $4`

// CountActiveEligible counts active students whose grade level falls in the
// given inclusive range and who are in residence for the academic year.
func (r *StudentRepository) CountActiveEligible(ctx context.Context, gradeMin, gradeMax, year int) (int, error) {
	query := `SELECT COUNT(*) FROM students WHERE ` + activeEligiblePredicate
	var count int
	if err := r.db.GetContext(ctx, &count, query, models.StudentStatusActive, gradeMin, gradeMax, year); err != nil {
		return 0, fmt.Errorf("count eligible students: %w", err)
	}
	return count, nil
}

// ListActiveEligible returns the students CountActiveEligible would count.
// Demand analysis walks this list when a course has a prerequisite to check
// per student.
func (r *StudentRepository) ListActiveEligible(ctx context.Context, gradeMin, gradeMax, year int) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE `, studentColumns) + activeEligiblePredicate + ` ORDER BY last_name, first_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, models.StudentStatusActive, gradeMin, gradeMax, year); err != nil {
		return nil, fmt.Errorf("list eligible students: %w", err)
	}
	return students, nil
}
