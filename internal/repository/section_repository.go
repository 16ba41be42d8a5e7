package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// SectionRepository handles access to course sections.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

const sectionColumns = `id, course_id, semester_id, section_number, teacher_id, classroom_id, capacity, hours_per_week, status, created_at, updated_at`

const sectionDetailQuery = `
	SELECT s.id, s.course_id, s.semester_id, s.section_number, s.teacher_id,
	       s.classroom_id, s.capacity, s.hours_per_week, s.status, s.created_at, s.updated_at,
	       c.code AS course_code, c.name AS course_name,
	       COALESCE(t.first_name || ' ' || t.last_name, '') AS teacher_name,
	       COALESCE(r.name, '') AS classroom_name,
	       (SELECT COUNT(*) FROM enrollments e
	        WHERE e.section_id = s.id AND e.status = 'ENROLLED') AS enrolled_count
	FROM sections s
	JOIN courses c ON c.id = s.course_id
	LEFT JOIN teachers t ON t.id = s.teacher_id
	LEFT JOIN classrooms r ON r.id = s.classroom_id`

// Create inserts a section. A zero ID is replaced with a fresh UUID.
func (r *SectionRepository) Create(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	section.CreatedAt = now
	section.UpdatedAt = now

	query := `INSERT INTO sections (id, course_id, semester_id, section_number, teacher_id, classroom_id,
			capacity, hours_per_week, status, created_at, updated_at)
		VALUES (:id, :course_id, :semester_id, :section_number, :teacher_id, :classroom_id,
			:capacity, :hours_per_week, :status, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, section); err != nil {
		return fmt.Errorf("insert section: %w", err)
	}
	return nil
}

// FindByID returns a section by ID.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE id = $1`, sectionColumns)
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		return nil, err
	}
	return &section, nil
}

// FindDetailByID returns a section with course, teacher, classroom and
// enrollment count joined in.
func (r *SectionRepository) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	query := sectionDetailQuery + ` WHERE s.id = $1`
	var detail models.SectionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// List returns section details matching the filter.
func (r *SectionRepository) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, error) {
	query := sectionDetailQuery + ` WHERE 1=1`
	args := []interface{}{}
	idx := 1
	if filter.SemesterID != "" {
		query += fmt.Sprintf(" AND s.semester_id = $%d", idx)
		args = append(args, filter.SemesterID)
		idx++
	}
	if filter.CourseID != "" {
		query += fmt.Sprintf(" AND s.course_id = $%d", idx)
		args = append(args, filter.CourseID)
		idx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND s.status = $%d", idx)
		args = append(args, filter.Status)
		idx++
	}
	query += " ORDER BY c.code, s.section_number"

	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// CountByCourseAndSemester counts existing sections of a course in a semester.
func (r *SectionRepository) CountByCourseAndSemester(ctx context.Context, exec sqlx.ExtContext, courseID, semesterID string) (int, error) {
	query := `SELECT COUNT(*) FROM sections WHERE course_id = $1 AND semester_id = $2`
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, query, courseID, semesterID); err != nil {
		return 0, fmt.Errorf("count sections: %w", err)
	}
	return count, nil
}

// ListUnscheduledBySemester returns the sections still awaiting assignment.
func (r *SectionRepository) ListUnscheduledBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) ([]models.Section, error) {
	query := fmt.Sprintf(`SELECT %s FROM sections WHERE semester_id = $1 AND status = $2 ORDER BY hours_per_week DESC, course_id, section_number`, sectionColumns)
	var sections []models.Section
	if err := sqlx.SelectContext(ctx, exec, &sections, query, semesterID, models.SectionStatusUnscheduled); err != nil {
		return nil, fmt.Errorf("list unscheduled sections: %w", err)
	}
	return sections, nil
}

// CountScheduledBySemester counts the semester's sections already carrying a
// placement.
func (r *SectionRepository) CountScheduledBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int, error) {
	query := `SELECT COUNT(*) FROM sections WHERE semester_id = $1 AND status = $2`
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, query, semesterID, models.SectionStatusScheduled); err != nil {
		return 0, fmt.Errorf("count scheduled sections: %w", err)
	}
	return count, nil
}

// UpdateAssignment records the teacher, classroom and status chosen for a section.
func (r *SectionRepository) UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	query := `UPDATE sections
		SET teacher_id = :teacher_id, classroom_id = :classroom_id, status = :status, updated_at = :updated_at
		WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, section); err != nil {
		return fmt.Errorf("update section assignment: %w", err)
	}
	return nil
}

// CountEnrolled counts seats taken in a section. Waitlisted students hold no
// seat, so only ENROLLED rows count against capacity.
func (r *SectionRepository) CountEnrolled(ctx context.Context, exec sqlx.ExtContext, sectionID string) (int, error) {
	query := `SELECT COUNT(*) FROM enrollments WHERE section_id = $1 AND status = 'ENROLLED'`
	var count int
	if err := sqlx.GetContext(ctx, exec, &count, query, sectionID); err != nil {
		return 0, fmt.Errorf("count enrolled: %w", err)
	}
	return count, nil
}

// DeleteBySemester removes all sections of a semester. Timeslots and
// enrollments cascade at the database level.
func (r *SectionRepository) DeleteBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int64, error) {
	result, err := exec.ExecContext(ctx, `DELETE FROM sections WHERE semester_id = $1`, semesterID)
	if err != nil {
		return 0, fmt.Errorf("delete sections: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete sections rows affected: %w", err)
	}
	return affected, nil
}
