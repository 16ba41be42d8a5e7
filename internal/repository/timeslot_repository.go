package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// TimeslotRepository handles access to section timeslots.
type TimeslotRepository struct {
	db *sqlx.DB
}

// NewTimeslotRepository constructs the repository.
func NewTimeslotRepository(db *sqlx.DB) *TimeslotRepository {
	return &TimeslotRepository{db: db}
}

const timeslotColumns = `id, section_id, day_of_week, start_minute, end_minute, created_at`

// Create inserts a timeslot for a section.
func (r *TimeslotRepository) Create(ctx context.Context, exec sqlx.ExtContext, slot *models.SectionTimeslot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.CreatedAt = time.Now().UTC()
	query := `INSERT INTO section_timeslots (id, section_id, day_of_week, start_minute, end_minute, created_at)
		VALUES (:id, :section_id, :day_of_week, :start_minute, :end_minute, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, slot); err != nil {
		return fmt.Errorf("insert timeslot: %w", err)
	}
	return nil
}

// ListBySection returns the timeslots assigned to a section.
func (r *TimeslotRepository) ListBySection(ctx context.Context, sectionID string) ([]models.SectionTimeslot, error) {
	query := fmt.Sprintf(`SELECT %s FROM section_timeslots WHERE section_id = $1 ORDER BY day_of_week, start_minute`, timeslotColumns)
	var slots []models.SectionTimeslot
	if err := r.db.SelectContext(ctx, &slots, query, sectionID); err != nil {
		return nil, fmt.Errorf("list timeslots by section: %w", err)
	}
	return slots, nil
}

// ListByTeacherAndSemester returns all timeslots already held by a teacher
// across the semester's sections.
func (r *TimeslotRepository) ListByTeacherAndSemester(ctx context.Context, exec sqlx.ExtContext, teacherID, semesterID string) ([]models.SectionTimeslot, error) {
	query := `SELECT ts.id, ts.section_id, ts.day_of_week, ts.start_minute, ts.end_minute, ts.created_at
		FROM section_timeslots ts
		JOIN sections s ON s.id = ts.section_id
		WHERE s.teacher_id = $1 AND s.semester_id = $2
		ORDER BY ts.day_of_week, ts.start_minute`
	var slots []models.SectionTimeslot
	if err := sqlx.SelectContext(ctx, exec, &slots, query, teacherID, semesterID); err != nil {
		return nil, fmt.Errorf("list teacher timeslots: %w", err)
	}
	return slots, nil
}

// ListByClassroomAndSemester returns all timeslots already held in a classroom
// across the semester's sections.
func (r *TimeslotRepository) ListByClassroomAndSemester(ctx context.Context, exec sqlx.ExtContext, classroomID, semesterID string) ([]models.SectionTimeslot, error) {
	query := `SELECT ts.id, ts.section_id, ts.day_of_week, ts.start_minute, ts.end_minute, ts.created_at
		FROM section_timeslots ts
		JOIN sections s ON s.id = ts.section_id
		WHERE s.classroom_id = $1 AND s.semester_id = $2
		ORDER BY ts.day_of_week, ts.start_minute`
	var slots []models.SectionTimeslot
	if err := sqlx.SelectContext(ctx, exec, &slots, query, classroomID, semesterID); err != nil {
		return nil, fmt.Errorf("list classroom timeslots: %w", err)
	}
	return slots, nil
}

// ListByStudentEnrolled returns the timeslots of every section the student
// holds a seat in for the semester. Waitlisted sections are excluded; a
// waitlist spot claims no meeting time, so it cannot cause a time conflict.
func (r *TimeslotRepository) ListByStudentEnrolled(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) ([]models.SectionTimeslot, error) {
	query := `SELECT ts.id, ts.section_id, ts.day_of_week, ts.start_minute, ts.end_minute, ts.created_at
		FROM section_timeslots ts
		JOIN sections s ON s.id = ts.section_id
		JOIN enrollments e ON e.section_id = s.id
		WHERE e.student_id = $1 AND s.semester_id = $2 AND e.status = 'ENROLLED'
		ORDER BY ts.day_of_week, ts.start_minute`
	var slots []models.SectionTimeslot
	if err := sqlx.SelectContext(ctx, exec, &slots, query, studentID, semesterID); err != nil {
		return nil, fmt.Errorf("list student timeslots: %w", err)
	}
	return slots, nil
}
