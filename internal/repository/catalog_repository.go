package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// SpecializationRepository handles read access to specializations.
type SpecializationRepository struct {
	db *sqlx.DB
}

// NewSpecializationRepository constructs the repository.
func NewSpecializationRepository(db *sqlx.DB) *SpecializationRepository {
	return &SpecializationRepository{db: db}
}

// FindByID returns a specialization by ID.
func (r *SpecializationRepository) FindByID(ctx context.Context, id string) (*models.Specialization, error) {
	query := `SELECT id, name, description, room_type_id FROM specializations WHERE id = $1`
	var spec models.Specialization
	if err := r.db.GetContext(ctx, &spec, query, id); err != nil {
		return nil, err
	}
	return &spec, nil
}

// TeacherRepository handles read access to teacher records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID returns a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := `SELECT id, first_name, last_name, specialization_id FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListBySpecialization returns teachers qualified for the given specialization.
func (r *TeacherRepository) ListBySpecialization(ctx context.Context, specializationID string) ([]models.Teacher, error) {
	query := `SELECT id, first_name, last_name, specialization_id FROM teachers WHERE specialization_id = $1 ORDER BY id`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, specializationID); err != nil {
		return nil, fmt.Errorf("list teachers by specialization: %w", err)
	}
	return teachers, nil
}

// ClassroomRepository handles read access to classroom records.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

// FindByID returns a classroom by ID.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	query := `SELECT id, name, room_type_id, capacity FROM classrooms WHERE id = $1`
	var room models.Classroom
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByRoomType returns classrooms of the given room type.
func (r *ClassroomRepository) ListByRoomType(ctx context.Context, roomTypeID string) ([]models.Classroom, error) {
	query := `SELECT id, name, room_type_id, capacity FROM classrooms WHERE room_type_id = $1 ORDER BY id`
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query, roomTypeID); err != nil {
		return nil, fmt.Errorf("list classrooms by room type: %w", err)
	}
	return rooms, nil
}
