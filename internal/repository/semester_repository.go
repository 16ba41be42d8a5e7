package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// SemesterRepository handles access to semester records.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

const semesterColumns = `id, name, year, order_in_year, start_date, end_date, is_active`

// FindByID returns a semester by ID.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	query := fmt.Sprintf(`SELECT %s FROM semesters WHERE id = $1`, semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query, id); err != nil {
		return nil, err
	}
	return &semester, nil
}

// FindActive returns the currently active semester.
func (r *SemesterRepository) FindActive(ctx context.Context) (*models.Semester, error) {
	query := fmt.Sprintf(`SELECT %s FROM semesters WHERE is_active ORDER BY year DESC, order_in_year DESC LIMIT 1`, semesterColumns)
	var semester models.Semester
	if err := r.db.GetContext(ctx, &semester, query); err != nil {
		return nil, err
	}
	return &semester, nil
}
