package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type semesterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	FindActive(ctx context.Context) (*models.Semester, error)
}

type sectionPurger interface {
	DeleteBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int64, error)
}

// SemesterService exposes semester lookups and the revert operation that
// wipes a semester's generated schedule.
type SemesterService struct {
	tx        txProvider
	semesters semesterRepository
	sections  sectionPurger
	cache     scheduleCache
	logger    *zap.Logger
}

// NewSemesterService constructs SemesterService.
func NewSemesterService(tx txProvider, semesters semesterRepository, sections sectionPurger, cache scheduleCache, logger *zap.Logger) *SemesterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemesterService{tx: tx, semesters: semesters, sections: sections, cache: cache, logger: logger}
}

// Get returns a semester by ID.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.semesters.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// Active returns the currently active semester.
func (s *SemesterService) Active(ctx context.Context) (*models.Semester, error) {
	semester, err := s.semesters.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active semester")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active semester")
	}
	return semester, nil
}

// Revert deletes every section of the semester along with its timeslots and
// enrollments, returning the semester to an unscheduled state. Cached student
// schedules are flushed afterwards.
func (s *SemesterService) Revert(ctx context.Context, semesterID string) (int64, error) {
	if _, err := s.Get(ctx, semesterID); err != nil {
		return 0, err
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer tx.Rollback()

	removed, err := s.sections.DeleteBySemester(ctx, tx, semesterID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete sections")
	}
	if err := tx.Commit(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit revert")
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, "schedule:student:*"); err != nil {
			s.logger.Warn("schedule cache flush failed", zap.Error(err))
		}
	}
	s.logger.Info("semester schedule reverted", zap.String("semester_id", semesterID), zap.Int64("sections_removed", removed))
	return removed, nil
}
