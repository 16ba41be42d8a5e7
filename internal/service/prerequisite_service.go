package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type prereqCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type prereqHistoryReader interface {
	HasPassed(ctx context.Context, studentID, courseID string) (bool, error)
}

// PrerequisiteService walks course prerequisite chains and checks them
// against a student's passed history.
type PrerequisiteService struct {
	courses prereqCourseReader
	history prereqHistoryReader
	logger  *zap.Logger
}

// NewPrerequisiteService constructs PrerequisiteService.
func NewPrerequisiteService(courses prereqCourseReader, history prereqHistoryReader, logger *zap.Logger) *PrerequisiteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrerequisiteService{courses: courses, history: history, logger: logger}
}

// Chain returns the course followed by its prerequisites, nearest first. The
// walk is iterative with a visited set; a cycle in the catalog fails closed
// as a configuration error rather than looping.
func (s *PrerequisiteService) Chain(ctx context.Context, courseID string) ([]models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	visited := map[string]bool{course.ID: true}
	chain := []models.Course{*course}
	next := course.PrerequisiteID
	for next != nil && *next != "" {
		if visited[*next] {
			s.logger.Warn("prerequisite cycle detected", zap.String("course_id", courseID), zap.String("repeat_id", *next))
			return nil, appErrors.Clone(appErrors.ErrConfiguration, "prerequisite chain contains a cycle")
		}
		visited[*next] = true

		prereq, err := s.courses.FindByID(ctx, *next)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrConfiguration, "prerequisite course missing from catalog")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load prerequisite")
		}
		chain = append(chain, *prereq)
		next = prereq.PrerequisiteID
	}
	return chain, nil
}

// Missing returns the prerequisites in the course's chain that the student
// has not passed, nearest first.
func (s *PrerequisiteService) Missing(ctx context.Context, studentID, courseID string) ([]models.Course, error) {
	chain, err := s.Chain(ctx, courseID)
	if err != nil {
		return nil, err
	}
	// chain[0] is the course being enrolled into, not a requirement.
	var missing []models.Course
	for _, prereq := range chain[1:] {
		passed, err := s.history.HasPassed(ctx, studentID, prereq.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course history")
		}
		if !passed {
			missing = append(missing, prereq)
		}
	}
	return missing, nil
}

// HasMet reports whether the student satisfies every prerequisite of the course.
func (s *PrerequisiteService) HasMet(ctx context.Context, studentID, courseID string) (bool, error) {
	missing, err := s.Missing(ctx, studentID, courseID)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}
