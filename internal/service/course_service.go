package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

// CourseWithPrerequisites pairs a course with its resolved prerequisite
// chain. The chain starts at the course itself and walks nearest first.
type CourseWithPrerequisites struct {
	Course models.Course   `json:"course"`
	Chain  []models.Course `json:"prerequisite_chain"`
}

// CourseService exposes catalog lookups.
type CourseService struct {
	courses prereqCourseReader
	prereqs *PrerequisiteService
	logger  *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(courses prereqCourseReader, prereqs *PrerequisiteService, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, prereqs: prereqs, logger: logger}
}

// Get returns a course with its prerequisite chain, nearest first.
func (s *CourseService) Get(ctx context.Context, id string) (*CourseWithPrerequisites, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	chain, err := s.prereqs.Chain(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CourseWithPrerequisites{Course: *course, Chain: chain}, nil
}
