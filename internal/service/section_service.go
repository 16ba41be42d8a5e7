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

type sectionRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error
	FindByID(ctx context.Context, id string) (*models.Section, error)
	FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error)
	List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, error)
	CountByCourseAndSemester(ctx context.Context, exec sqlx.ExtContext, courseID, semesterID string) (int, error)
}

type sectionTimeslotReader interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.SectionTimeslot, error)
}

// SectionService manages course sections and their lifecycle.
type SectionService struct {
	sections        sectionRepository
	timeslots       sectionTimeslotReader
	sectionCapacity int
	logger          *zap.Logger
}

// NewSectionService constructs SectionService.
func NewSectionService(sections sectionRepository, timeslots sectionTimeslotReader, sectionCapacity int, logger *zap.Logger) *SectionService {
	if sectionCapacity <= 0 {
		sectionCapacity = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SectionService{sections: sections, timeslots: timeslots, sectionCapacity: sectionCapacity, logger: logger}
}

// EnsureSections tops a course up to its needed section count for the
// semester. Existing sections are kept and numbering continues after them,
// so calling it twice with the same demand creates nothing new.
func (s *SectionService) EnsureSections(ctx context.Context, exec sqlx.ExtContext, demand CourseDemand, semesterID string) ([]models.Section, error) {
	existing, err := s.sections.CountByCourseAndSemester(ctx, exec, demand.Course.ID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count sections")
	}

	var created []models.Section
	for number := existing + 1; number <= demand.SectionsNeeded; number++ {
		section := models.Section{
			CourseID:      demand.Course.ID,
			SemesterID:    semesterID,
			SectionNumber: number,
			Capacity:      s.sectionCapacity,
			HoursPerWeek:  demand.Course.HoursPerWeek,
			Status:        models.SectionStatusUnscheduled,
		}
		if err := s.sections.Create(ctx, exec, &section); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create section")
		}
		created = append(created, section)
	}
	return created, nil
}

// Get returns a section with joined details and its weekly timeslots.
func (s *SectionService) Get(ctx context.Context, id string) (*models.SectionDetail, []models.SectionTimeslot, error) {
	detail, err := s.sections.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	slots, err := s.timeslots.ListBySection(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section timeslots")
	}
	return detail, slots, nil
}

// List returns sections matching the filter.
func (s *SectionService) List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, error) {
	sections, err := s.sections.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}
	return sections, nil
}
