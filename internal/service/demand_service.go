package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type demandCourseReader interface {
	ListBySemesterOrder(ctx context.Context, semesterOrder int) ([]models.Course, error)
}

type demandStudentReader interface {
	CountActiveEligible(ctx context.Context, gradeMin, gradeMax, year int) (int, error)
	ListActiveEligible(ctx context.Context, gradeMin, gradeMax, year int) ([]models.Student, error)
}

type demandHistoryReader interface {
	HasPassed(ctx context.Context, studentID, courseID string) (bool, error)
}

// CourseDemand pairs a course with its projected enrollment and the number of
// sections needed to absorb it.
type CourseDemand struct {
	Course           models.Course `json:"course"`
	EligibleStudents int           `json:"eligible_students"`
	SectionsNeeded   int           `json:"sections_needed"`
}

// DemandService projects per-course enrollment demand for a semester.
type DemandService struct {
	courses         demandCourseReader
	students        demandStudentReader
	history         demandHistoryReader
	sectionCapacity int
	logger          *zap.Logger
}

// NewDemandService constructs DemandService.
func NewDemandService(courses demandCourseReader, students demandStudentReader, history demandHistoryReader, sectionCapacity int, logger *zap.Logger) *DemandService {
	if sectionCapacity <= 0 {
		sectionCapacity = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DemandService{courses: courses, students: students, history: history, sectionCapacity: sectionCapacity, logger: logger}
}

// Analyze counts eligible students per course in the semester's catalog slot
// and derives how many sections each course needs. Eligibility means an
// active student in the course's grade band, in residence for the semester's
// academic year, with the course's prerequisite passed. Courses with no
// eligible students are omitted.
func (s *DemandService) Analyze(ctx context.Context, semester *models.Semester) ([]CourseDemand, error) {
	courses, err := s.courses.ListBySemesterOrder(ctx, semester.OrderInYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester courses")
	}

	demands := make([]CourseDemand, 0, len(courses))
	for _, course := range courses {
		eligible, err := s.countEligible(ctx, &course, semester.Year)
		if err != nil {
			return nil, err
		}
		if eligible == 0 {
			continue
		}
		needed := (eligible + s.sectionCapacity - 1) / s.sectionCapacity
		demands = append(demands, CourseDemand{Course: course, EligibleStudents: eligible, SectionsNeeded: needed})
	}

	s.logger.Debug("demand analysis complete",
		zap.String("semester_id", semester.ID),
		zap.Int("courses_with_demand", len(demands)))
	return demands, nil
}

// countEligible takes the cheap COUNT path for courses without a
// prerequisite; otherwise it walks the eligible students and keeps those with
// the prerequisite passed.
func (s *DemandService) countEligible(ctx context.Context, course *models.Course, year int) (int, error) {
	if course.PrerequisiteID == nil {
		count, err := s.students.CountActiveEligible(ctx, course.GradeLevelMin, course.GradeLevelMax, year)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count eligible students")
		}
		return count, nil
	}

	students, err := s.students.ListActiveEligible(ctx, course.GradeLevelMin, course.GradeLevelMax, year)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list eligible students")
	}
	eligible := 0
	for _, student := range students {
		passed, err := s.history.HasPassed(ctx, student.ID, *course.PrerequisiteID)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check prerequisite history")
		}
		if passed {
			eligible++
		}
	}
	return eligible, nil
}
