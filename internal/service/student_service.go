package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

// Graduation requires this many credits over grades nine through twelve.
const creditsRequired = 30

type historyLister interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.CourseHistory, error)
}

type creditSummer interface {
	SumCredits(ctx context.Context, courseIDs []string) (int, error)
}

type activeEnrollmentCounter interface {
	CountActiveAllSemesters(ctx context.Context, studentID string) (int, error)
}

// StudentService exposes student lookups and graduation progress reporting.
type StudentService struct {
	students    studentReader
	history     historyLister
	courses     creditSummer
	enrollments activeEnrollmentCounter
	logger      *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(students studentReader, history historyLister, courses creditSummer, enrollments activeEnrollmentCounter, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, history: history, courses: courses, enrollments: enrollments, logger: logger}
}

// Get returns a student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Progress reports the student's credits earned against the graduation
// requirement. A student is on track when their earned credits cover an even
// share of the requirement for each grade completed so far.
func (s *StudentService) Progress(ctx context.Context, studentID string) (*models.StudentProgress, error) {
	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	history, err := s.history.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course history")
	}

	var passedIDs []string
	passed, failed := 0, 0
	for _, record := range history {
		switch record.Status {
		case models.CourseHistoryPassed:
			passed++
			passedIDs = append(passedIDs, record.CourseID)
		case models.CourseHistoryFailed:
			failed++
		}
	}

	earned, err := s.courses.SumCredits(ctx, passedIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum credits")
	}

	enrolled, err := s.enrollments.CountActiveAllSemesters(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}

	remaining := creditsRequired - earned
	if remaining < 0 {
		remaining = 0
	}
	expected := float64(student.GradeLevel-8) * float64(creditsRequired) / 4

	return &models.StudentProgress{
		StudentID:        student.ID,
		StudentName:      student.FullName(),
		GradeLevel:       student.GradeLevel,
		CreditsEarned:    earned,
		CreditsRequired:  creditsRequired,
		CreditsRemaining: remaining,
		CoursesCompleted: passed + failed,
		CoursesPassed:    passed,
		CoursesFailed:    failed,
		CoursesEnrolled:  enrolled,
		OnTrack:          float64(earned) >= expected,
	}, nil
}
