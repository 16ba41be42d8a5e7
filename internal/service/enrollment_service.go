package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/dto"
	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type enrollmentRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	FindActive(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) (*models.Enrollment, error)
	ExistsActiveForCourse(ctx context.Context, exec sqlx.ExtContext, studentID, courseID, semesterID string) (bool, error)
	CountActiveBySemester(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) (int, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error
	ListActiveByStudentAndSemester(ctx context.Context, studentID, semesterID string) ([]models.EnrollmentDetail, error)
}

type enrollmentSectionReader interface {
	FindByID(ctx context.Context, id string) (*models.Section, error)
	CountEnrolled(ctx context.Context, exec sqlx.ExtContext, sectionID string) (int, error)
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type enrollmentTimeslotReader interface {
	ListBySection(ctx context.Context, sectionID string) ([]models.SectionTimeslot, error)
	ListByStudentEnrolled(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) ([]models.SectionTimeslot, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// EnrollmentService runs the enrollment pipeline, dry-run validation, drops
// and cached student schedules.
type EnrollmentService struct {
	db          *sqlx.DB
	tx          txProvider
	enrollments enrollmentRepository
	sections    enrollmentSectionReader
	students    studentReader
	courses     prereqCourseReader
	timeslots   enrollmentTimeslotReader
	prereqs     *PrerequisiteService
	cache       scheduleCache
	metrics     *MetricsService
	maxCourses  int
	cacheTTL    time.Duration
	validator   *validator.Validate
	logger      *zap.Logger
}

// EnrollmentDeps bundles the collaborators of EnrollmentService.
type EnrollmentDeps struct {
	DB          *sqlx.DB
	Tx          txProvider
	Enrollments enrollmentRepository
	Sections    enrollmentSectionReader
	Students    studentReader
	Courses     prereqCourseReader
	Timeslots   enrollmentTimeslotReader
	Prereqs     *PrerequisiteService
	Cache       scheduleCache
	Metrics     *MetricsService
	MaxCourses  int
	CacheTTL    time.Duration
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(deps EnrollmentDeps) *EnrollmentService {
	if deps.MaxCourses <= 0 {
		deps.MaxCourses = 5
	}
	if deps.CacheTTL <= 0 {
		deps.CacheTTL = 5 * time.Minute
	}
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &EnrollmentService{
		db:          deps.DB,
		tx:          deps.Tx,
		enrollments: deps.Enrollments,
		sections:    deps.Sections,
		students:    deps.Students,
		courses:     deps.Courses,
		timeslots:   deps.Timeslots,
		prereqs:     deps.Prereqs,
		cache:       deps.Cache,
		metrics:     deps.Metrics,
		maxCourses:  deps.MaxCourses,
		cacheTTL:    deps.CacheTTL,
		validator:   deps.Validator,
		logger:      deps.Logger,
	}
}

// Enroll registers a student into a section, waitlisting when the section is
// full. Every check and the insert run in one transaction so concurrent
// requests cannot oversubscribe a section.
func (s *EnrollmentService) Enroll(ctx context.Context, req dto.EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment request")
	}

	student, section, failure, err := s.loadParticipants(ctx, req.StudentID, req.SectionID)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		s.metrics.RecordEnrollment("rejected")
		return nil, failure
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer tx.Rollback()

	if failure, err := s.runChecks(ctx, tx, student, section); err != nil {
		return nil, err
	} else if failure != nil {
		s.metrics.RecordEnrollment("rejected")
		return nil, failure
	}

	status := models.EnrollmentStatusEnrolled
	enrolled, err := s.sections.CountEnrolled(ctx, tx, section.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if enrolled >= section.Capacity {
		status = models.EnrollmentStatusWaitlisted
	}

	enrollment := &models.Enrollment{
		StudentID: student.ID,
		SectionID: section.ID,
		Status:    status,
	}
	if err := s.enrollments.Create(ctx, tx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit enrollment")
	}

	s.metrics.RecordEnrollment(strings.ToLower(string(status)))
	s.invalidateSchedule(ctx, student.ID)
	s.logger.Info("student enrolled",
		zap.String("student_id", student.ID),
		zap.String("section_id", section.ID),
		zap.String("status", string(status)))
	return enrollment, nil
}

// Validate runs the pipeline checks without writing anything, collecting
// every violation instead of stopping at the first.
func (s *EnrollmentService) Validate(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollmentValidationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment request")
	}

	result := &dto.EnrollmentValidationResult{Valid: true}
	student, section, failure, err := s.loadParticipants(ctx, req.StudentID, req.SectionID)
	if err != nil {
		return nil, err
	}
	if failure != nil {
		result.AddError(failure.Message)
		return result, nil
	}

	violations, err := s.collectViolations(ctx, s.db, student, section)
	if err != nil {
		return nil, err
	}
	for _, v := range violations {
		result.AddError(v.message)
	}

	enrolled, err := s.sections.CountEnrolled(ctx, s.db, section.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if enrolled >= section.Capacity {
		result.AddWarning("section is full, enrollment would be waitlisted")
	}
	return result, nil
}

// Drop marks the student's active enrollment in the section as dropped.
// Dropping a section the student never held, or already dropped, is not found.
func (s *EnrollmentService) Drop(ctx context.Context, req dto.DropRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid drop request")
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer tx.Rollback()

	enrollment, err := s.enrollments.FindActive(ctx, tx, req.StudentID, req.SectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "active enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	now := time.Now().UTC()
	enrollment.Status = models.EnrollmentStatusDropped
	enrollment.DroppedAt = &now
	if err := s.enrollments.UpdateStatus(ctx, tx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment")
	}
	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit drop")
	}

	s.metrics.RecordEnrollment("dropped")
	s.invalidateSchedule(ctx, req.StudentID)
	return enrollment, nil
}

// StudentSchedule returns the student's weekly schedule for a semester,
// served from Redis when fresh.
func (s *EnrollmentService) StudentSchedule(ctx context.Context, studentID, semesterID string) (*dto.StudentScheduleResponse, error) {
	key := scheduleCacheKey(studentID, semesterID)
	if s.cache != nil {
		var cached dto.StudentScheduleResponse
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.metrics.RecordCacheOperation(true)
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("schedule cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	enrollments, err := s.enrollments.ListActiveByStudentAndSemester(ctx, studentID, semesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	response := &dto.StudentScheduleResponse{
		StudentID:  studentID,
		SemesterID: semesterID,
		Entries:    make([]dto.StudentScheduleEntry, 0, len(enrollments)),
	}
	for _, enrollment := range enrollments {
		slots, err := s.timeslots.ListBySection(ctx, enrollment.SectionID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeslots")
		}
		response.Entries = append(response.Entries, dto.StudentScheduleEntry{
			SectionID:     enrollment.SectionID,
			CourseCode:    enrollment.CourseCode,
			CourseName:    enrollment.CourseName,
			SectionNumber: enrollment.SectionNumber,
			Status:        enrollment.Status,
			Timeslots:     slots,
		})
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, response, s.cacheTTL); err != nil {
			s.logger.Warn("schedule cache write failed", zap.Error(err))
		}
	}
	return response, nil
}

// loadParticipants resolves the student and section and runs the checks that
// need no transaction. A non-nil failure is a pipeline rejection; err is an
// infrastructure problem.
func (s *EnrollmentService) loadParticipants(ctx context.Context, studentID, sectionID string) (*models.Student, *models.Section, *appErrors.Error, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found"), nil
		}
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if student.Status != models.StudentStatusActive {
		return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "student is not active"), nil
	}

	section, err := s.sections.FindByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "section not found"), nil
		}
		return nil, nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	if !section.AcceptsEnrollment() {
		return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "section is not open for enrollment"), nil
	}
	return student, section, nil, nil
}

// violation is one failed pipeline check with the error class it maps to.
type violation struct {
	base    *appErrors.Error
	message string
}

// runChecks applies the ordered pipeline checks and returns the first
// violation.
func (s *EnrollmentService) runChecks(ctx context.Context, exec sqlx.ExtContext, student *models.Student, section *models.Section) (*appErrors.Error, error) {
	violations, err := s.collectViolations(ctx, exec, student, section)
	if err != nil {
		return nil, err
	}
	if len(violations) == 0 {
		return nil, nil
	}
	first := violations[0]
	return appErrors.Clone(first.base, first.message), nil
}

// collectViolations runs the duplicate, prerequisite, time-conflict and load
// checks in pipeline order and reports every violation found.
func (s *EnrollmentService) collectViolations(ctx context.Context, exec sqlx.ExtContext, student *models.Student, section *models.Section) ([]violation, error) {
	var violations []violation

	inSection := false
	if _, err := s.enrollments.FindActive(ctx, exec, student.ID, section.ID); err == nil {
		inSection = true
		violations = append(violations, violation{appErrors.ErrConflict, "student is already enrolled in this section"})
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check section enrollment")
	}

	inCourse, err := s.enrollments.ExistsActiveForCourse(ctx, exec, student.ID, section.CourseID, section.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course enrollment")
	}
	if inCourse && !inSection {
		violations = append(violations, violation{appErrors.ErrConflict, "student is already enrolled in another section of this course"})
	}

	missing, err := s.prereqs.Missing(ctx, student.ID, section.CourseID)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, course := range missing {
			names[i] = course.Code
		}
		violations = append(violations, violation{appErrors.ErrPreconditionFailed, fmt.Sprintf("missing prerequisites: %s", strings.Join(names, ", "))})
	}

	conflict, err := s.hasTimeConflict(ctx, exec, student.ID, section)
	if err != nil {
		return nil, err
	}
	if conflict {
		violations = append(violations, violation{appErrors.ErrConflict, "section conflicts with the student's existing schedule"})
	}

	active, err := s.enrollments.CountActiveBySemester(ctx, exec, student.ID, section.SemesterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count enrollments")
	}
	if active >= s.maxCourses {
		violations = append(violations, violation{appErrors.ErrPreconditionFailed, fmt.Sprintf("student already carries the maximum of %d courses this semester", s.maxCourses)})
	}

	return violations, nil
}

func (s *EnrollmentService) hasTimeConflict(ctx context.Context, exec sqlx.ExtContext, studentID string, section *models.Section) (bool, error) {
	sectionSlots, err := s.timeslots.ListBySection(ctx, section.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section timeslots")
	}
	studentSlots, err := s.timeslots.ListByStudentEnrolled(ctx, exec, studentID, section.SemesterID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student timeslots")
	}
	for _, newSlot := range sectionSlots {
		for _, held := range studentSlots {
			if newSlot.Slot().Overlaps(held.Slot()) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *EnrollmentService) invalidateSchedule(ctx context.Context, studentID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("schedule:student:%s:*", studentID)); err != nil {
		s.logger.Warn("schedule cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func scheduleCacheKey(studentID, semesterID string) string {
	return fmt.Sprintf("schedule:student:%s:%s", studentID, semesterID)
}
