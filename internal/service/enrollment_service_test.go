package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atul951/trinity-scheduler-api/internal/dto"
	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type enrollmentRepoMock struct {
	active       map[string]*models.Enrollment
	courseActive map[string]bool
	semesterLoad map[string]int
	created      []models.Enrollment
	updated      []models.Enrollment
	details      []models.EnrollmentDetail
}

func enrollKey(studentID, sectionID string) string { return studentID + ":" + sectionID }

func (m *enrollmentRepoMock) Create(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	enrollment.ID = "enr-new"
	enrollment.EnrolledAt = time.Now()
	m.created = append(m.created, *enrollment)
	return nil
}

func (m *enrollmentRepoMock) FindActive(ctx context.Context, exec sqlx.ExtContext, studentID, sectionID string) (*models.Enrollment, error) {
	enrollment, ok := m.active[enrollKey(studentID, sectionID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *enrollment
	return &copied, nil
}

func (m *enrollmentRepoMock) ExistsActiveForCourse(ctx context.Context, exec sqlx.ExtContext, studentID, courseID, semesterID string) (bool, error) {
	return m.courseActive[studentID+":"+courseID], nil
}

func (m *enrollmentRepoMock) CountActiveBySemester(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) (int, error) {
	return m.semesterLoad[studentID], nil
}

func (m *enrollmentRepoMock) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, enrollment *models.Enrollment) error {
	m.updated = append(m.updated, *enrollment)
	if enrollment.Status == models.EnrollmentStatusDropped {
		delete(m.active, enrollKey(enrollment.StudentID, enrollment.SectionID))
	}
	return nil
}

func (m *enrollmentRepoMock) ListActiveByStudentAndSemester(ctx context.Context, studentID, semesterID string) ([]models.EnrollmentDetail, error) {
	return m.details, nil
}

type enrollSectionReaderMock struct {
	sections map[string]*models.Section
	enrolled map[string]int
}

func (m *enrollSectionReaderMock) FindByID(ctx context.Context, id string) (*models.Section, error) {
	section, ok := m.sections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return section, nil
}

func (m *enrollSectionReaderMock) CountEnrolled(ctx context.Context, exec sqlx.ExtContext, sectionID string) (int, error) {
	return m.enrolled[sectionID], nil
}

type studentReaderMock struct {
	students map[string]*models.Student
}

func (m *studentReaderMock) FindByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

type enrollTimeslotReaderMock struct {
	bySection map[string][]models.SectionTimeslot
	byStudent []models.SectionTimeslot
}

func (m *enrollTimeslotReaderMock) ListBySection(ctx context.Context, sectionID string) ([]models.SectionTimeslot, error) {
	return m.bySection[sectionID], nil
}

func (m *enrollTimeslotReaderMock) ListByStudentEnrolled(ctx context.Context, exec sqlx.ExtContext, studentID, semesterID string) ([]models.SectionTimeslot, error) {
	return m.byStudent, nil
}

type enrollmentFixture struct {
	service     *EnrollmentService
	enrollments *enrollmentRepoMock
	sections    *enrollSectionReaderMock
	timeslots   *enrollTimeslotReaderMock
	history     *historyReaderMock
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	tx, mock := newTxProviderMock(t)
	mock.MatchExpectationsInOrder(false)
	// Pipeline outcomes vary per test; transaction bookkeeping is incidental,
	// so allow a handful of begin/commit/rollback calls in any order.
	for i := 0; i < 3; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
		mock.ExpectRollback()
	}

	enrollments := &enrollmentRepoMock{
		active:       map[string]*models.Enrollment{},
		courseActive: map[string]bool{},
		semesterLoad: map[string]int{},
	}
	sections := &enrollSectionReaderMock{
		sections: map[string]*models.Section{
			"sec-1": {ID: "sec-1", CourseID: "c-2", SemesterID: "sem-1", Capacity: 10, Status: models.SectionStatusScheduled},
		},
		enrolled: map[string]int{},
	}
	timeslots := &enrollTimeslotReaderMock{
		bySection: map[string][]models.SectionTimeslot{
			"sec-1": {{SectionID: "sec-1", DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 10 * 60}},
		},
	}
	history := &historyReaderMock{passed: map[string]bool{"c-1": true}}

	courses := &courseReaderMock{courses: map[string]*models.Course{
		"c-1": {ID: "c-1", Code: "MATH101"},
		"c-2": {ID: "c-2", Code: "MATH201", PrerequisiteID: strPtr("c-1")},
	}}

	service := NewEnrollmentService(EnrollmentDeps{
		Tx:          tx,
		Enrollments: enrollments,
		Sections:    sections,
		Students: &studentReaderMock{students: map[string]*models.Student{
			"stu-1": {ID: "stu-1", FirstName: "Ada", LastName: "Byron", GradeLevel: 9, Status: models.StudentStatusActive},
			"stu-2": {ID: "stu-2", Status: "inactive"},
		}},
		Courses:    courses,
		Timeslots:  timeslots,
		Prereqs:    NewPrerequisiteService(courses, history, nil),
		MaxCourses: 5,
	})
	f := &enrollmentFixture{
		service:     service,
		enrollments: enrollments,
		sections:    sections,
		timeslots:   timeslots,
		history:     history,
	}
	// Validate needs a non-transactional exec; the mocks never touch it.
	f.service.db = tx.db
	return f
}

func TestEnrollSuccess(t *testing.T) {
	f := newEnrollmentFixture(t)

	enrollment, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
	require.Len(t, f.enrollments.created, 1)
}

func TestEnrollWaitlistedWhenSectionFull(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.sections.enrolled["sec-1"] = 10

	enrollment, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusWaitlisted, enrollment.Status)
}

func TestEnrollDuplicateSectionConflict(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enrollments.active[enrollKey("stu-1", "sec-1")] = &models.Enrollment{
		ID: "enr-1", StudentID: "stu-1", SectionID: "sec-1", Status: models.EnrollmentStatusEnrolled,
	}

	_, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.enrollments.created)
}

func TestEnrollDuplicateCourseConflict(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enrollments.courseActive["stu-1:c-2"] = true

	_, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollMissingPrerequisite(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.history.passed = map[string]bool{}

	_, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "MATH101")
}

func TestEnrollTimeConflict(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.timeslots.byStudent = []models.SectionTimeslot{
		{SectionID: "sec-other", DayOfWeek: 1, StartMinute: 9*60 + 30, EndMinute: 10*60 + 30},
	}

	_, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestEnrollSemesterLoadCap(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enrollments.semesterLoad["stu-1"] = 5

	_, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollInactiveStudentRejected(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-2", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestEnrollUnknownStudentNotFound(t *testing.T) {
	f := newEnrollmentFixture(t)

	_, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "ghost", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestEnrollUnscheduledSectionRejected(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.sections.sections["sec-2"] = &models.Section{
		ID: "sec-2", CourseID: "c-2", SemesterID: "sem-1", Capacity: 10, Status: models.SectionStatusUnscheduled,
	}

	_, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestValidateAccumulatesEveryViolation(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.history.passed = map[string]bool{}
	f.enrollments.semesterLoad["stu-1"] = 5
	f.timeslots.byStudent = []models.SectionTimeslot{
		{DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 10 * 60},
	}

	result, err := f.service.Validate(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err, "dry-run must not fail on violations")
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 3, "prerequisite, time conflict and load cap should all be reported")
}

func TestValidateWarnsWhenSectionFull(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.sections.enrolled["sec-1"] = 10

	result, err := f.service.Validate(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)
	assert.True(t, result.Valid, "a full section is a warning, not an error")
	require.Len(t, result.Warnings, 1)
	assert.Empty(t, result.Errors)
}

func TestDropThenDropAgain(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enrollments.active[enrollKey("stu-1", "sec-1")] = &models.Enrollment{
		ID: "enr-1", StudentID: "stu-1", SectionID: "sec-1", Status: models.EnrollmentStatusEnrolled,
	}

	dropped, err := f.service.Drop(context.Background(), dto.DropRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, dropped.Status)
	require.NotNil(t, dropped.DroppedAt)

	_, err = f.service.Drop(context.Background(), dto.DropRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestReEnrollAfterDropAllowed(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enrollments.active[enrollKey("stu-1", "sec-1")] = &models.Enrollment{
		ID: "enr-1", StudentID: "stu-1", SectionID: "sec-1", Status: models.EnrollmentStatusEnrolled,
	}

	_, err := f.service.Drop(context.Background(), dto.DropRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)

	enrollment, err := f.service.Enroll(context.Background(), dto.EnrollRequest{StudentID: "stu-1", SectionID: "sec-1"})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusEnrolled, enrollment.Status)
}

func TestStudentScheduleBuildsEntries(t *testing.T) {
	f := newEnrollmentFixture(t)
	f.enrollments.details = []models.EnrollmentDetail{
		{
			Enrollment: models.Enrollment{ID: "enr-1", StudentID: "stu-1", SectionID: "sec-1", Status: models.EnrollmentStatusEnrolled},
			CourseCode: "MATH201",
			CourseName: "Algebra II",
		},
	}

	schedule, err := f.service.StudentSchedule(context.Background(), "stu-1", "sem-1")
	require.NoError(t, err)
	require.Len(t, schedule.Entries, 1)
	assert.Equal(t, "MATH201", schedule.Entries[0].CourseCode)
	require.Len(t, schedule.Entries[0].Timeslots, 1)
}
