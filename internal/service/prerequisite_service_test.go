package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type courseReaderMock struct {
	courses map[string]*models.Course
}

func (m *courseReaderMock) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := m.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return course, nil
}

type historyReaderMock struct {
	passed map[string]bool
}

func (m *historyReaderMock) HasPassed(ctx context.Context, studentID, courseID string) (bool, error) {
	return m.passed[courseID], nil
}

func strPtr(s string) *string { return &s }

func chainedCourses() *courseReaderMock {
	return &courseReaderMock{courses: map[string]*models.Course{
		"c-1": {ID: "c-1", Code: "MATH101"},
		"c-2": {ID: "c-2", Code: "MATH201", PrerequisiteID: strPtr("c-1")},
		"c-3": {ID: "c-3", Code: "MATH301", PrerequisiteID: strPtr("c-2")},
	}}
}

func TestPrerequisiteChainWalksToRoot(t *testing.T) {
	svc := NewPrerequisiteService(chainedCourses(), &historyReaderMock{}, nil)

	chain, err := svc.Chain(context.Background(), "c-3")
	require.NoError(t, err)
	require.Len(t, chain, 3, "chain starts at the course itself")
	assert.Equal(t, "c-3", chain[0].ID)
	assert.Equal(t, "c-2", chain[1].ID)
	assert.Equal(t, "c-1", chain[2].ID)
}

func TestPrerequisiteChainOfRootCourse(t *testing.T) {
	svc := NewPrerequisiteService(chainedCourses(), &historyReaderMock{}, nil)

	chain, err := svc.Chain(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, chain, 1)
	assert.Equal(t, "c-1", chain[0].ID)
}

func TestPrerequisiteMissingSkipsTheCourseItself(t *testing.T) {
	// "stu-1" never took c-3; only the unpassed prerequisites may surface.
	svc := NewPrerequisiteService(chainedCourses(), &historyReaderMock{}, nil)

	missing, err := svc.Missing(context.Background(), "stu-1", "c-3")
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "c-2", missing[0].ID)
	assert.Equal(t, "c-1", missing[1].ID)
}

func TestPrerequisiteMissingReportsUnpassed(t *testing.T) {
	history := &historyReaderMock{passed: map[string]bool{"c-1": true}}
	svc := NewPrerequisiteService(chainedCourses(), history, nil)

	missing, err := svc.Missing(context.Background(), "stu-1", "c-3")
	require.NoError(t, err)
	require.Len(t, missing, 1)
	assert.Equal(t, "c-2", missing[0].ID)

	met, err := svc.HasMet(context.Background(), "stu-1", "c-3")
	require.NoError(t, err)
	assert.False(t, met)
}

func TestPrerequisiteMetWhenWholeChainPassed(t *testing.T) {
	history := &historyReaderMock{passed: map[string]bool{"c-1": true, "c-2": true}}
	svc := NewPrerequisiteService(chainedCourses(), history, nil)

	met, err := svc.HasMet(context.Background(), "stu-1", "c-3")
	require.NoError(t, err)
	assert.True(t, met)
}

func TestPrerequisiteCycleFailsClosed(t *testing.T) {
	courses := &courseReaderMock{courses: map[string]*models.Course{
		"c-1": {ID: "c-1", PrerequisiteID: strPtr("c-2")},
		"c-2": {ID: "c-2", PrerequisiteID: strPtr("c-1")},
	}}
	svc := NewPrerequisiteService(courses, &historyReaderMock{}, nil)

	_, err := svc.Chain(context.Background(), "c-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErr.Code)
}

func TestPrerequisiteMissingCatalogEntryIsConfigurationError(t *testing.T) {
	courses := &courseReaderMock{courses: map[string]*models.Course{
		"c-1": {ID: "c-1", PrerequisiteID: strPtr("ghost")},
	}}
	svc := NewPrerequisiteService(courses, &historyReaderMock{}, nil)

	_, err := svc.Chain(context.Background(), "c-1")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrConfiguration.Code, appErr.Code)
}

func TestPrerequisiteUnknownCourseNotFound(t *testing.T) {
	svc := NewPrerequisiteService(chainedCourses(), &historyReaderMock{}, nil)

	_, err := svc.Chain(context.Background(), "ghost")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
