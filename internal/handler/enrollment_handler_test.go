package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/atul951/trinity-scheduler-api/internal/dto"
	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type enrollerMock struct {
	captured  dto.EnrollRequest
	enrollErr error
}

func (m *enrollerMock) Enroll(ctx context.Context, req dto.EnrollRequest) (*models.Enrollment, error) {
	m.captured = req
	if m.enrollErr != nil {
		return nil, m.enrollErr
	}
	return &models.Enrollment{ID: "enr-1", StudentID: req.StudentID, SectionID: req.SectionID, Status: models.EnrollmentStatusEnrolled}, nil
}

func (m *enrollerMock) Validate(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollmentValidationResult, error) {
	result := &dto.EnrollmentValidationResult{Valid: true}
	result.AddError("section overlaps an existing enrollment")
	return result, nil
}

func (m *enrollerMock) Drop(ctx context.Context, req dto.DropRequest) (*models.Enrollment, error) {
	return &models.Enrollment{ID: "enr-1", Status: models.EnrollmentStatusDropped}, nil
}

func (m *enrollerMock) StudentSchedule(ctx context.Context, studentID, semesterID string) (*dto.StudentScheduleResponse, error) {
	return &dto.StudentScheduleResponse{StudentID: studentID, SemesterID: semesterID}, nil
}

func TestEnrollSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollerMock{}
	handler := &EnrollmentHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader([]byte(`{"student_id":"stu-1","section_id":"sec-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Enroll(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, "stu-1", mockSvc.captured.StudentID)
	require.Equal(t, "sec-1", mockSvc.captured.SectionID)
}

func TestEnrollMalformedPayload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &EnrollmentHandler{service: &enrollerMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader([]byte(`{"student_id":`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Enroll(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEnrollConflictStatusPropagates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &enrollerMock{enrollErr: appErrors.Clone(appErrors.ErrConflict, "already enrolled in this section")}
	handler := &EnrollmentHandler{service: mockSvc}
	req, _ := http.NewRequest(http.MethodPost, "/enrollments", bytes.NewReader([]byte(`{"student_id":"stu-1","section_id":"sec-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Enroll(c)

	require.Equal(t, http.StatusConflict, w.Code)
	require.Contains(t, w.Body.String(), "already enrolled in this section")
}

func TestValidateReturnsViolations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &EnrollmentHandler{service: &enrollerMock{}}
	req, _ := http.NewRequest(http.MethodPost, "/enrollments/validate", bytes.NewReader([]byte(`{"student_id":"stu-1","section_id":"sec-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Validate(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "section overlaps")
}

func TestStudentScheduleRequiresSemester(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &EnrollmentHandler{service: &enrollerMock{}}
	req, _ := http.NewRequest(http.MethodGet, "/students/stu-1/schedule", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.StudentSchedule(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentScheduleSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := &EnrollmentHandler{service: &enrollerMock{}}
	req, _ := http.NewRequest(http.MethodGet, "/students/stu-1/schedule?semesterId=sem-1", nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "stu-1"}}

	handler.StudentSchedule(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "sem-1")
}
