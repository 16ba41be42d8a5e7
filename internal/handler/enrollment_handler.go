package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atul951/trinity-scheduler-api/internal/dto"
	"github.com/atul951/trinity-scheduler-api/internal/models"
	"github.com/atul951/trinity-scheduler-api/internal/service"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
	"github.com/atul951/trinity-scheduler-api/pkg/response"
)

type enroller interface {
	Enroll(ctx context.Context, req dto.EnrollRequest) (*models.Enrollment, error)
	Validate(ctx context.Context, req dto.EnrollRequest) (*dto.EnrollmentValidationResult, error)
	Drop(ctx context.Context, req dto.DropRequest) (*models.Enrollment, error)
	StudentSchedule(ctx context.Context, studentID, semesterID string) (*dto.StudentScheduleResponse, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	service enroller
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(svc *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc}
}

// Enroll godoc
// @Summary Enroll a student into a section
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}
	enrollment, err := h.service.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Validate godoc
// @Summary Dry-run enrollment validation
// @Description Runs every enrollment check without writing and reports all violations.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/validate [post]
func (h *EnrollmentHandler) Validate(c *gin.Context) {
	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}
	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Drop godoc
// @Summary Drop a student's active enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.DropRequest true "Drop payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/drop [post]
func (h *EnrollmentHandler) Drop(c *gin.Context) {
	var req dto.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid drop payload"))
		return
	}
	enrollment, err := h.service.Drop(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// StudentSchedule godoc
// @Summary Get a student's weekly schedule for a semester
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Param semesterId query string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/schedule [get]
func (h *EnrollmentHandler) StudentSchedule(c *gin.Context) {
	semesterID := c.Query("semesterId")
	if semesterID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semesterId is required"))
		return
	}
	schedule, err := h.service.StudentSchedule(c.Request.Context(), c.Param("id"), semesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule, nil)
}
