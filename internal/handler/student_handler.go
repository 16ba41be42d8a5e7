package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atul951/trinity-scheduler-api/internal/models"
	"github.com/atul951/trinity-scheduler-api/internal/service"
	"github.com/atul951/trinity-scheduler-api/pkg/response"
)

type studentProvider interface {
	Get(ctx context.Context, id string) (*models.Student, error)
	Progress(ctx context.Context, studentID string) (*models.StudentProgress, error)
}

type courseProvider interface {
	Get(ctx context.Context, id string) (*service.CourseWithPrerequisites, error)
}

// StudentHandler exposes student and catalog lookup endpoints.
type StudentHandler struct {
	students studentProvider
	courses  courseProvider
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(students *service.StudentService, courses *service.CourseService) *StudentHandler {
	return &StudentHandler{students: students, courses: courses}
}

// Get godoc
// @Summary Get a student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Progress godoc
// @Summary Get a student's graduation progress
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/progress [get]
func (h *StudentHandler) Progress(c *gin.Context) {
	progress, err := h.students.Progress(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, progress, nil)
}

// GetCourse godoc
// @Summary Get a course with its prerequisite chain
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *StudentHandler) GetCourse(c *gin.Context) {
	course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}
