package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atul951/trinity-scheduler-api/internal/dto"
	"github.com/atul951/trinity-scheduler-api/internal/models"
	"github.com/atul951/trinity-scheduler-api/internal/service"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
	"github.com/atul951/trinity-scheduler-api/pkg/response"
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.ScheduleRunResponse, error)
	GridPreview(hoursPerWeek int) (*dto.GridPreviewResponse, error)
}

type semesterReverter interface {
	Revert(ctx context.Context, semesterID string) (int64, error)
}

type sectionLister interface {
	Get(ctx context.Context, id string) (*models.SectionDetail, []models.SectionTimeslot, error)
	List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, error)
}

type timetableExporter interface {
	Timetable(ctx context.Context, semesterID string, format service.ExportFormat) (*service.ExportResult, error)
}

type exportArchiver interface {
	Store(semesterID string, result *service.ExportResult) (string, time.Time, error)
	Download(token string) (*service.ExportResult, error)
}

// ScheduleHandler exposes schedule generation and section endpoints.
type ScheduleHandler struct {
	scheduler scheduleGenerator
	semesters semesterReverter
	sections  sectionLister
	exports   timetableExporter
	archive   exportArchiver
}

// NewScheduleHandler constructs the handler. The archive is optional and may
// be nil when export archiving is disabled.
func NewScheduleHandler(scheduler *service.SchedulerService, semesters *service.SemesterService, sections *service.SectionService, exports *service.ExportService, archive *service.ExportArchiveService) *ScheduleHandler {
	h := &ScheduleHandler{scheduler: scheduler, semesters: semesters, sections: sections, exports: exports}
	if archive != nil {
		h.archive = archive
	}
	return h
}

// Generate godoc
// @Summary Run schedule generation for a semester
// @Tags Scheduler
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generate schedule payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	result, err := h.scheduler.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Revert godoc
// @Summary Delete a semester's generated schedule
// @Tags Scheduler
// @Produce json
// @Param semesterId path string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/{semesterId} [delete]
func (h *ScheduleHandler) Revert(c *gin.Context) {
	removed, err := h.semesters.Revert(c.Request.Context(), c.Param("semesterId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"sectionsRemoved": removed}, nil)
}

// GridPreview godoc
// @Summary Preview ranked timeslot combinations for a weekly hour target
// @Tags Scheduler
// @Produce json
// @Param hours query int true "Hours per week"
// @Success 200 {object} response.Envelope
// @Router /schedule/grid [get]
func (h *ScheduleHandler) GridPreview(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "0"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "hours must be an integer"))
		return
	}
	result, err := h.scheduler.GridPreview(hours)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// ListSections godoc
// @Summary List sections with optional filters
// @Tags Sections
// @Produce json
// @Param semesterId query string false "Semester ID"
// @Param courseId query string false "Course ID"
// @Param status query string false "Section status"
// @Success 200 {object} response.Envelope
// @Router /sections [get]
func (h *ScheduleHandler) ListSections(c *gin.Context) {
	filter := models.SectionFilter{
		SemesterID: c.Query("semesterId"),
		CourseID:   c.Query("courseId"),
		Status:     models.SectionStatus(c.Query("status")),
	}
	sections, err := h.sections.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// GetSection godoc
// @Summary Get a section with its weekly timeslots
// @Tags Sections
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id} [get]
func (h *ScheduleHandler) GetSection(c *gin.Context) {
	detail, slots, err := h.sections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"section": detail, "timeslots": slots}, nil)
}

// ExportTimetable godoc
// @Summary Export a semester's timetable as CSV or PDF
// @Tags Scheduler
// @Produce text/csv
// @Produce application/pdf
// @Param semesterId path string true "Semester ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /schedule/{semesterId}/export [get]
func (h *ScheduleHandler) ExportTimetable(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	semesterID := c.Param("semesterId")
	result, err := h.exports.Timetable(c.Request.Context(), semesterID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	if h.archive != nil {
		token, expiresAt, err := h.archive.Store(semesterID, result)
		if err == nil {
			c.Header("X-Download-Token", token)
			c.Header("X-Download-Expires", expiresAt.UTC().Format(time.RFC3339))
		}
	}
	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// DownloadExport godoc
// @Summary Download an archived timetable export by signed token
// @Tags Scheduler
// @Produce text/csv
// @Produce application/pdf
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/{token} [get]
func (h *ScheduleHandler) DownloadExport(c *gin.Context) {
	if h.archive == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "export archive disabled"))
		return
	}
	result, err := h.archive.Download(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.FileName)
	c.Data(http.StatusOK, result.ContentType, result.Data)
}
