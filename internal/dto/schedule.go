package dto

import "github.com/atul951/trinity-scheduler-api/internal/models"

// GenerateScheduleRequest triggers a semester scheduling run.
type GenerateScheduleRequest struct {
	SemesterID string `json:"semester_id" validate:"required"`
}

// ScheduleRunResponse reports the outcome of a scheduling run.
type ScheduleRunResponse struct {
	SemesterID string                 `json:"semester_id"`
	Scheduled  int                    `json:"scheduled"`
	Failed     int                    `json:"failed"`
	Sections   []models.SectionDetail `json:"sections"`
}

// GridCombination is one ranked set of non-overlapping slots.
type GridCombination struct {
	SpreadScore int               `json:"spread_score"`
	Slots       []models.GridSlot `json:"slots"`
}

// GridPreviewResponse returns ranked slot combinations for a weekly-hour
// target.
type GridPreviewResponse struct {
	HoursPerWeek int               `json:"hours_per_week"`
	Combinations []GridCombination `json:"combinations"`
}
