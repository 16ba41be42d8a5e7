package models

import (
	"fmt"
	"time"
)

// Institutional day boundaries expressed as minutes since midnight.
const (
	CollegeOpenMinute  = 9 * 60
	CollegeCloseMinute = 17 * 60
	LunchStartMinute   = 12 * 60
	LunchEndMinute     = 13 * 60
)

// Weekday names indexed by ISO day number (1 = Monday).
var dayNames = map[int]string{
	1: "MONDAY",
	2: "TUESDAY",
	3: "WEDNESDAY",
	4: "THURSDAY",
	5: "FRIDAY",
}

// DayName returns the uppercase weekday name for an ISO day index.
func DayName(day int) string {
	if name, ok := dayNames[day]; ok {
		return name
	}
	return fmt.Sprintf("DAY_%d", day)
}

// MinuteClock renders minutes since midnight as HH:MM.
func MinuteClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// GridSlot is an atomic weekly slot candidate used by the schedule
// generator before anything is persisted.
type GridSlot struct {
	Day         int `json:"day"`
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// DurationHours returns the slot length in whole hours.
func (s GridSlot) DurationHours() int {
	return (s.EndMinute - s.StartMinute) / 60
}

// Overlaps reports whether two slots intersect on the same day.
func (s GridSlot) Overlaps(other GridSlot) bool {
	if s.Day != other.Day {
		return false
	}
	return s.StartMinute < other.EndMinute && s.EndMinute > other.StartMinute
}

// DuringLunch reports whether the slot intersects the lunch window.
func (s GridSlot) DuringLunch() bool {
	return s.StartMinute < LunchEndMinute && s.EndMinute > LunchStartMinute
}

// WithinCollegeHours reports whether the slot lies inside institutional hours.
func (s GridSlot) WithinCollegeHours() bool {
	return s.StartMinute >= CollegeOpenMinute && s.EndMinute <= CollegeCloseMinute
}

// Validate enforces the invariants every persisted timeslot must satisfy.
func (s GridSlot) Validate() error {
	if s.Day < 1 || s.Day > 5 {
		return fmt.Errorf("day of week must be 1-5 (Monday-Friday), got %d", s.Day)
	}
	if s.EndMinute <= s.StartMinute {
		return fmt.Errorf("end time %s must be after start time %s", MinuteClock(s.EndMinute), MinuteClock(s.StartMinute))
	}
	if !s.WithinCollegeHours() {
		return fmt.Errorf("timeslot %s-%s outside college hours", MinuteClock(s.StartMinute), MinuteClock(s.EndMinute))
	}
	if s.DuringLunch() {
		return fmt.Errorf("timeslot %s-%s overlaps lunch break", MinuteClock(s.StartMinute), MinuteClock(s.EndMinute))
	}
	return nil
}

func (s GridSlot) String() string {
	return fmt.Sprintf("%s %s-%s", DayName(s.Day), MinuteClock(s.StartMinute), MinuteClock(s.EndMinute))
}

// SlotCombination is a non-overlapping set of grid slots covering a weekly
// hour requirement, ranked by how many distinct days it touches.
type SlotCombination struct {
	Slots       []GridSlot `json:"slots"`
	SpreadScore int        `json:"spread_score"`
}

// SectionTimeslot is a persisted weekly meeting of a section.
type SectionTimeslot struct {
	ID          string    `db:"id" json:"id"`
	SectionID   string    `db:"section_id" json:"section_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	StartMinute int       `db:"start_minute" json:"start_minute"`
	EndMinute   int       `db:"end_minute" json:"end_minute"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Slot converts the persisted row back into grid form.
func (t SectionTimeslot) Slot() GridSlot {
	return GridSlot{Day: t.DayOfWeek, StartMinute: t.StartMinute, EndMinute: t.EndMinute}
}
