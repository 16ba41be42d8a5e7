package service

import (
	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// Occupancy is the in-memory working set of slots claimed during a scheduling
// run. It is seeded from persisted assignments and updated as the run places
// sections, so within-run conflict checks never hit the database.
type Occupancy struct {
	teacherSlots map[string][]models.GridSlot
	roomSlots    map[string][]models.GridSlot
}

// NewOccupancy constructs an empty working set.
func NewOccupancy() *Occupancy {
	return &Occupancy{
		teacherSlots: map[string][]models.GridSlot{},
		roomSlots:    map[string][]models.GridSlot{},
	}
}

// SeedTeacher records slots a teacher already holds.
func (o *Occupancy) SeedTeacher(teacherID string, slots []models.SectionTimeslot) {
	for _, slot := range slots {
		o.teacherSlots[teacherID] = append(o.teacherSlots[teacherID], slot.Slot())
	}
}

// SeedRoom records slots a classroom is already booked for.
func (o *Occupancy) SeedRoom(roomID string, slots []models.SectionTimeslot) {
	for _, slot := range slots {
		o.roomSlots[roomID] = append(o.roomSlots[roomID], slot.Slot())
	}
}

// ClaimTeacher marks the slot as held by the teacher.
func (o *Occupancy) ClaimTeacher(teacherID string, slot models.GridSlot) {
	o.teacherSlots[teacherID] = append(o.teacherSlots[teacherID], slot)
}

// ClaimRoom marks the slot as held by the classroom.
func (o *Occupancy) ClaimRoom(roomID string, slot models.GridSlot) {
	o.roomSlots[roomID] = append(o.roomSlots[roomID], slot)
}

// TeacherDailyMinutes totals the minutes the teacher already teaches that day.
func (o *Occupancy) TeacherDailyMinutes(teacherID string, day int) int {
	total := 0
	for _, slot := range o.teacherSlots[teacherID] {
		if slot.Day == day {
			total += slot.EndMinute - slot.StartMinute
		}
	}
	return total
}

// ConstraintService answers whether a teacher or classroom can take a slot
// given the working set of the current run.
type ConstraintService struct {
	maxTeacherDailyMinutes int
	logger                 *zap.Logger
}

// NewConstraintService constructs the service. maxTeacherDailyHours bounds a
// teacher's load per day.
func NewConstraintService(maxTeacherDailyHours int, logger *zap.Logger) *ConstraintService {
	if maxTeacherDailyHours <= 0 {
		maxTeacherDailyHours = 4
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConstraintService{maxTeacherDailyMinutes: maxTeacherDailyHours * 60, logger: logger}
}

// TeacherCanTake reports whether the teacher is free for the slot and would
// stay within the daily teaching cap after taking it.
func (s *ConstraintService) TeacherCanTake(occ *Occupancy, teacherID string, slot models.GridSlot) bool {
	for _, held := range occ.teacherSlots[teacherID] {
		if held.Overlaps(slot) {
			return false
		}
	}
	minutes := occ.TeacherDailyMinutes(teacherID, slot.Day) + (slot.EndMinute - slot.StartMinute)
	return minutes <= s.maxTeacherDailyMinutes
}

// RoomCanTake reports whether the classroom is free for the slot.
func (s *ConstraintService) RoomCanTake(occ *Occupancy, roomID string, slot models.GridSlot) bool {
	for _, held := range occ.roomSlots[roomID] {
		if held.Overlaps(slot) {
			return false
		}
	}
	return true
}
