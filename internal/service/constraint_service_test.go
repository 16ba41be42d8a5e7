package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

func TestConstraintTeacherOverlapRejected(t *testing.T) {
	svc := NewConstraintService(4, nil)
	occ := NewOccupancy()
	occ.ClaimTeacher("t-1", models.GridSlot{Day: 1, StartMinute: 9 * 60, EndMinute: 11 * 60})

	assert.False(t, svc.TeacherCanTake(occ, "t-1", models.GridSlot{Day: 1, StartMinute: 10 * 60, EndMinute: 11 * 60}))
	assert.True(t, svc.TeacherCanTake(occ, "t-1", models.GridSlot{Day: 1, StartMinute: 11 * 60, EndMinute: 12 * 60}))
	assert.True(t, svc.TeacherCanTake(occ, "t-1", models.GridSlot{Day: 2, StartMinute: 9 * 60, EndMinute: 11 * 60}))
	assert.True(t, svc.TeacherCanTake(occ, "t-2", models.GridSlot{Day: 1, StartMinute: 10 * 60, EndMinute: 11 * 60}))
}

func TestConstraintTeacherDailyCap(t *testing.T) {
	svc := NewConstraintService(4, nil)
	occ := NewOccupancy()
	occ.ClaimTeacher("t-1", models.GridSlot{Day: 3, StartMinute: 9 * 60, EndMinute: 11 * 60})
	occ.ClaimTeacher("t-1", models.GridSlot{Day: 3, StartMinute: 13 * 60, EndMinute: 14 * 60})

	// Three hours held, one more fits, two do not.
	assert.True(t, svc.TeacherCanTake(occ, "t-1", models.GridSlot{Day: 3, StartMinute: 14 * 60, EndMinute: 15 * 60}))
	assert.False(t, svc.TeacherCanTake(occ, "t-1", models.GridSlot{Day: 3, StartMinute: 14 * 60, EndMinute: 16 * 60}))
	// A different day starts a fresh budget.
	assert.True(t, svc.TeacherCanTake(occ, "t-1", models.GridSlot{Day: 4, StartMinute: 14 * 60, EndMinute: 16 * 60}))
}

func TestConstraintRoomAvailability(t *testing.T) {
	svc := NewConstraintService(4, nil)
	occ := NewOccupancy()
	occ.ClaimRoom("r-1", models.GridSlot{Day: 2, StartMinute: 10 * 60, EndMinute: 12 * 60})

	assert.False(t, svc.RoomCanTake(occ, "r-1", models.GridSlot{Day: 2, StartMinute: 11 * 60, EndMinute: 12 * 60}))
	assert.True(t, svc.RoomCanTake(occ, "r-1", models.GridSlot{Day: 2, StartMinute: 13 * 60, EndMinute: 14 * 60}))
	assert.True(t, svc.RoomCanTake(occ, "r-2", models.GridSlot{Day: 2, StartMinute: 11 * 60, EndMinute: 12 * 60}))
}

func TestOccupancySeedFromPersistedSlots(t *testing.T) {
	svc := NewConstraintService(4, nil)
	occ := NewOccupancy()
	occ.SeedTeacher("t-1", []models.SectionTimeslot{
		{DayOfWeek: 1, StartMinute: 9 * 60, EndMinute: 10 * 60},
		{DayOfWeek: 1, StartMinute: 10 * 60, EndMinute: 11 * 60},
	})

	assert.Equal(t, 120, occ.TeacherDailyMinutes("t-1", 1))
	assert.False(t, svc.TeacherCanTake(occ, "t-1", models.GridSlot{Day: 1, StartMinute: 9 * 60, EndMinute: 11 * 60}))
}
