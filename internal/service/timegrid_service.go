package service

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/models"
)

// TimeGridService produces the atomic teaching slots of the college week and
// the ranked slot combinations that satisfy a weekly hour requirement.
type TimeGridService struct {
	maxCombinations int
	logger          *zap.Logger

	mu    sync.Mutex
	atoms []models.GridSlot
}

// NewTimeGridService constructs the grid service. maxCombinations caps the
// number of combinations generated per hour requirement.
func NewTimeGridService(maxCombinations int, logger *zap.Logger) *TimeGridService {
	if maxCombinations <= 0 {
		maxCombinations = 100
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeGridService{maxCombinations: maxCombinations, logger: logger}
}

// AtomicSlots returns every legal one and two hour slot of the week. Slots
// never overlap the lunch break and always fall inside college hours. The
// result is ordered by day, then start, then duration.
func (s *TimeGridService) AtomicSlots() []models.GridSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.atoms == nil {
		s.atoms = buildAtomicSlots()
	}
	out := make([]models.GridSlot, len(s.atoms))
	copy(out, s.atoms)
	return out
}

func buildAtomicSlots() []models.GridSlot {
	var atoms []models.GridSlot
	for day := 1; day <= 5; day++ {
		for start := models.CollegeOpenMinute; start < models.CollegeCloseMinute; start += 60 {
			for _, duration := range []int{60, 120} {
				slot := models.GridSlot{Day: day, StartMinute: start, EndMinute: start + duration}
				if !slot.WithinCollegeHours() || slot.DuringLunch() {
					continue
				}
				atoms = append(atoms, slot)
			}
		}
	}
	sort.Slice(atoms, func(i, j int) bool {
		a, b := atoms[i], atoms[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		return a.EndMinute < b.EndMinute
	})
	return atoms
}

// CombinationsFor returns up to the configured cap of non-overlapping slot
// combinations totalling exactly hoursPerWeek hours, best spread first. The
// spread score of a combination is its count of distinct days, so a schedule
// touching three days outranks one cramming the same hours into two.
func (s *TimeGridService) CombinationsFor(hoursPerWeek int) []models.SlotCombination {
	if hoursPerWeek <= 0 {
		return nil
	}
	atoms := s.AtomicSlots()
	var combos []models.SlotCombination
	var current []models.GridSlot

	var walk func(start, remaining int)
	walk = func(start, remaining int) {
		if len(combos) >= s.maxCombinations {
			return
		}
		if remaining == 0 {
			slots := make([]models.GridSlot, len(current))
			copy(slots, current)
			combos = append(combos, models.SlotCombination{Slots: slots, SpreadScore: spreadScore(slots)})
			return
		}
		for i := start; i < len(atoms); i++ {
			candidate := atoms[i]
			if candidate.DurationHours() > remaining {
				continue
			}
			if overlapsAny(current, candidate) {
				continue
			}
			current = append(current, candidate)
			walk(i+1, remaining-candidate.DurationHours())
			current = current[:len(current)-1]
			if len(combos) >= s.maxCombinations {
				return
			}
		}
	}
	walk(0, hoursPerWeek)

	sort.SliceStable(combos, func(i, j int) bool {
		return combos[i].SpreadScore > combos[j].SpreadScore
	})
	return combos
}

func overlapsAny(slots []models.GridSlot, candidate models.GridSlot) bool {
	for _, slot := range slots {
		if slot.Overlaps(candidate) {
			return true
		}
	}
	return false
}

func spreadScore(slots []models.GridSlot) int {
	days := map[int]struct{}{}
	for _, slot := range slots {
		days[slot.Day] = struct{}{}
	}
	return len(days)
}

// ComboCache memoises slot combinations for the lifetime of one scheduling
// run. It is not safe for concurrent use; each run owns its own cache.
type ComboCache struct {
	grid    *TimeGridService
	byHours map[int][]models.SlotCombination
}

// NewComboCache constructs an empty cache over the given grid.
func NewComboCache(grid *TimeGridService) *ComboCache {
	return &ComboCache{grid: grid, byHours: map[int][]models.SlotCombination{}}
}

// For returns the combinations for the hour requirement, computing them on
// first use.
func (c *ComboCache) For(hoursPerWeek int) []models.SlotCombination {
	if combos, ok := c.byHours[hoursPerWeek]; ok {
		return combos
	}
	combos := c.grid.CombinationsFor(hoursPerWeek)
	c.byHours[hoursPerWeek] = combos
	return combos
}
