package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/atul951/trinity-scheduler-api/internal/dto"
	"github.com/atul951/trinity-scheduler-api/internal/models"
	appErrors "github.com/atul951/trinity-scheduler-api/pkg/errors"
)

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type schedulerSectionRepository interface {
	ListUnscheduledBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) ([]models.Section, error)
	CountScheduledBySemester(ctx context.Context, exec sqlx.ExtContext, semesterID string) (int, error)
	UpdateAssignment(ctx context.Context, exec sqlx.ExtContext, section *models.Section) error
	List(ctx context.Context, filter models.SectionFilter) ([]models.SectionDetail, error)
}

type schedulerTimeslotRepository interface {
	Create(ctx context.Context, exec sqlx.ExtContext, slot *models.SectionTimeslot) error
	ListByTeacherAndSemester(ctx context.Context, exec sqlx.ExtContext, teacherID, semesterID string) ([]models.SectionTimeslot, error)
	ListByClassroomAndSemester(ctx context.Context, exec sqlx.ExtContext, classroomID, semesterID string) ([]models.SectionTimeslot, error)
}

type semesterReader interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

type specializationReader interface {
	FindByID(ctx context.Context, id string) (*models.Specialization, error)
}

type teacherLister interface {
	ListBySpecialization(ctx context.Context, specializationID string) ([]models.Teacher, error)
}

type classroomLister interface {
	ListByRoomType(ctx context.Context, roomTypeID string) ([]models.Classroom, error)
}

// SchedulerService runs demand-driven schedule generation for a semester.
// One run is one database transaction: either every placement of the run
// lands or none do.
type SchedulerService struct {
	tx              txProvider
	semesters       semesterReader
	courses         prereqCourseReader
	specializations specializationReader
	teachers        teacherLister
	classrooms      classroomLister
	sections        schedulerSectionRepository
	timeslots       schedulerTimeslotRepository
	demand          *DemandService
	sectionSvc      *SectionService
	constraints     *ConstraintService
	grid            *TimeGridService
	metrics         *MetricsService
	validator       *validator.Validate
	logger          *zap.Logger
}

// SchedulerDeps bundles the collaborators of SchedulerService.
type SchedulerDeps struct {
	Tx              txProvider
	Semesters       semesterReader
	Courses         prereqCourseReader
	Specializations specializationReader
	Teachers        teacherLister
	Classrooms      classroomLister
	Sections        schedulerSectionRepository
	Timeslots       schedulerTimeslotRepository
	Demand          *DemandService
	SectionSvc      *SectionService
	Constraints     *ConstraintService
	Grid            *TimeGridService
	Metrics         *MetricsService
	Validator       *validator.Validate
	Logger          *zap.Logger
}

// NewSchedulerService constructs SchedulerService.
func NewSchedulerService(deps SchedulerDeps) *SchedulerService {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &SchedulerService{
		tx:              deps.Tx,
		semesters:       deps.Semesters,
		courses:         deps.Courses,
		specializations: deps.Specializations,
		teachers:        deps.Teachers,
		classrooms:      deps.Classrooms,
		sections:        deps.Sections,
		timeslots:       deps.Timeslots,
		demand:          deps.Demand,
		sectionSvc:      deps.SectionSvc,
		constraints:     deps.Constraints,
		grid:            deps.Grid,
		metrics:         deps.Metrics,
		validator:       deps.Validator,
		logger:          deps.Logger,
	}
}

// runState carries the per-run working data the placement loop mutates.
type runState struct {
	occupancy   *Occupancy
	combos      *ComboCache
	seededStaff map[string]bool
	seededRooms map[string]bool
}

// Generate analyses demand, ensures sections exist and places each section
// onto teachers, classrooms and timeslots. Sections that cannot be placed
// stay UNSCHEDULED and are reported as failed; they never abort the run.
func (s *SchedulerService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.ScheduleRunResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}

	semester, err := s.semesters.FindByID(ctx, req.SemesterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}

	demands, err := s.demand.Analyze(ctx, semester)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, demand := range demands {
		if _, err := s.sectionSvc.EnsureSections(ctx, tx, demand, semester.ID); err != nil {
			return nil, err
		}
	}

	pending, err := s.sections.ListUnscheduledBySemester(ctx, tx, semester.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending sections")
	}

	// Re-runs only place what is still pending, but the run report covers the
	// whole semester, so sections placed by earlier runs count as scheduled.
	alreadyScheduled, err := s.sections.CountScheduledBySemester(ctx, tx, semester.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count scheduled sections")
	}

	state := &runState{
		occupancy:   NewOccupancy(),
		combos:      NewComboCache(s.grid),
		seededStaff: map[string]bool{},
		seededRooms: map[string]bool{},
	}
	// Warm the combination cache once per distinct hour requirement so every
	// section of the same course shape reuses the same ranked combinations.
	for _, section := range pending {
		state.combos.For(section.HoursPerWeek)
	}

	scheduled, failed := alreadyScheduled, 0
	for i := range pending {
		section := &pending[i]
		placed, err := s.placeSection(ctx, tx, state, semester.ID, section)
		if err != nil {
			return nil, err
		}
		if placed {
			scheduled++
		} else {
			failed++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit schedule run")
	}

	s.metrics.ObserveScheduleRun(scheduled, failed, time.Since(started))
	s.logger.Info("schedule run complete",
		zap.String("semester_id", semester.ID),
		zap.Int("scheduled", scheduled),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(started)))

	sections, err := s.sections.List(ctx, models.SectionFilter{SemesterID: semester.ID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sections")
	}

	return &dto.ScheduleRunResponse{
		SemesterID: semester.ID,
		Scheduled:  scheduled,
		Failed:     failed,
		Sections:   sections,
	}, nil
}

// placeSection assigns a teacher, classroom and timeslots to one section.
// Returns false, with the section untouched, when no placement exists or the
// course's staffing configuration has gaps.
func (s *SchedulerService) placeSection(ctx context.Context, tx *sqlx.Tx, state *runState, semesterID string, section *models.Section) (bool, error) {
	course, err := s.courses.FindByID(ctx, section.CourseID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	spec, err := s.specializations.FindByID(ctx, course.SpecializationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("course specialization missing, section skipped",
				zap.String("course_id", course.ID), zap.String("section_id", section.ID))
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load specialization")
	}

	teachers, err := s.teachers.ListBySpecialization(ctx, spec.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	rooms, err := s.classrooms.ListByRoomType(ctx, spec.RoomTypeID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}
	if len(teachers) == 0 || len(rooms) == 0 {
		s.logger.Warn("no qualified teachers or rooms, section skipped",
			zap.String("course_id", course.ID), zap.String("section_id", section.ID))
		return false, nil
	}

	for _, teacher := range teachers {
		if err := s.seedTeacher(ctx, tx, state, teacher.ID, semesterID); err != nil {
			return false, err
		}
		for _, room := range rooms {
			if err := s.seedRoom(ctx, tx, state, room.ID, semesterID); err != nil {
				return false, err
			}
			slots := s.findPlacement(state, teacher.ID, room.ID, section.HoursPerWeek)
			if slots == nil {
				continue
			}
			if err := s.persistPlacement(ctx, tx, state, section, teacher.ID, room.ID, slots); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// findPlacement picks the slots for one teacher and room pair. Ranked
// combinations are tried first, best spread first; when none fit the pair's
// existing load it falls back to greedily accumulating free atomic slots.
func (s *SchedulerService) findPlacement(state *runState, teacherID, roomID string, hoursPerWeek int) []models.GridSlot {
	for _, combo := range state.combos.For(hoursPerWeek) {
		if s.comboFits(state.occupancy, teacherID, roomID, combo.Slots) {
			return combo.Slots
		}
	}

	// The greedy pass must see its own earlier picks when checking the
	// daily cap, so picks are claimed on a scratch copy of the pair's load.
	scratch := NewOccupancy()
	scratch.teacherSlots[teacherID] = append(scratch.teacherSlots[teacherID], state.occupancy.teacherSlots[teacherID]...)
	scratch.roomSlots[roomID] = append(scratch.roomSlots[roomID], state.occupancy.roomSlots[roomID]...)

	var picked []models.GridSlot
	remaining := hoursPerWeek
	for _, slot := range s.grid.AtomicSlots() {
		if slot.DurationHours() > remaining {
			continue
		}
		if !s.constraints.TeacherCanTake(scratch, teacherID, slot) {
			continue
		}
		if !s.constraints.RoomCanTake(scratch, roomID, slot) {
			continue
		}
		scratch.ClaimTeacher(teacherID, slot)
		scratch.ClaimRoom(roomID, slot)
		picked = append(picked, slot)
		remaining -= slot.DurationHours()
		if remaining == 0 {
			return picked
		}
	}
	return nil
}

func (s *SchedulerService) comboFits(occ *Occupancy, teacherID, roomID string, slots []models.GridSlot) bool {
	// Daily-cap checks must see the combo's own slots too, so claims are
	// simulated on a scratch copy of the teacher's day.
	scratch := NewOccupancy()
	scratch.teacherSlots[teacherID] = append(scratch.teacherSlots[teacherID], occ.teacherSlots[teacherID]...)
	scratch.roomSlots[roomID] = append(scratch.roomSlots[roomID], occ.roomSlots[roomID]...)
	for _, slot := range slots {
		if !s.constraints.TeacherCanTake(scratch, teacherID, slot) {
			return false
		}
		if !s.constraints.RoomCanTake(scratch, roomID, slot) {
			return false
		}
		scratch.ClaimTeacher(teacherID, slot)
		scratch.ClaimRoom(roomID, slot)
	}
	return true
}

func (s *SchedulerService) persistPlacement(ctx context.Context, tx *sqlx.Tx, state *runState, section *models.Section, teacherID, roomID string, slots []models.GridSlot) error {
	for _, slot := range slots {
		record := models.SectionTimeslot{
			SectionID:   section.ID,
			DayOfWeek:   slot.Day,
			StartMinute: slot.StartMinute,
			EndMinute:   slot.EndMinute,
		}
		if err := s.timeslots.Create(ctx, tx, &record); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist timeslot")
		}
		state.occupancy.ClaimTeacher(teacherID, slot)
		state.occupancy.ClaimRoom(roomID, slot)
	}

	section.TeacherID = &teacherID
	section.ClassroomID = &roomID
	section.Status = models.SectionStatusScheduled
	if err := s.sections.UpdateAssignment(ctx, tx, section); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update section")
	}
	return nil
}

func (s *SchedulerService) seedTeacher(ctx context.Context, tx *sqlx.Tx, state *runState, teacherID, semesterID string) error {
	if state.seededStaff[teacherID] {
		return nil
	}
	slots, err := s.timeslots.ListByTeacherAndSemester(ctx, tx, teacherID, semesterID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher timeslots")
	}
	state.occupancy.SeedTeacher(teacherID, slots)
	state.seededStaff[teacherID] = true
	return nil
}

func (s *SchedulerService) seedRoom(ctx context.Context, tx *sqlx.Tx, state *runState, roomID, semesterID string) error {
	if state.seededRooms[roomID] {
		return nil
	}
	slots, err := s.timeslots.ListByClassroomAndSemester(ctx, tx, roomID, semesterID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom timeslots")
	}
	state.occupancy.SeedRoom(roomID, slots)
	state.seededRooms[roomID] = true
	return nil
}

// GridPreview exposes the ranked combinations for an hour requirement.
func (s *SchedulerService) GridPreview(hoursPerWeek int) (*dto.GridPreviewResponse, error) {
	if hoursPerWeek < 1 || hoursPerWeek > 8 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "hours per week must be between 1 and 8")
	}
	combos := s.grid.CombinationsFor(hoursPerWeek)
	out := make([]dto.GridCombination, 0, len(combos))
	for _, combo := range combos {
		out = append(out, dto.GridCombination{SpreadScore: combo.SpreadScore, Slots: combo.Slots})
	}
	return &dto.GridPreviewResponse{HoursPerWeek: hoursPerWeek, Combinations: out}, nil
}
