package timetabler

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/limaJavier/timegrid/pkg/allocation"
	"github.com/limaJavier/timegrid/pkg/division"
	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/limaJavier/timegrid/pkg/rooms"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type standardTimetabler struct {
	calendar  model.Calendar
	policy    model.Policy
	evaluator model.PredicateEvaluator
	seed      uint64
	logger    *zap.Logger
}

// NewTimetabler builds schedules with fresh registries on every Build. A zero seed makes every Build draw its own seed.
func NewTimetabler(calendar model.Calendar, policy model.Policy, seed uint64, logger *zap.Logger) Timetabler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &standardTimetabler{
		calendar:  calendar,
		policy:    policy,
		evaluator: model.NewPredicateEvaluator(policy),
		seed:      seed,
		logger:    logger,
	}
}

func (timetabler *standardTimetabler) Build(input model.ModelInput) Run {
	run := Run{
		Id:         uuid.NewString(),
		Seed:       timetabler.seed,
		Grids:      make([]*model.ScheduleGrid, 0),
		Results:    make([]model.AllocationResult, 0),
		Shortfalls: make([]SessionShortfall, 0),
		Gaps:       make([]Gap, 0),
		Minor:      make(map[int][]allocation.SlotPair),
		Electives:  make(map[int][]allocation.SlotPair),
		calendar:   timetabler.calendar,
		meetings:   make(map[resultKey]map[model.Component][]model.Meeting),
	}
	logger := timetabler.logger.With(zap.String("run_id", run.Id))

	for _, warning := range input.Warnings {
		logger.Warn("input defect", zap.String("detail", warning))
	}

	//** Initialize registries
	occupancy := allocation.NewOccupancyRegistry()
	shared := allocation.NewSharedSlotRegistry()
	roomOccupancy := rooms.NewRoomOccupancyRegistry()
	alternation := division.NewAlternationRegistry()

	//** Initialize dependencies
	divider := division.NewDivider(timetabler.evaluator, alternation, logger)
	slotAllocator := allocation.NewSlotAllocator(timetabler.calendar, timetabler.evaluator, occupancy, shared, allocation.NewRandom(timetabler.seed), logger)
	roomAllocator := rooms.NewRoomAllocator(timetabler.calendar, input.Rooms, timetabler.evaluator, roomOccupancy, logger)
	validator := rooms.NewConflictValidator(timetabler.calendar, input.Rooms, timetabler.evaluator, logger)

	for _, semester := range input.Semesters() {
		semesterCourses := input.SemesterCourses(semester)
		departments := timetabler.policy.ProcessingOrder(lo.Map(semesterCourses, func(course model.CourseRequirement, _ int) string { return course.Department }))
		logger.Info("scheduling semester", zap.Int("semester", semester), zap.Strings("departments", departments))

		for _, department := range departments {
			departmentCourses := lo.Filter(semesterCourses, func(course model.CourseRequirement, _ int) bool { return course.Department == department })

			//** Divide
			courseDivision := divider.Divide(semester, department, departmentCourses, semesterCourses)
			for _, code := range courseDivision.Missing {
				run.Gaps = append(run.Gaps, Gap{
					Semester:   semester,
					Department: department,
					Code:       code,
					Reason:     "not assigned to any session",
				})
			}

			for _, session := range model.Sessions {
				//** Place slots
				outcome := slotAllocator.AllocateSession(allocation.Request{
					Semester:   semester,
					Department: department,
					Session:    session,
					Courses:    courseDivision.Session(session),
				})
				run.Grids = append(run.Grids, outcome.Grid)
				for _, shortfall := range outcome.Shortfalls {
					run.Shortfalls = append(run.Shortfalls, SessionShortfall{
						Semester:   semester,
						Department: department,
						Session:    session,
						Shortfall:  shortfall,
					})
				}

				//** Assign rooms
				for _, courseOutcome := range outcome.Courses {
					result := timetabler.assignRooms(roomAllocator, semester, department, session, courseOutcome)
					run.Results = append(run.Results, result)
					run.meetings[resultKey{semester, department, session, result.Code}] = courseOutcome.Meetings

					if result.Status == model.Unscheduled {
						run.Gaps = append(run.Gaps, Gap{
							Semester:   semester,
							Department: department,
							Session:    session,
							Code:       result.Code,
							Reason:     "never scheduled",
						})
					}
				}
				timetabler.summarize(logger, semester, department, session, courseDivision.Session(session), outcome)
			}
		}

		if pairs, ok := shared.Minor(semester); ok {
			run.Minor[semester] = pairs
		}
		if pairs, ok := shared.Electives(semester); ok {
			run.Electives[semester] = pairs
		}
	}

	//** Validate rooms
	run.Conflicts = validator.Validate(roomOccupancy)
	for _, gap := range run.Gaps {
		logger.Error("coordination gap",
			zap.Int("semester", gap.Semester),
			zap.String("department", gap.Department),
			zap.String("session", string(gap.Session)),
			zap.String("course", gap.Code),
			zap.String("reason", gap.Reason),
		)
	}
	return run
}

func (timetabler *standardTimetabler) assignRooms(roomAllocator rooms.RoomAllocator, semester int, department string, session model.Session, outcome allocation.CourseOutcome) model.AllocationResult {
	course := outcome.Course
	result := model.AllocationResult{
		Semester:   semester,
		Department: department,
		Session:    session,
		Code:       course.Code,
		Name:       course.Name,
		Required:   course.Required(),
		Actual:     outcome.Actual,
		Status:     outcome.Status,
		Elective:   outcome.Elective,
		Combined:   outcome.Combined,
	}

	// Elective baskets and HSS courses are taught to several sections at once, their rooms are not managed here
	if outcome.Elective || timetabler.evaluator.IsHSS(course) {
		return result
	}

	demand := rooms.Demand{
		Semester:   semester,
		Department: department,
		Session:    session,
		Code:       course.Code,
		Enrollment: course.Enrollment,
	}
	if group, ok := timetabler.evaluator.Combined(department, course.Code); ok {
		demand.JoinKey = fmt.Sprintf("%v/%v", group, course.Code)
	}

	demand.Cells = meetingCells(slices.Concat(outcome.Meetings[model.Lecture], outcome.Meetings[model.Tutorial]))
	result.Room = roomAllocator.AssignLectureRoom(demand)

	demand.Cells = meetingCells(outcome.Meetings[model.Lab])
	result.LabRoom = roomAllocator.AssignLabRooms(demand)
	return result
}

func (timetabler *standardTimetabler) summarize(logger *zap.Logger, semester int, department string, session model.Session, expected []model.CourseRequirement, outcome allocation.SessionOutcome) {
	scheduled := lo.FilterMap(outcome.Courses, func(course allocation.CourseOutcome, _ int) (string, bool) {
		return course.Course.Code, course.Status != model.Unscheduled
	})
	partial := lo.FilterMap(outcome.Courses, func(course allocation.CourseOutcome, _ int) (string, bool) {
		return course.Course.Code, course.Status == model.PartiallyScheduled
	})
	missing, _ := lo.Difference(model.Codes(expected), scheduled)

	logger.Info("schedule summary",
		zap.Int("semester", semester),
		zap.String("department", department),
		zap.String("session", string(session)),
		zap.Int("expected", len(expected)),
		zap.Int("fully_scheduled", len(scheduled)-len(partial)),
		zap.Strings("partially_scheduled", partial),
		zap.Strings("not_scheduled", missing),
	)
}

func meetingCells(meetings []model.Meeting) []model.Cell {
	return lo.FlatMap(meetings, func(meeting model.Meeting, _ int) []model.Cell { return meeting.Cells() })
}
