package allocation

import (
	"math/rand/v2"
	"slices"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Course code written in the grid for the minor block
const MinorCode = "Minor"

type Request struct {
	Semester   int
	Department string
	Session    model.Session
	Courses    []model.CourseRequirement
}

type CourseOutcome struct {
	Course   model.CourseRequirement
	Meetings map[model.Component][]model.Meeting // Keyed by Lecture, Tutorial and Lab
	Actual   model.Counts
	Status   model.CourseStatus
	Elective bool
	Combined bool
}

type Shortfall struct {
	Code      string
	Component model.Component
	Required  int
	Placed    int
}

type SessionOutcome struct {
	Grid       *model.ScheduleGrid
	Minor      []model.Meeting
	Courses    []CourseOutcome
	Shortfalls []Shortfall
}

// SlotAllocator places the weekly meetings of one (semester, department, session)
type SlotAllocator interface {
	AllocateSession(request Request) SessionOutcome
}

type slotAllocatorImplementation struct {
	calendar  model.Calendar
	evaluator model.PredicateEvaluator
	occupancy *OccupancyRegistry
	shared    *SharedSlotRegistry
	random    *rand.Rand
	logger    *zap.Logger
}

func NewSlotAllocator(
	calendar model.Calendar,
	evaluator model.PredicateEvaluator,
	occupancy *OccupancyRegistry,
	shared *SharedSlotRegistry,
	random *rand.Rand,
	logger *zap.Logger,
) SlotAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if random == nil {
		random = NewRandom(0)
	}
	return &slotAllocatorImplementation{
		calendar:  calendar,
		evaluator: evaluator,
		occupancy: occupancy,
		shared:    shared,
		random:    random,
		logger:    logger,
	}
}

// placement carries the context of one commit
type placement struct {
	request   Request
	grid      *model.ScheduleGrid
	code      string
	component model.Component
}

func (allocator *slotAllocatorImplementation) AllocateSession(request Request) SessionOutcome {
	logger := allocator.logger.With(
		zap.Int("semester", request.Semester),
		zap.String("department", request.Department),
		zap.String("session", string(request.Session)),
	)
	outcome := SessionOutcome{
		Grid:       model.NewScheduleGrid(allocator.calendar, request.Semester, request.Department, request.Session),
		Courses:    make([]CourseOutcome, 0, len(request.Courses)),
		Shortfalls: make([]Shortfall, 0),
	}

	outcome.Minor = allocator.placeMinor(outcome.Grid, request, logger)

	for _, course := range allocator.order(request) {
		courseOutcome, shortfalls := allocator.allocateCourse(outcome.Grid, request, course, logger)
		outcome.Courses = append(outcome.Courses, courseOutcome)
		outcome.Shortfalls = append(outcome.Shortfalls, shortfalls...)
	}

	logger.Info("session allocated",
		zap.Int("courses", len(outcome.Courses)),
		zap.Int("fully_scheduled", lo.CountBy(outcome.Courses, func(course CourseOutcome) bool { return course.Status == model.FullyScheduled })),
		zap.Int("partially_scheduled", lo.CountBy(outcome.Courses, func(course CourseOutcome) bool { return course.Status == model.PartiallyScheduled })),
		zap.Int("unscheduled", lo.CountBy(outcome.Courses, func(course CourseOutcome) bool { return course.Status == model.Unscheduled })),
	)
	return outcome
}

// Courses whose combined classes were already placed go first so that their shared cells are still free
func (allocator *slotAllocatorImplementation) order(request Request) []model.CourseRequirement {
	courses := slices.Clone(request.Courses)
	hasCombined := func(course model.CourseRequirement) bool {
		group, ok := allocator.evaluator.Combined(request.Department, course.Code)
		return ok && allocator.shared.HasCombined(group, course.Code)
	}
	slices.SortStableFunc(courses, func(course1, course2 model.CourseRequirement) int {
		combined1, combined2 := hasCombined(course1), hasCombined(course2)
		switch {
		case combined1 && !combined2:
			return -1
		case !combined1 && combined2:
			return 1
		}
		return 0
	})
	return courses
}

func (allocator *slotAllocatorImplementation) allocateCourse(grid *model.ScheduleGrid, request Request, course model.CourseRequirement, logger *zap.Logger) (CourseOutcome, []Shortfall) {
	_, combined := allocator.evaluator.Combined(request.Department, course.Code)
	outcome := CourseOutcome{
		Course:   course,
		Meetings: make(map[model.Component][]model.Meeting),
		Elective: allocator.evaluator.IsElective(course),
		Combined: combined,
	}
	shortfalls := make([]Shortfall, 0)
	required := course.Required()
	avoid := make(map[model.Day]bool) // Days already used by earlier components of the course

	for _, component := range model.CourseComponents {
		need := required.Of(component)
		if need == 0 {
			continue
		}

		var meetings []model.Meeting
		if component == model.Lecture && outcome.Elective {
			meetings = allocator.placeElective(grid, request, course.Code, need, avoid, logger)
		} else {
			meetings = allocator.placeComponent(grid, request, course.Code, component, need, avoid, logger)
		}

		outcome.Meetings[component] = meetings
		outcome.Actual.Add(component, len(meetings))
		for _, meeting := range meetings {
			avoid[meeting.Day] = true
		}

		if len(meetings) < need {
			shortfalls = append(shortfalls, Shortfall{
				Code:      course.Code,
				Component: component,
				Required:  need,
				Placed:    len(meetings),
			})
			logger.Warn("component partially scheduled",
				zap.String("course", course.Code),
				zap.Stringer("component", component),
				zap.Int("required", need),
				zap.Int("placed", len(meetings)),
				zap.Int("shortfall", need-len(meetings)),
			)
		}
	}

	outcome.Status = model.StatusOf(required, outcome.Actual)
	return outcome, shortfalls
}

func (allocator *slotAllocatorImplementation) placeMinor(grid *model.ScheduleGrid, request Request, logger *zap.Logger) []model.Meeting {
	if !allocator.calendar.HasMinor(request.Semester) {
		return nil
	}
	target := placement{request: request, grid: grid, code: MinorCode, component: model.Minor}

	if pairs, ok := allocator.shared.Minor(request.Semester); ok {
		return allocator.reuse(target, pairs, len(pairs), nil, logger)
	}

	meetings := allocator.search(target, allocator.calendar.MinorPerWeek, nil, nil)
	if len(meetings) < allocator.calendar.MinorPerWeek {
		logger.Warn("minor block partially scheduled", zap.Int("required", allocator.calendar.MinorPerWeek), zap.Int("placed", len(meetings)))
	}
	allocator.shared.RecordMinor(request.Semester, pairsOf(meetings))
	return meetings
}

// Electives reuse the semester-wide common placements; the first elective of the semester decides them
func (allocator *slotAllocatorImplementation) placeElective(grid *model.ScheduleGrid, request Request, code string, need int, avoid map[model.Day]bool, logger *zap.Logger) []model.Meeting {
	target := placement{request: request, grid: grid, code: code, component: model.Elective}

	if pairs, ok := allocator.shared.Electives(request.Semester); ok {
		if len(pairs) < need {
			logger.Warn("fewer common elective placements than required", zap.String("course", code), zap.Int("common", len(pairs)), zap.Int("required", need))
		}
		return allocator.reuse(target, pairs, need, nil, logger)
	}

	meetings := allocator.search(target, need, avoid, nil)
	allocator.shared.RecordElectives(request.Semester, pairsOf(meetings))
	return meetings
}

func (allocator *slotAllocatorImplementation) placeComponent(grid *model.ScheduleGrid, request Request, code string, component model.Component, need int, avoid map[model.Day]bool, logger *zap.Logger) []model.Meeting {
	target := placement{request: request, grid: grid, code: code, component: component}

	outsideBasket := allocator.outsideBasket(request)

	group, combined := allocator.evaluator.Combined(request.Department, code)
	if !combined {
		return allocator.search(target, need, avoid, outsideBasket)
	}

	//** Combined class
	capacityFree := func(cells []model.Cell) bool {
		return allocator.shared.CombinedCapacityFree(request.Semester, group, code, cells) && (outsideBasket == nil || outsideBasket(cells))
	}
	meetings := make([]model.Meeting, 0, need)
	if pairs, ok := allocator.shared.Combined(group, code, component); ok {
		meetings = allocator.reuse(target, pairs, need, capacityFree, logger)
	}
	if remaining := need - len(meetings); remaining > 0 {
		meetings = append(meetings, allocator.searchWithBudget(target, remaining, avoid, capacityFree, allocator.calendar.Budgets.Combined)...)
	}

	for _, meeting := range meetings {
		allocator.shared.ReserveCombined(request.Semester, group, code, meeting.Cells())
	}
	// A short placement stays unrecorded so the next member of the group may settle a complete one
	if len(meetings) == need {
		allocator.shared.RecordCombined(group, code, component, pairsOf(meetings))
	} else {
		logger.Warn("combined placement incomplete, not shared", zap.String("course", code), zap.String("group", group), zap.Stringer("component", component))
	}
	return meetings
}

// outsideBasket rejects the cells of the semester's common elective placements when the request has electives
// to put there, nil otherwise
func (allocator *slotAllocatorImplementation) outsideBasket(request Request) func([]model.Cell) bool {
	if !lo.SomeBy(request.Courses, allocator.evaluator.IsElective) {
		return nil
	}
	pairs, ok := allocator.shared.Electives(request.Semester)
	if !ok {
		return nil
	}

	duration := allocator.calendar.Duration(model.Elective)
	basket := make(map[model.Cell]bool)
	for _, pair := range pairs {
		for _, cell := range allocator.calendar.Cells(pair.Day, pair.Start, duration) {
			basket[cell] = true
		}
	}
	return func(cells []model.Cell) bool {
		return !lo.SomeBy(cells, func(cell model.Cell) bool { return basket[cell] })
	}
}

// reuse commits up to limit shared placements that are still free for this department and session
func (allocator *slotAllocatorImplementation) reuse(target placement, pairs []SlotPair, limit int, accept func([]model.Cell) bool, logger *zap.Logger) []model.Meeting {
	duration := allocator.calendar.Duration(target.component)
	meetings := make([]model.Meeting, 0, limit)
	for _, pair := range pairs {
		if len(meetings) >= limit {
			break
		}
		cells := allocator.calendar.Cells(pair.Day, pair.Start, duration)
		if !allocator.free(target, cells) || (accept != nil && !accept(cells)) {
			logger.Warn("shared placement unavailable",
				zap.String("course", target.code),
				zap.Stringer("component", target.component),
				zap.String("day", string(pair.Day)),
				zap.String("start", string(pair.Start)),
			)
			continue
		}
		meetings = append(meetings, allocator.commit(target, pair, cells))
	}
	return meetings
}

func (allocator *slotAllocatorImplementation) search(target placement, count int, avoid map[model.Day]bool, accept func([]model.Cell) bool) []model.Meeting {
	return allocator.searchWithBudget(target, count, avoid, accept, allocator.calendar.Budget(target.component))
}

// searchWithBudget draws shuffled candidates, preferring days unused by the component and absent from avoid,
// until count meetings are committed or the budget is exhausted
func (allocator *slotAllocatorImplementation) searchWithBudget(target placement, count int, avoid map[model.Day]bool, accept func([]model.Cell) bool, budget int) []model.Meeting {
	meetings := make([]model.Meeting, 0, count)
	if count <= 0 {
		return meetings
	}

	duration := allocator.calendar.Duration(target.component)
	candidates := allocator.candidates(target.component)
	allocator.random.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	used := make(map[model.Day]bool)
	for attempts := 0; len(meetings) < count && attempts < budget && len(candidates) > 0; attempts++ {
		pool := make([]int, 0, len(candidates))
		for index, candidate := range candidates {
			if !used[candidate.Day] && !avoid[candidate.Day] {
				pool = append(pool, index)
			}
		}
		if len(pool) == 0 {
			pool = lo.Range(len(candidates))
		}

		index := pool[allocator.random.IntN(len(pool))]
		pair := candidates[index]
		cells := allocator.calendar.Cells(pair.Day, pair.Start, duration)
		if !allocator.free(target, cells) || (accept != nil && !accept(cells)) {
			continue
		}

		meetings = append(meetings, allocator.commit(target, pair, cells))
		candidates = slices.Delete(candidates, index, index+1)
		used[pair.Day] = true
	}
	return meetings
}

// Every (day, start) whose window lies on slots the component may use
func (allocator *slotAllocatorImplementation) candidates(component model.Component) []SlotPair {
	allowed := allocator.calendar.IsRegular
	if component == model.Minor {
		allowed = allocator.calendar.IsMinor
	}

	duration := allocator.calendar.Duration(component)
	candidates := make([]SlotPair, 0)
	for _, day := range allocator.calendar.Days {
		for _, start := range allocator.calendar.Slots {
			window, ok := allocator.calendar.Window(start, duration)
			if ok && lo.EveryBy(window, allowed) {
				candidates = append(candidates, SlotPair{Day: day, Start: start})
			}
		}
	}
	return candidates
}

func (allocator *slotAllocatorImplementation) free(target placement, cells []model.Cell) bool {
	request := target.request
	return len(cells) > 0 &&
		target.grid.Accepts(cells, target.component) &&
		allocator.occupancy.Available(request.Semester, request.Department, request.Session, cells, target.component)
}

func (allocator *slotAllocatorImplementation) commit(target placement, pair SlotPair, cells []model.Cell) model.Meeting {
	request := target.request
	target.grid.Mark(cells, target.code, target.component)
	allocator.occupancy.Book(request.Semester, request.Department, request.Session, cells, target.component)
	return model.Meeting{
		Day:   pair.Day,
		Start: pair.Start,
		Slots: lo.Map(cells, func(cell model.Cell, _ int) model.Slot { return cell.Slot }),
	}
}

func pairsOf(meetings []model.Meeting) []SlotPair {
	return lo.Map(meetings, func(meeting model.Meeting, _ int) SlotPair {
		return SlotPair{Day: meeting.Day, Start: meeting.Start}
	})
}
