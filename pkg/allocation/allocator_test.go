package allocation

import (
	"fmt"
	"testing"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = 42

type fixture struct {
	calendar  model.Calendar
	allocator SlotAllocator
	shared    *SharedSlotRegistry
	occupancy *OccupancyRegistry
}

func newFixture(calendar model.Calendar, policy model.Policy) fixture {
	occupancy := NewOccupancyRegistry()
	shared := NewSharedSlotRegistry()
	return fixture{
		calendar:  calendar,
		allocator: NewSlotAllocator(calendar, model.NewPredicateEvaluator(policy), occupancy, shared, NewRandom(seed), nil),
		shared:    shared,
		occupancy: occupancy,
	}
}

func lectureCourse(code, department string, semester, lectures int) model.CourseRequirement {
	return model.CourseRequirement{Code: code, Name: code, Department: department, Semester: semester, Credits: 3, Lectures: lectures}
}

func sessionCells(outcome SessionOutcome) []model.Cell {
	cells := lo.FlatMap(outcome.Minor, func(meeting model.Meeting, _ int) []model.Cell { return meeting.Cells() })
	for _, course := range outcome.Courses {
		for _, meetings := range course.Meetings {
			for _, meeting := range meetings {
				cells = append(cells, meeting.Cells()...)
			}
		}
	}
	return cells
}

func TestSingleLectureCoversContiguousCells(t *testing.T) {
	//** Arrange
	f := newFixture(model.DefaultCalendar(), model.DefaultPolicy())
	course := lectureCourse("EC301", "ECE", 1, 1)

	//** Act
	outcome := f.allocator.AllocateSession(Request{Semester: 1, Department: "ECE", Session: model.PreMid, Courses: []model.CourseRequirement{course}})

	//** Assert
	require.Len(t, outcome.Courses, 1)
	result := outcome.Courses[0]
	assert.Equal(t, model.FullyScheduled, result.Status)
	assert.Equal(t, model.Counts{Lectures: 1}, result.Actual)
	assert.Empty(t, outcome.Shortfalls)
	assert.Nil(t, outcome.Minor)

	require.Len(t, result.Meetings[model.Lecture], 1)
	meeting := result.Meetings[model.Lecture][0]
	window, ok := f.calendar.Window(meeting.Start, 3)
	require.True(t, ok)
	assert.Equal(t, window, meeting.Slots)
	for _, cell := range meeting.Cells() {
		assert.True(t, f.calendar.IsRegular(cell.Slot))
		assert.Equal(t, "EC301", outcome.Grid.Label(cell))
	}
	assert.Len(t, outcome.Grid.Placements(), 3)
}

func TestAllocateSessionIsDeterministicForSeed(t *testing.T) {
	courses := []model.CourseRequirement{
		{Code: "EC301", Department: "ECE", Semester: 3, Credits: 4, Lectures: 3, Tutorials: 1, Labs: 1},
		{Code: "EC302", Department: "ECE", Semester: 3, Credits: 3, Lectures: 2, Tutorials: 1},
	}
	request := Request{Semester: 3, Department: "ECE", Session: model.PostMid, Courses: courses}

	outcome1 := newFixture(model.DefaultCalendar(), model.DefaultPolicy()).allocator.AllocateSession(request)
	outcome2 := newFixture(model.DefaultCalendar(), model.DefaultPolicy()).allocator.AllocateSession(request)

	assert.Equal(t, outcome1.Grid.Rows(), outcome2.Grid.Rows())
	assert.Equal(t, outcome1.Minor, outcome2.Minor)
}

func TestNoCellIsUsedTwiceInSession(t *testing.T) {
	//** Arrange
	f := newFixture(model.DefaultCalendar(), model.DefaultPolicy())
	courses := []model.CourseRequirement{
		{Code: "EC301", Department: "ECE", Semester: 3, Credits: 4, Lectures: 3, Tutorials: 1, Labs: 1},
		{Code: "EC302", Department: "ECE", Semester: 3, Credits: 4, Lectures: 3, Tutorials: 1, Labs: 1},
		{Code: "EC303", Department: "ECE", Semester: 3, Credits: 3, Lectures: 2, Tutorials: 1},
		{Code: "EC304", Department: "ECE", Semester: 3, Credits: 3, Lectures: 2, Labs: 1},
		{Code: "EC305", Department: "ECE", Semester: 3, Credits: 2, Lectures: 2},
	}

	//** Act
	outcome := f.allocator.AllocateSession(Request{Semester: 3, Department: "ECE", Session: model.PreMid, Courses: courses})

	//** Assert
	cells := sessionCells(outcome)
	assert.Len(t, lo.Uniq(cells), len(cells))
	for _, cell := range cells {
		assert.False(t, f.calendar.IsLunch(cell.Slot))
	}
	for _, course := range outcome.Courses {
		assert.LessOrEqual(t, course.Actual.Lectures, course.Course.Lectures)
		assert.LessOrEqual(t, course.Actual.Tutorials, course.Course.Tutorials)
		assert.LessOrEqual(t, course.Actual.Labs, course.Course.Labs)
	}
	assert.ElementsMatch(t, cells, f.occupancy.Booked(f.calendar, 3, "ECE", model.PreMid))
}

func TestMinorBlockIsSharedBySemester(t *testing.T) {
	//** Arrange
	f := newFixture(model.DefaultCalendar(), model.DefaultPolicy())
	requests := []Request{
		{Semester: 3, Department: "CSE-A", Session: model.PreMid, Courses: []model.CourseRequirement{lectureCourse("CS301", "CSE-A", 3, 2)}},
		{Semester: 3, Department: "ECE", Session: model.PreMid, Courses: []model.CourseRequirement{lectureCourse("EC301", "ECE", 3, 2)}},
		{Semester: 3, Department: "ECE", Session: model.PostMid},
	}

	//** Act
	outcomes := lo.Map(requests, func(request Request, _ int) SessionOutcome { return f.allocator.AllocateSession(request) })

	//** Assert
	recorded, ok := f.shared.Minor(3)
	require.True(t, ok)
	require.Len(t, recorded, f.calendar.MinorPerWeek)
	for _, outcome := range outcomes {
		assert.Equal(t, recorded, pairsOf(outcome.Minor))
		for _, meeting := range outcome.Minor {
			for _, cell := range meeting.Cells() {
				assert.True(t, f.calendar.IsMinor(cell.Slot))
				assert.Equal(t, "Minor (Minor)", outcome.Grid.Label(cell))
			}
		}
	}
	// Minor days are distinct
	assert.Len(t, lo.Uniq(lo.Map(recorded, func(pair SlotPair, _ int) model.Day { return pair.Day })), len(recorded))
}

func TestElectivesShareCommonPlacements(t *testing.T) {
	//** Arrange
	f := newFixture(model.DefaultCalendar(), model.DefaultPolicy())
	electiveA := lectureCourse("CS350", "CSE-A", 5, 2)
	electiveA.Elective = true
	electiveB := lectureCourse("CS360", "CSE-A", 5, 2)
	electiveB.Elective = true
	electiveD := lectureCourse("DS370", "DSAI", 5, 2)
	electiveD.Elective = true

	//** Act
	outcomeA := f.allocator.AllocateSession(Request{Semester: 5, Department: "CSE-A", Session: model.PreMid, Courses: []model.CourseRequirement{electiveA, electiveB}})
	outcomeD := f.allocator.AllocateSession(Request{Semester: 5, Department: "DSAI", Session: model.PreMid, Courses: []model.CourseRequirement{electiveD}})

	//** Assert
	common, ok := f.shared.Electives(5)
	require.True(t, ok)
	require.Len(t, common, 2)

	require.Len(t, outcomeA.Courses, 2)
	for _, course := range outcomeA.Courses {
		assert.True(t, course.Elective)
		assert.Equal(t, model.FullyScheduled, course.Status)
		assert.Equal(t, common, pairsOf(course.Meetings[model.Lecture]))
	}
	assert.Equal(t, common, pairsOf(outcomeD.Courses[0].Meetings[model.Lecture]))

	// Both electives of the department share the basket cells
	cell := model.Cell{Day: common[0].Day, Slot: common[0].Start}
	assert.Equal(t, "CS350 / CS360", outcomeA.Grid.Label(cell))
}

// One day of four single-cell slots with no lunch or minor block
func tightCalendar() model.Calendar {
	calendar := model.DefaultCalendar()
	calendar.Days = []model.Day{"MON"}
	calendar.Slots = []model.Slot{"08:00-08:30", "08:30-09:00", "09:00-09:30", "09:30-10:00"}
	calendar.LunchSlots = nil
	calendar.MinorSlots = nil
	calendar.Durations = model.Durations{Lecture: 1, Tutorial: 1, Lab: 1, Minor: 1}
	calendar.MinorPerWeek = 0
	return calendar
}

func TestElectiveKeepsCommonPlacementAfterOtherComponents(t *testing.T) {
	for seed := uint64(1); seed <= 60; seed++ {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			//** Arrange
			shared := NewSharedSlotRegistry()
			allocator := NewSlotAllocator(tightCalendar(), model.NewPredicateEvaluator(model.DefaultPolicy()), NewOccupancyRegistry(), shared, NewRandom(seed), nil)
			first := model.CourseRequirement{Code: "EC350", Department: "ECE", Semester: 3, Credits: 2, Lectures: 1, Elective: true}
			courses := []model.CourseRequirement{
				lectureCourse("DS301", "DSAI", 3, 2),
				{Code: "DS350", Department: "DSAI", Semester: 3, Credits: 3, Lectures: 1, Labs: 1, Elective: true},
			}

			//** Act
			allocator.AllocateSession(Request{Semester: 3, Department: "ECE", Session: model.PreMid, Courses: []model.CourseRequirement{first}})
			outcome := allocator.AllocateSession(Request{Semester: 3, Department: "DSAI", Session: model.PreMid, Courses: courses})

			//** Assert
			common, ok := shared.Electives(3)
			require.True(t, ok)
			require.Len(t, outcome.Courses, 2)
			regular, elective := outcome.Courses[0], outcome.Courses[1]
			require.Equal(t, "DS350", elective.Course.Code)

			assert.Equal(t, model.Counts{Lectures: 1, Labs: 1}, elective.Actual)
			assert.Equal(t, common, pairsOf(elective.Meetings[model.Lecture]))
			assert.Equal(t, model.FullyScheduled, regular.Status)
			assert.Empty(t, outcome.Shortfalls)
		})
	}
}

func TestCombinedClassRecordsOnlyCompletePlacements(t *testing.T) {
	//** Arrange
	policy := model.DefaultPolicy()
	policy.CombinedGroups["DSAI_ECE"] = model.CombinedGroup{Departments: []string{"DSAI", "ECE"}, Courses: []string{"MA301"}}
	f := newFixture(tightCalendar(), policy)

	//** Act
	outcomeD := f.allocator.AllocateSession(Request{Semester: 3, Department: "DSAI", Session: model.PreMid, Courses: []model.CourseRequirement{
		lectureCourse("DS301", "DSAI", 3, 2),
		lectureCourse("MA301", "DSAI", 3, 3),
	}})
	_, recordedShort := f.shared.Combined("DSAI_ECE", "MA301", model.Lecture)
	outcomeE := f.allocator.AllocateSession(Request{Semester: 3, Department: "ECE", Session: model.PreMid, Courses: []model.CourseRequirement{
		lectureCourse("MA301", "ECE", 3, 3),
	}})

	//** Assert
	assert.Equal(t, 2, outcomeD.Courses[1].Actual.Lectures)
	assert.False(t, recordedShort)

	require.Equal(t, 3, outcomeE.Courses[0].Actual.Lectures)
	pairs, ok := f.shared.Combined("DSAI_ECE", "MA301", model.Lecture)
	require.True(t, ok)
	assert.Equal(t, pairsOf(outcomeE.Courses[0].Meetings[model.Lecture]), pairs)
}

func TestCombinedClassesShareGroupPlacements(t *testing.T) {
	//** Arrange
	policy := model.DefaultPolicy()
	policy.CombinedGroups["DSAI_ECE"] = model.CombinedGroup{Departments: []string{"DSAI", "ECE"}, Courses: []string{"MA301", "MA302"}}
	f := newFixture(model.DefaultCalendar(), policy)
	courses := func(department string) []model.CourseRequirement {
		return []model.CourseRequirement{
			lectureCourse(department+"01", department, 3, 2),
			lectureCourse("MA301", department, 3, 2),
			lectureCourse("MA302", department, 3, 2),
		}
	}

	//** Act
	outcomeD := f.allocator.AllocateSession(Request{Semester: 3, Department: "DSAI", Session: model.PreMid, Courses: courses("DSAI")})
	outcomeE := f.allocator.AllocateSession(Request{Semester: 3, Department: "ECE", Session: model.PreMid, Courses: courses("ECE")})

	//** Assert
	byCode := func(outcome SessionOutcome) map[string]CourseOutcome {
		return lo.KeyBy(outcome.Courses, func(course CourseOutcome) string { return course.Course.Code })
	}
	coursesD, coursesE := byCode(outcomeD), byCode(outcomeE)
	for _, code := range []string{"MA301", "MA302"} {
		assert.True(t, coursesD[code].Combined)
		assert.Equal(t, pairsOf(coursesD[code].Meetings[model.Lecture]), pairsOf(coursesE[code].Meetings[model.Lecture]))
	}
	assert.False(t, coursesD["DSAI01"].Combined)

	// Combined courses already placed by the group go first
	assert.ElementsMatch(t, []string{"MA301", "MA302"}, []string{outcomeE.Courses[0].Course.Code, outcomeE.Courses[1].Course.Code})

	// Two combined classes of the group never share a cell
	cells301 := lo.FlatMap(coursesD["MA301"].Meetings[model.Lecture], func(meeting model.Meeting, _ int) []model.Cell { return meeting.Cells() })
	cells302 := lo.FlatMap(coursesD["MA302"].Meetings[model.Lecture], func(meeting model.Meeting, _ int) []model.Cell { return meeting.Cells() })
	assert.Empty(t, lo.Intersect(cells301, cells302))
}

func TestShortfallIsReportedWhenGridIsFull(t *testing.T) {
	//** Arrange
	calendar := model.DefaultCalendar()
	calendar.Days = []model.Day{"MON"}
	f := newFixture(calendar, model.DefaultPolicy())
	course := lectureCourse("EC301", "ECE", 1, 10)

	//** Act
	outcome := f.allocator.AllocateSession(Request{Semester: 1, Department: "ECE", Session: model.PreMid, Courses: []model.CourseRequirement{course}})

	//** Assert
	result := outcome.Courses[0]
	assert.Equal(t, model.PartiallyScheduled, result.Status)
	assert.LessOrEqual(t, result.Actual.Lectures, 5)
	assert.Positive(t, result.Actual.Lectures)
	require.Len(t, outcome.Shortfalls, 1)
	assert.Equal(t, Shortfall{Code: "EC301", Component: model.Lecture, Required: 10, Placed: result.Actual.Lectures}, outcome.Shortfalls[0])
}
