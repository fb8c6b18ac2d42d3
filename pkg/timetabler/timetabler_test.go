package timetabler

import (
	"testing"

	"github.com/limaJavier/timegrid/pkg/allocation"
	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = 42

func testInput() model.ModelInput {
	course := func(code, department string, semester int, credits float64, lectures, tutorials, labs int) model.CourseRequirement {
		return model.CourseRequirement{
			Code:       code,
			Name:       code,
			Department: department,
			Semester:   semester,
			Credits:    credits,
			Enrollment: 60,
			Lectures:   lectures,
			Tutorials:  tutorials,
			Labs:       labs,
		}
	}
	elective := course("CS350", "CSE-A", 3, 3, 2, 0, 0)
	elective.Elective = true

	return model.ModelInput{
		Courses: []model.CourseRequirement{
			course("CS301", "CSE-A", 3, 4, 3, 1, 1),
			course("CS302", "CSE-A", 3, 2, 2, 0, 0),
			course("CS303", "CSE-A", 3, 2, 2, 0, 0),
			elective,
			course("CS301", "CSE-B", 3, 4, 3, 1, 1),
			course("CS302", "CSE-B", 3, 2, 2, 0, 0),
			course("CS303", "CSE-B", 3, 2, 2, 0, 0),
			course("DS301", "DSAI", 3, 3, 2, 1, 0),
			course("EC301", "ECE", 3, 4, 3, 1, 1),
			course("MA301", "ECE", 3, 2, 2, 0, 0),
			course("EC501", "ECE", 5, 3, 3, 0, 0),
		},
		Rooms: []model.RoomRecord{
			{Id: "C101", Capacity: 120, Category: model.Classroom},
			{Id: "C102", Capacity: 120, Category: model.Classroom},
			{Id: "C103", Capacity: 80, Category: model.Classroom},
			{Id: "C104", Capacity: 80, Category: model.Classroom},
			{Id: "L101", Capacity: 40, Category: model.SoftwareLab},
			{Id: "L102", Capacity: 40, Category: model.SoftwareLab},
			{Id: "H201", Capacity: 40, Category: model.HardwareLab},
			{Id: "H202", Capacity: 40, Category: model.HardwareLab},
		},
	}
}

func build(t *testing.T) Run {
	t.Helper()
	timetabler := NewTimetabler(model.DefaultCalendar(), model.DefaultPolicy(), seed, nil)
	return timetabler.Build(testInput())
}

func TestBuild(t *testing.T) {
	//** Act
	run := build(t)

	//** Assert
	assert.NotEmpty(t, run.Id)
	assert.Equal(t, uint64(seed), run.Seed)
	assert.Len(t, run.Grids, 10)
	assert.Empty(t, run.Gaps)
	assert.Empty(t, run.Conflicts)

	for _, result := range run.Results {
		assert.LessOrEqual(t, result.Actual.Lectures, result.Required.Lectures)
		assert.LessOrEqual(t, result.Actual.Tutorials, result.Required.Tutorials)
		assert.LessOrEqual(t, result.Actual.Labs, result.Required.Labs)
	}

	grid, ok := run.Grid(3, "CSE-A", model.PreMid)
	require.True(t, ok)
	assert.Equal(t, "Sem3_CSE-A_Pre-Mid", grid.SheetName())
	_, ok = run.Grid(5, "CSE-A", model.PreMid)
	assert.False(t, ok)
}

func TestBuildIsReproducible(t *testing.T) {
	run1, run2 := build(t), build(t)

	assert.NotEqual(t, run1.Id, run2.Id)
	require.Len(t, run2.Grids, len(run1.Grids))
	for i := range run1.Grids {
		assert.Equal(t, run1.Grids[i].Rows(), run2.Grids[i].Rows())
	}
	assert.Equal(t, run1.Results, run2.Results)
}

func TestBuildSharesElectivesAcrossSections(t *testing.T) {
	//** Act
	run := build(t)

	//** Assert
	common := run.Electives[3]
	require.NotEmpty(t, common)
	for _, department := range []string{"CSE-A", "CSE-B"} {
		for _, session := range model.Sessions {
			meetings := run.Meetings(3, department, session, "CS350")[model.Lecture]
			placed := lo.Map(meetings, func(meeting model.Meeting, _ int) allocation.SlotPair {
				return allocation.SlotPair{Day: meeting.Day, Start: meeting.Start}
			})
			assert.Equal(t, common, placed, "%v %v", department, session)

			result, ok := run.Result(3, department, session, "CS350")
			require.True(t, ok)
			assert.True(t, result.Elective)
			assert.Empty(t, result.Room)
		}
	}
}

func TestBuildKeepsMinorBlockInEveryGrid(t *testing.T) {
	run := build(t)

	for _, semester := range []int{3, 5} {
		assert.Len(t, run.Minor[semester], model.DefaultCalendar().MinorPerWeek)
	}
	for _, grid := range run.Grids {
		pair := run.Minor[grid.Semester][0]
		assert.Equal(t, "Minor (Minor)", grid.Label(model.Cell{Day: pair.Day, Slot: pair.Start}), grid.SheetName())
	}
}

func TestBuildAssignsRooms(t *testing.T) {
	//** Act
	run := build(t)

	//** Assert
	result, ok := run.Result(3, "CSE-A", model.PreMid, "CS301")
	require.True(t, ok)
	assert.Equal(t, model.FullyScheduled, result.Status)
	assert.Equal(t, "C103", result.Room)
	assert.Equal(t, "L101 + L102", result.LabRoom)

	labs := run.Meetings(3, "CSE-A", model.PreMid, "CS301")[model.Lab]
	require.Len(t, labs, 1)
	assert.Len(t, labs[0].Slots, model.DefaultCalendar().Durations.Lab)

	result, ok = run.Result(3, "DSAI", model.PreMid, "DS301")
	require.True(t, ok)
	assert.Empty(t, result.LabRoom)
}

func TestBuildReportsGaps(t *testing.T) {
	//** Arrange
	calendar := model.DefaultCalendar()
	calendar.Durations.Lab = len(calendar.Slots) + 1
	input := model.ModelInput{
		Courses: []model.CourseRequirement{
			{Code: "EC101", Department: "ECE", Semester: 1, Credits: 3, Lectures: 2},
			{Code: "EC102", Department: "ECE", Semester: 1, Credits: 3, Labs: 1},
		},
	}

	//** Act
	run := NewTimetabler(calendar, model.DefaultPolicy(), seed, nil).Build(input)

	//** Assert
	gaps := lo.Filter(run.Gaps, func(gap Gap, _ int) bool { return gap.Code == "EC102" })
	require.Len(t, gaps, 2)
	assert.Equal(t, "never scheduled", gaps[0].Reason)
	assert.Len(t, lo.Filter(run.Shortfalls, func(shortfall SessionShortfall, _ int) bool { return shortfall.Code == "EC102" }), 2)

	result, ok := run.Result(1, "ECE", model.PostMid, "EC102")
	require.True(t, ok)
	assert.Equal(t, model.Unscheduled, result.Status)
	assert.Empty(t, result.Room)
	assert.Empty(t, result.LabRoom)
}

func TestVerify(t *testing.T) {
	timetabler := NewTimetabler(model.DefaultCalendar(), model.DefaultPolicy(), seed, nil)

	t.Run("Clean run", func(t *testing.T) {
		run := timetabler.Build(testInput())

		assert.Empty(t, timetabler.Verify(run))
	})

	t.Run("Counts above requirement", func(t *testing.T) {
		run := timetabler.Build(testInput())
		run.Results[0].Actual.Lectures += 2

		violations := timetabler.Verify(run)
		require.Len(t, violations, 1)
		assert.Contains(t, violations[0].Message, "scheduled more than required")
	})

	t.Run("Missing minor block", func(t *testing.T) {
		run := timetabler.Build(testInput())
		pair := run.Minor[3][0]
		run.Minor[3][0] = allocation.SlotPair{Day: pair.Day, Start: "10:00-10:30"}

		violations := timetabler.Verify(run)
		assert.NotEmpty(t, violations)
		assert.True(t, lo.EveryBy(violations, func(violation Violation) bool { return violation.Semester == 3 }))
	})
}
