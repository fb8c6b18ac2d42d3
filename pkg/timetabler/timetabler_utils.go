package timetabler

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/limaJavier/timegrid/pkg/allocation"
	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
)

func (timetabler *standardTimetabler) Verify(run Run) []Violation {
	return verify(run, timetabler.calendar)
}

func verify(run Run, calendar model.Calendar) []Violation {
	violations := make([]Violation, 0)
	report := func(result model.AllocationResult, format string, args ...any) {
		violations = append(violations, Violation{
			Semester:   result.Semester,
			Department: result.Department,
			Session:    result.Session,
			Message:    fmt.Sprintf(format, args...),
		})
	}

	//** Initialize per (semester, department, session) cell assistance
	assistance := make(map[resultKey]map[model.Cell][]model.Component)
	for _, result := range run.Results {
		key := resultKey{result.Semester, result.Department, result.Session, ""}
		if _, ok := assistance[key]; !ok {
			assistance[key] = make(map[model.Cell][]model.Component)
		}

		// Check that actual counts never exceed required counts
		if result.Actual.Lectures > result.Required.Lectures ||
			result.Actual.Tutorials > result.Required.Tutorials ||
			result.Actual.Labs > result.Required.Labs {
			report(result, "course %v scheduled more than required: %+v > %+v", result.Code, result.Actual, result.Required)
		}

		meetings := run.Meetings(result.Semester, result.Department, result.Session, result.Code)
		for component, componentMeetings := range meetings {
			if component == model.Lecture && result.Elective {
				component = model.Elective
			}

			// Check that every meeting is a contiguous run of the component's duration
			for _, meeting := range componentMeetings {
				window, ok := calendar.Window(meeting.Start, calendar.Duration(component))
				if !ok || !slices.Equal(window, meeting.Slots) {
					report(result, "course %v has a malformed %v meeting on %v at %v", result.Code, component, meeting.Day, meeting.Start)
				}
				for _, cell := range meeting.Cells() {
					assistance[key][cell] = append(assistance[key][cell], component)
				}
			}

			// Check that elective lectures use the common elective placements
			if component == model.Elective {
				common := run.Electives[result.Semester]
				placed := lo.Map(componentMeetings, func(meeting model.Meeting, _ int) allocation.SlotPair {
					return allocation.SlotPair{Day: meeting.Day, Start: meeting.Start}
				})
				if lo.SomeBy(placed, func(pair allocation.SlotPair) bool { return !slices.Contains(common, pair) }) {
					report(result, "elective %v is not scheduled at the common elective placements", result.Code)
				}
			}
		}
	}

	//** Check that no department-session cell is used twice, except by the elective basket
	for key, cells := range assistance {
		for cell, components := range cells {
			if len(components) > 1 && lo.SomeBy(components, func(component model.Component) bool { return component != model.Elective }) {
				violations = append(violations, Violation{
					Semester:   key.semester,
					Department: key.department,
					Session:    key.session,
					Message:    fmt.Sprintf("%v %v is booked %d times", cell.Day, cell.Slot, len(components)),
				})
			}
		}
	}

	//** Check that every grid carries the semester's minor block
	for _, grid := range run.Grids {
		pairs, ok := run.Minor[grid.Semester]
		if !ok {
			continue
		}
		for _, pair := range pairs {
			for _, cell := range calendar.Cells(pair.Day, pair.Start, calendar.Durations.Minor) {
				gridCell, _ := grid.Cell(cell)
				if gridCell.Component != model.Minor || !slices.Contains(gridCell.Codes, allocation.MinorCode) {
					violations = append(violations, Violation{
						Semester:   grid.Semester,
						Department: grid.Department,
						Session:    grid.Session,
						Message:    fmt.Sprintf("minor block missing at %v %v", cell.Day, cell.Slot),
					})
				}
			}
		}
	}

	slices.SortStableFunc(violations, func(violation1, violation2 Violation) int {
		if violation1.Semester != violation2.Semester {
			return cmp.Compare(violation1.Semester, violation2.Semester)
		}
		if violation1.Department != violation2.Department {
			return cmp.Compare(violation1.Department, violation2.Department)
		}
		return cmp.Compare(violation1.Session, violation2.Session)
	})
	return violations
}
