package model

import "fmt"

// Placement is one half-hour cell consumed by a course component
type Placement struct {
	Day       Day
	Slot      Slot
	Code      string
	Component Component
}

// Meeting is one component instance: a contiguous run of slots starting at Start
type Meeting struct {
	Day   Day
	Start Slot
	Slots []Slot
}

func (meeting Meeting) Cells() []Cell {
	cells := make([]Cell, 0, len(meeting.Slots))
	for _, slot := range meeting.Slots {
		cells = append(cells, Cell{Day: meeting.Day, Slot: slot})
	}
	return cells
}

type Counts struct {
	Lectures  int
	Tutorials int
	Labs      int
}

func (counts Counts) Of(component Component) int {
	switch component {
	case Lecture, Elective:
		return counts.Lectures
	case Tutorial:
		return counts.Tutorials
	case Lab:
		return counts.Labs
	}
	return 0
}

func (counts *Counts) Add(component Component, amount int) {
	switch component {
	case Lecture, Elective:
		counts.Lectures += amount
	case Tutorial:
		counts.Tutorials += amount
	case Lab:
		counts.Labs += amount
	}
}

func (counts Counts) Total() int {
	return counts.Lectures + counts.Tutorials + counts.Labs
}

type CourseStatus int

const (
	Unscheduled CourseStatus = iota
	PartiallyScheduled
	FullyScheduled
)

func (status CourseStatus) String() string {
	switch status {
	case PartiallyScheduled:
		return "partially scheduled"
	case FullyScheduled:
		return "fully scheduled"
	}
	return "unscheduled"
}

func StatusOf(required, actual Counts) CourseStatus {
	if actual.Total() == 0 && required.Total() > 0 {
		return Unscheduled
	}
	if actual.Lectures >= required.Lectures && actual.Tutorials >= required.Tutorials && actual.Labs >= required.Labs {
		return FullyScheduled
	}
	return PartiallyScheduled
}

type AllocationResult struct {
	Semester   int
	Department string
	Session    Session
	Code       string
	Name       string
	Required   Counts
	Actual     Counts
	Status     CourseStatus
	Room       string // Single room, VariesLabel, UnassignedLabel or empty when no room was needed
	LabRoom    string // "A + B", VariesLabel, UnassignedLabel or empty
	Elective   bool
	Combined   bool
}

func SheetName(semester int, department string, session Session) string {
	return fmt.Sprintf("Sem%d_%s_%s", semester, department, session)
}
