package model

import (
	"slices"
	"strings"
)

const (
	FreeLabel       = "Free"
	LunchLabel      = "LUNCH BREAK"
	VariesLabel     = "VARIES"
	UnassignedLabel = "UNASSIGNED" // Room label of meetings that need a room but got none

	basketSeparator = " / "
)

type GridCell struct {
	Component Component
	Codes     []string // More than one code only for the elective basket
	Lunch     bool
}

func (cell GridCell) Free() bool {
	return !cell.Lunch && len(cell.Codes) == 0
}

func (cell GridCell) Label() string {
	if cell.Lunch {
		return LunchLabel
	}
	if len(cell.Codes) == 0 {
		return FreeLabel
	}
	return strings.Join(cell.Codes, basketSeparator) + cell.Component.Suffix()
}

// ScheduleGrid is the weekly table of one (semester, department, session)
type ScheduleGrid struct {
	Semester   int
	Department string
	Session    Session

	calendar Calendar
	indexer  CellIndexer
	cells    []GridCell
}

func NewScheduleGrid(calendar Calendar, semester int, department string, session Session) *ScheduleGrid {
	indexer := NewCellIndexer(uint64(len(calendar.Days)), uint64(len(calendar.Slots)))
	grid := &ScheduleGrid{
		Semester:   semester,
		Department: department,
		Session:    session,
		calendar:   calendar,
		indexer:    indexer,
		cells:      make([]GridCell, indexer.Size()),
	}

	for index := range grid.cells {
		_, slot := indexer.Attributes(uint64(index))
		grid.cells[index].Lunch = calendar.IsLunch(calendar.Slots[slot])
	}
	return grid
}

func (grid *ScheduleGrid) Calendar() Calendar {
	return grid.calendar
}

func (grid *ScheduleGrid) Cell(cell Cell) (GridCell, bool) {
	index, ok := CellIndex(grid.calendar, grid.indexer, cell)
	if !ok {
		return GridCell{}, false
	}
	return grid.cells[index], true
}

func (grid *ScheduleGrid) Free(cell Cell) bool {
	gridCell, ok := grid.Cell(cell)
	return ok && gridCell.Free()
}

// Accepts reports whether a component can be written in every cell: free cells always, elective basket cells for electives
func (grid *ScheduleGrid) Accepts(cells []Cell, component Component) bool {
	for _, cell := range cells {
		gridCell, ok := grid.Cell(cell)
		if !ok {
			return false
		}
		if gridCell.Free() {
			continue
		}
		if component != Elective || gridCell.Component != Elective {
			return false
		}
	}
	return true
}

// Mark writes the course code into every cell, joining the elective basket when the cell already holds electives
func (grid *ScheduleGrid) Mark(cells []Cell, code string, component Component) {
	for _, cell := range cells {
		index, ok := CellIndex(grid.calendar, grid.indexer, cell)
		if !ok {
			continue
		}
		gridCell := &grid.cells[index]
		if component == Elective && gridCell.Component == Elective && len(gridCell.Codes) > 0 {
			if !slices.Contains(gridCell.Codes, code) {
				gridCell.Codes = append(gridCell.Codes, code)
			}
			continue
		}
		gridCell.Component = component
		gridCell.Codes = []string{code}
	}
}

func (grid *ScheduleGrid) Label(cell Cell) string {
	gridCell, _ := grid.Cell(cell)
	return gridCell.Label()
}

// Rows renders the grid as a table: a header of slots followed by one row per day
func (grid *ScheduleGrid) Rows() [][]string {
	header := make([]string, 0, len(grid.calendar.Slots)+1)
	header = append(header, "Day")
	for _, slot := range grid.calendar.Slots {
		header = append(header, string(slot))
	}

	rows := [][]string{header}
	for _, day := range grid.calendar.Days {
		row := make([]string, 0, len(header))
		row = append(row, string(day))
		for _, slot := range grid.calendar.Slots {
			row = append(row, grid.Label(Cell{Day: day, Slot: slot}))
		}
		rows = append(rows, row)
	}
	return rows
}

// Placements lists every occupied cell in calendar order
func (grid *ScheduleGrid) Placements() []Placement {
	placements := make([]Placement, 0)
	for index, gridCell := range grid.cells {
		if gridCell.Lunch || len(gridCell.Codes) == 0 {
			continue
		}
		day, slot := grid.indexer.Attributes(uint64(index))
		for _, code := range gridCell.Codes {
			placements = append(placements, Placement{
				Day:       grid.calendar.Days[day],
				Slot:      grid.calendar.Slots[slot],
				Code:      code,
				Component: gridCell.Component,
			})
		}
	}
	return placements
}

func (grid *ScheduleGrid) SheetName() string {
	return SheetName(grid.Semester, grid.Department, grid.Session)
}
