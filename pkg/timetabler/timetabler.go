package timetabler

import (
	"github.com/limaJavier/timegrid/pkg/allocation"
	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/limaJavier/timegrid/pkg/rooms"
)

type Timetabler interface {
	Build(input model.ModelInput) Run

	Verify(run Run) []Violation
}

// Gap is a course that should have been scheduled but was not accounted for
type Gap struct {
	Semester   int
	Department string
	Session    model.Session // Empty for division gaps
	Code       string
	Reason     string
}

type SessionShortfall struct {
	Semester   int
	Department string
	Session    model.Session
	allocation.Shortfall
}

type Violation struct {
	Semester   int
	Department string
	Session    model.Session
	Message    string
}

// Run is the outcome of one full generation over every semester of the input
type Run struct {
	Id         string
	Seed       uint64
	Grids      []*model.ScheduleGrid
	Results    []model.AllocationResult
	Conflicts  []rooms.Conflict
	Shortfalls []SessionShortfall
	Gaps       []Gap
	Minor      map[int][]allocation.SlotPair // Semester -> minor block
	Electives  map[int][]allocation.SlotPair // Semester -> common elective placements

	calendar model.Calendar
	meetings map[resultKey]map[model.Component][]model.Meeting
}

type resultKey struct {
	semester   int
	department string
	session    model.Session
	code       string
}

// Meetings returns the component instances placed for a course in one session
func (run Run) Meetings(semester int, department string, session model.Session, code string) map[model.Component][]model.Meeting {
	return run.meetings[resultKey{semester, department, session, code}]
}

func (run Run) Grid(semester int, department string, session model.Session) (*model.ScheduleGrid, bool) {
	for _, grid := range run.Grids {
		if grid.Semester == semester && grid.Department == department && grid.Session == session {
			return grid, true
		}
	}
	return nil, false
}

func (run Run) Result(semester int, department string, session model.Session, code string) (model.AllocationResult, bool) {
	for _, result := range run.Results {
		if result.Semester == semester && result.Department == department && result.Session == session && result.Code == code {
			return result, true
		}
	}
	return model.AllocationResult{}, false
}
