package allocation

import (
	"slices"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
)

type occupancyKey struct {
	department string
	session    model.Session
}

// OccupancyRegistry tracks, per semester, the cells consumed by every (department, session).
// Different departments, and the other session of the same department, never block each other.
type OccupancyRegistry struct {
	bookings map[int]map[occupancyKey]map[model.Cell]model.Component
}

func NewOccupancyRegistry() *OccupancyRegistry {
	return &OccupancyRegistry{
		bookings: make(map[int]map[occupancyKey]map[model.Cell]model.Component),
	}
}

// Available reports whether every cell is free for the department and session. Cells holding the elective
// basket stay available to further electives.
func (registry *OccupancyRegistry) Available(semester int, department string, session model.Session, cells []model.Cell, component model.Component) bool {
	booked := registry.bookings[semester][occupancyKey{department, session}]
	return lo.EveryBy(cells, func(cell model.Cell) bool {
		bookedComponent, ok := booked[cell]
		return !ok || (component == model.Elective && bookedComponent == model.Elective)
	})
}

func (registry *OccupancyRegistry) Book(semester int, department string, session model.Session, cells []model.Cell, component model.Component) {
	semesterBookings, ok := registry.bookings[semester]
	if !ok {
		semesterBookings = make(map[occupancyKey]map[model.Cell]model.Component)
		registry.bookings[semester] = semesterBookings
	}
	key := occupancyKey{department, session}
	booked, ok := semesterBookings[key]
	if !ok {
		booked = make(map[model.Cell]model.Component)
		semesterBookings[key] = booked
	}
	for _, cell := range cells {
		booked[cell] = component
	}
}

// Booked returns the cells consumed by the department and session in calendar order
func (registry *OccupancyRegistry) Booked(calendar model.Calendar, semester int, department string, session model.Session) []model.Cell {
	cells := lo.Keys(registry.bookings[semester][occupancyKey{department, session}])
	slices.SortFunc(cells, calendar.Compare)
	return cells
}
