package allocation

import (
	"slices"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
)

// SlotPair is the (day, start slot) of one component instance
type SlotPair struct {
	Day   model.Day
	Start model.Slot
}

type combinedKey struct {
	group     string
	code      string
	component model.Component
}

// SharedSlotRegistry holds the placements that several departments must see at identical times. Every
// registry is first-writer-wins: once a placement is recorded it is only ever reused.
type SharedSlotRegistry struct {
	minor     map[int][]SlotPair // Semester -> minor block
	electives map[int][]SlotPair // Semester -> common elective placements
	combined  map[combinedKey][]SlotPair

	// Semester -> combined group -> cell -> course attending that cell as a combined class
	combinedCapacity map[int]map[string]map[model.Cell]string
}

func NewSharedSlotRegistry() *SharedSlotRegistry {
	return &SharedSlotRegistry{
		minor:            make(map[int][]SlotPair),
		electives:        make(map[int][]SlotPair),
		combined:         make(map[combinedKey][]SlotPair),
		combinedCapacity: make(map[int]map[string]map[model.Cell]string),
	}
}

func (registry *SharedSlotRegistry) Minor(semester int) ([]SlotPair, bool) {
	pairs, ok := registry.minor[semester]
	return slices.Clone(pairs), ok
}

func (registry *SharedSlotRegistry) RecordMinor(semester int, pairs []SlotPair) bool {
	return record(registry.minor, semester, pairs)
}

func (registry *SharedSlotRegistry) Electives(semester int) ([]SlotPair, bool) {
	pairs, ok := registry.electives[semester]
	return slices.Clone(pairs), ok
}

func (registry *SharedSlotRegistry) RecordElectives(semester int, pairs []SlotPair) bool {
	return record(registry.electives, semester, pairs)
}

// Combined returns the placements of a combined class, shared by the whole group across semesters
func (registry *SharedSlotRegistry) Combined(group, code string, component model.Component) ([]SlotPair, bool) {
	pairs, ok := registry.combined[combinedKey{group, code, component}]
	return slices.Clone(pairs), ok
}

func (registry *SharedSlotRegistry) RecordCombined(group, code string, component model.Component, pairs []SlotPair) bool {
	return record(registry.combined, combinedKey{group, code, component}, pairs)
}

// HasCombined reports whether any component of the course already has combined placements for the group
func (registry *SharedSlotRegistry) HasCombined(group, code string) bool {
	return lo.SomeBy(model.CourseComponents, func(component model.Component) bool {
		_, ok := registry.combined[combinedKey{group, code, component}]
		return ok
	})
}

// CombinedCapacityFree reports whether no other combined class of the group uses any of the cells in the semester
func (registry *SharedSlotRegistry) CombinedCapacityFree(semester int, group, code string, cells []model.Cell) bool {
	reserved := registry.combinedCapacity[semester][group]
	return lo.EveryBy(cells, func(cell model.Cell) bool {
		owner, ok := reserved[cell]
		return !ok || owner == code
	})
}

func (registry *SharedSlotRegistry) ReserveCombined(semester int, group, code string, cells []model.Cell) {
	groups, ok := registry.combinedCapacity[semester]
	if !ok {
		groups = make(map[string]map[model.Cell]string)
		registry.combinedCapacity[semester] = groups
	}
	reserved, ok := groups[group]
	if !ok {
		reserved = make(map[model.Cell]string)
		groups[group] = reserved
	}
	for _, cell := range cells {
		reserved[cell] = code
	}
}

func record[K comparable](registry map[K][]SlotPair, key K, pairs []SlotPair) bool {
	if _, ok := registry[key]; ok || len(pairs) == 0 {
		return false
	}
	registry[key] = slices.Clone(pairs)
	return true
}
