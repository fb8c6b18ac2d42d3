package rooms

import (
	"testing"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(catalog []model.RoomRecord) ConflictValidator {
	return NewConflictValidator(calendar, catalog, model.NewPredicateEvaluator(model.DefaultPolicy()), nil)
}

func booking(room, department, code string) Booking {
	return Booking{Room: room, Department: department, Code: code, Session: model.PreMid}
}

func TestValidateWithoutConflicts(t *testing.T) {
	//** Arrange
	registry := NewRoomOccupancyRegistry()
	cell := model.Cell{Day: "MON", Slot: "09:00-09:30"}
	registry.Book(3, cell, booking("C101", "CSE-A", "CS301"))
	registry.Book(3, cell, booking("C102", "ECE", "EC301"))
	registry.Book(5, cell, booking("C101", "CSE-A", "CS501"))

	//** Act
	conflicts := newValidator(catalog).Validate(registry)

	//** Assert
	assert.Empty(t, conflicts)
}

func TestValidateReportsEveryConflict(t *testing.T) {
	//** Arrange
	registry := NewRoomOccupancyRegistry()
	cell1 := model.Cell{Day: "MON", Slot: "09:00-09:30"}
	cell2 := model.Cell{Day: "FRI", Slot: "15:00-15:30"}
	registry.Book(3, cell1, booking("C101", "CSE-A", "CS301"))
	registry.Book(3, cell1, booking("C101", "ECE", "EC301"))
	registry.Book(3, cell2, booking("C102", "DSAI", "DS301"))
	registry.Book(3, cell2, booking("C102", "ECE", "EC302"))

	//** Act
	conflicts := newValidator(catalog).Validate(registry)

	//** Assert
	require.Len(t, conflicts, 2)

	assert.Equal(t, model.Day("MON"), conflicts[0].Day)
	assert.Equal(t, "C101", conflicts[0].Room)
	assert.Equal(t, []Entry{
		{Department: "CSE-A", Code: "CS301", Session: model.PreMid},
		{Department: "ECE", Code: "EC301", Session: model.PreMid},
	}, conflicts[0].Entries)

	assert.Equal(t, model.Day("FRI"), conflicts[1].Day)
	assert.Equal(t, "C102", conflicts[1].Room)
}

func TestValidateSuggestsFreeRoom(t *testing.T) {
	//** Arrange
	classrooms := catalog[:2]
	registry := NewRoomOccupancyRegistry()
	cell := model.Cell{Day: "TUE", Slot: "11:00-11:30"}
	registry.Book(3, cell, booking("C101", "CSE-A", "CS301"))
	registry.Book(3, cell, booking("C101", "ECE", "EC301"))

	//** Act
	conflicts := newValidator(classrooms).Validate(registry)

	//** Assert
	require.Len(t, conflicts, 1)
	require.Len(t, conflicts[0].Suggestion, 1)
	reassignment := conflicts[0].Suggestion[0]
	assert.Equal(t, "C101", reassignment.From)
	assert.Equal(t, "C102", reassignment.To)
	assert.Contains(t, []string{"CS301", "EC301"}, reassignment.Code)
}

func TestValidateWithoutSuggestion(t *testing.T) {
	//** Arrange
	registry := NewRoomOccupancyRegistry()
	cell := model.Cell{Day: "TUE", Slot: "11:00-11:30"}
	first, second := booking("C101", "CSE-A", "CS301"), booking("C101", "ECE", "EC301")
	first.Enrollment, second.Enrollment = 50, 50
	registry.Book(3, cell, first)
	registry.Book(3, cell, second)

	//** Act
	conflicts := newValidator(catalog).Validate(registry)

	//** Assert
	require.Len(t, conflicts, 1)
	assert.Empty(t, conflicts[0].Suggestion)
}

func TestValidateIgnoresCombinedClasses(t *testing.T) {
	//** Arrange
	registry := NewRoomOccupancyRegistry()
	cell := model.Cell{Day: "WED", Slot: "10:00-10:30"}
	classD, classE := booking("C101", "DSAI", "MA301"), booking("C101", "ECE", "MA301")
	classD.JoinKey, classE.JoinKey = "DSAI_ECE/MA301", "DSAI_ECE/MA301"
	registry.Book(3, cell, classD)
	registry.Book(3, cell, classE)

	//** Act
	conflicts := newValidator(catalog).Validate(registry)

	//** Assert
	assert.Empty(t, conflicts)
}
