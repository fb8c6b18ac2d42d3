package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCalendarIsValid(t *testing.T) {
	calendar := DefaultCalendar()

	assert.NoError(t, calendar.Validate())
	assert.Len(t, calendar.Slots, 20)
	assert.True(t, calendar.IsLunch("13:00-13:30"))
	assert.True(t, calendar.IsMinor("07:30-08:00"))
	assert.False(t, calendar.IsRegular("08:00-08:30"))
	assert.True(t, calendar.IsRegular("08:30-09:00"))
}

func TestCalendarValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Calendar)
	}{
		{name: "no days", mutate: func(calendar *Calendar) { calendar.Days = nil }},
		{name: "unknown lunch slot", mutate: func(calendar *Calendar) { calendar.LunchSlots = []Slot{"12:45-13:15"} }},
		{name: "zero duration", mutate: func(calendar *Calendar) { calendar.Durations.Lab = 0 }},
		{name: "duplicated day", mutate: func(calendar *Calendar) { calendar.Days = []Day{"MON", "MON"} }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			calendar := DefaultCalendar()
			test.mutate(&calendar)

			// Act
			err := calendar.Validate()

			// Assert
			assert.Error(t, err)
		})
	}
}

func TestWindow(t *testing.T) {
	calendar := DefaultCalendar()

	window, ok := calendar.Window("09:00-09:30", 3)
	require.True(t, ok)
	assert.Equal(t, []Slot{"09:00-09:30", "09:30-10:00", "10:00-10:30"}, window)

	// A window running past the last slot does not exist
	_, ok = calendar.Window("16:30-17:00", 3)
	assert.False(t, ok)

	_, ok = calendar.Window("25:00-25:30", 1)
	assert.False(t, ok)
}

func TestCellsAndCompare(t *testing.T) {
	calendar := DefaultCalendar()

	cells := calendar.Cells("TUE", "14:00-14:30", calendar.Duration(Lab))
	require.Len(t, cells, 4)
	assert.Equal(t, Cell{Day: "TUE", Slot: "15:30-16:00"}, cells[3])

	assert.Negative(t, calendar.Compare(Cell{"MON", "17:00-17:30"}, Cell{"TUE", "07:30-08:00"}))
	assert.Positive(t, calendar.Compare(Cell{"TUE", "09:00-09:30"}, Cell{"TUE", "08:30-09:00"}))
	assert.Zero(t, calendar.Compare(Cell{"FRI", "09:00-09:30"}, Cell{"FRI", "09:00-09:30"}))
}

func TestDurationsAndBudgets(t *testing.T) {
	calendar := DefaultCalendar()

	assert.Equal(t, calendar.Durations.Lecture, calendar.Duration(Elective))
	assert.Equal(t, 2, calendar.Duration(Minor))
	assert.Equal(t, calendar.Budgets.Elective, calendar.Budget(Elective))
	assert.Equal(t, 2000, calendar.Budget(Lecture))
}

func TestHasMinor(t *testing.T) {
	calendar := DefaultCalendar()

	assert.False(t, calendar.HasMinor(1))
	assert.True(t, calendar.HasMinor(3))

	calendar.MinorPerWeek = 0
	assert.False(t, calendar.HasMinor(3))
}
