package model

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

var (
	ErrEmptyCalendar = errors.New("calendar must define at least one day and one slot")
	ErrUnknownSlot   = errors.New("slot is not part of the calendar")
)

type Day string

type Slot string

// Cell is a single (day, slot) position of the weekly grid
type Cell struct {
	Day  Day
	Slot Slot
}

type Durations struct {
	Lecture  int `mapstructure:"lecture"`
	Tutorial int `mapstructure:"tutorial"`
	Lab      int `mapstructure:"lab"`
	Minor    int `mapstructure:"minor"`
}

// Budgets bounds the number of random draws each placement search may perform
type Budgets struct {
	Lecture  int `mapstructure:"lecture"`
	Tutorial int `mapstructure:"tutorial"`
	Lab      int `mapstructure:"lab"`
	Elective int `mapstructure:"elective"`
	Minor    int `mapstructure:"minor"`
	Combined int `mapstructure:"combined"`
}

type Calendar struct {
	Days               []Day     `mapstructure:"days"`
	Slots              []Slot    `mapstructure:"slots"`
	LunchSlots         []Slot    `mapstructure:"lunch_slots"`
	MinorSlots         []Slot    `mapstructure:"minor_slots"`
	Durations          Durations `mapstructure:"durations"`
	MinorPerWeek       int       `mapstructure:"minor_per_week"`
	MinorFreeSemesters []int     `mapstructure:"minor_free_semesters"`
	Budgets            Budgets   `mapstructure:"budgets"`
}

func DefaultCalendar() Calendar {
	return Calendar{
		Days: []Day{"MON", "TUE", "WED", "THU", "FRI"},
		Slots: []Slot{
			"07:30-08:00", "08:00-08:30", "08:30-09:00", "09:00-09:30",
			"09:30-10:00", "10:00-10:30", "10:30-11:00", "11:00-11:30",
			"11:30-12:00", "12:00-12:30", "12:30-13:00", "13:00-13:30",
			"13:30-14:00", "14:00-14:30", "14:30-15:00", "15:00-15:30",
			"15:30-16:00", "16:00-16:30", "16:30-17:00", "17:00-17:30",
		},
		LunchSlots: []Slot{"13:00-13:30", "13:30-14:00"},
		MinorSlots: []Slot{"07:30-08:00", "08:00-08:30"},
		Durations: Durations{
			Lecture:  3,
			Tutorial: 2,
			Lab:      4,
			Minor:    2,
		},
		MinorPerWeek:       2,
		MinorFreeSemesters: []int{1},
		Budgets: Budgets{
			Lecture:  2000,
			Tutorial: 1000,
			Lab:      1000,
			Elective: 1000,
			Minor:    200,
			Combined: 1500,
		},
	}
}

func (calendar Calendar) Validate() error {
	if len(calendar.Days) == 0 || len(calendar.Slots) == 0 {
		return ErrEmptyCalendar
	}
	for _, slot := range append(slices.Clone(calendar.LunchSlots), calendar.MinorSlots...) {
		if !slices.Contains(calendar.Slots, slot) {
			return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
		}
	}
	if lo.SomeBy(calendar.componentDurations(), func(duration int) bool { return duration <= 0 }) {
		return fmt.Errorf("component durations must be positive: %+v", calendar.Durations)
	}
	if len(lo.Uniq(calendar.Days)) != len(calendar.Days) || len(lo.Uniq(calendar.Slots)) != len(calendar.Slots) {
		return errors.New("calendar days and slots must be unique")
	}
	return nil
}

func (calendar Calendar) componentDurations() []int {
	return []int{calendar.Durations.Lecture, calendar.Durations.Tutorial, calendar.Durations.Lab, calendar.Durations.Minor}
}

func (calendar Calendar) DayIndex(day Day) (int, bool) {
	index := slices.Index(calendar.Days, day)
	return index, index >= 0
}

func (calendar Calendar) SlotIndex(slot Slot) (int, bool) {
	index := slices.Index(calendar.Slots, slot)
	return index, index >= 0
}

func (calendar Calendar) IsLunch(slot Slot) bool {
	return slices.Contains(calendar.LunchSlots, slot)
}

func (calendar Calendar) IsMinor(slot Slot) bool {
	return slices.Contains(calendar.MinorSlots, slot)
}

// IsRegular reports whether the slot can host lectures, tutorials and labs
func (calendar Calendar) IsRegular(slot Slot) bool {
	return !calendar.IsLunch(slot) && !calendar.IsMinor(slot)
}

func (calendar Calendar) Duration(component Component) int {
	switch component {
	case Lecture, Elective:
		return calendar.Durations.Lecture
	case Tutorial:
		return calendar.Durations.Tutorial
	case Lab:
		return calendar.Durations.Lab
	case Minor:
		return calendar.Durations.Minor
	}
	return 0
}

func (calendar Calendar) Budget(component Component) int {
	switch component {
	case Lecture:
		return calendar.Budgets.Lecture
	case Tutorial:
		return calendar.Budgets.Tutorial
	case Lab:
		return calendar.Budgets.Lab
	case Elective:
		return calendar.Budgets.Elective
	case Minor:
		return calendar.Budgets.Minor
	}
	return 0
}

// Window returns the contiguous run of slots of the given length starting at start
func (calendar Calendar) Window(start Slot, duration int) ([]Slot, bool) {
	index, ok := calendar.SlotIndex(start)
	if !ok || duration <= 0 || index+duration > len(calendar.Slots) {
		return nil, false
	}
	return calendar.Slots[index : index+duration], true
}

func (calendar Calendar) HasMinor(semester int) bool {
	return calendar.MinorPerWeek > 0 && !slices.Contains(calendar.MinorFreeSemesters, semester)
}

// Cells expands a (day, start) pair into the cells covered by a component of the given duration
func (calendar Calendar) Cells(day Day, start Slot, duration int) []Cell {
	window, ok := calendar.Window(start, duration)
	if !ok {
		return nil
	}
	return lo.Map(window, func(slot Slot, _ int) Cell { return Cell{Day: day, Slot: slot} })
}

// Compare orders cells by day and then by slot according to the calendar
func (calendar Calendar) Compare(cell1, cell2 Cell) int {
	day1, _ := calendar.DayIndex(cell1.Day)
	day2, _ := calendar.DayIndex(cell2.Day)
	if day1 != day2 {
		return day1 - day2
	}
	slot1, _ := calendar.SlotIndex(cell1.Slot)
	slot2, _ := calendar.SlotIndex(cell2.Slot)
	return slot1 - slot2
}
