package model

// CellIndexer gives a unique index to each (day, slot) position of a calendar and vice versa
type CellIndexer interface {
	// Returns a unique index for the day and slot positions
	Index(day, slot uint64) uint64
	// Returns the day and slot positions of a unique index
	Attributes(index uint64) (day uint64, slot uint64)
	// Returns the number of distinct indices
	Size() uint64
}

func NewCellIndexer(days, slots uint64) CellIndexer {
	return &indexerImplementation{
		days:  days,
		slots: slots,
	}
}

// CellIndex resolves a labelled cell to its index, false when the labels are unknown to the calendar
func CellIndex(calendar Calendar, indexer CellIndexer, cell Cell) (uint64, bool) {
	day, ok := calendar.DayIndex(cell.Day)
	if !ok {
		return 0, false
	}
	slot, ok := calendar.SlotIndex(cell.Slot)
	if !ok {
		return 0, false
	}
	return indexer.Index(uint64(day), uint64(slot)), true
}
