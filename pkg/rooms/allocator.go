package rooms

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Demand describes the cells a course needs rooms for
type Demand struct {
	Semester   int
	Department string
	Session    model.Session
	Code       string
	Enrollment int
	JoinKey    string // Combined group and course for combined classes, empty otherwise
	Cells      []model.Cell
}

type RoomAllocator interface {
	// Books lecture and tutorial rooms and returns the room identifier or VariesLabel. Empty when there is nothing to
	// book, UnassignedLabel when nothing could be booked
	AssignLectureRoom(demand Demand) string
	// Books lab room pairs and returns the "A + B" label or VariesLabel. Empty when there is nothing to book,
	// UnassignedLabel when nothing could be booked
	AssignLabRooms(demand Demand) string
}

type roomPair struct {
	first  model.RoomRecord
	second model.RoomRecord
}

func (pair roomPair) label() string {
	return fmt.Sprintf("%v + %v", pair.first.Id, pair.second.Id)
}

func (pair roomPair) capacity() int {
	return pair.first.Capacity + pair.second.Capacity
}

type roomAllocatorImplementation struct {
	calendar   model.Calendar
	classrooms []model.RoomRecord // Catalog sorted by capacity and identifier
	catalog    []model.RoomRecord
	evaluator  model.PredicateEvaluator
	occupancy  *RoomOccupancyRegistry
	logger     *zap.Logger
}

func NewRoomAllocator(calendar model.Calendar, catalog []model.RoomRecord, evaluator model.PredicateEvaluator, occupancy *RoomOccupancyRegistry, logger *zap.Logger) RoomAllocator {
	if logger == nil {
		logger = zap.NewNop()
	}

	sorted := sortRooms(catalog)
	classrooms := lo.Filter(sorted, func(room model.RoomRecord, _ int) bool { return !room.Category.IsLab() })
	if len(classrooms) == 0 {
		classrooms = sorted
	}

	return &roomAllocatorImplementation{
		calendar:   calendar,
		classrooms: classrooms,
		catalog:    sorted,
		evaluator:  evaluator,
		occupancy:  occupancy,
		logger:     logger,
	}
}

func (allocator *roomAllocatorImplementation) AssignLectureRoom(demand Demand) string {
	cells := allocator.units(demand.Cells)
	if len(cells) == 0 {
		return ""
	}
	if len(allocator.classrooms) == 0 {
		allocator.unassigned(demand, "no classrooms")
		return model.UnassignedLabel
	}
	fits := func(room model.RoomRecord) bool { return allocator.evaluator.Fits(room, demand.Enrollment) }

	//** Single room for every meeting
	if room, ok := lo.Find(allocator.classrooms, func(room model.RoomRecord) bool {
		return fits(room) && allocator.occupancy.FreeAll(demand.Semester, cells, demand.JoinKey, room.Id)
	}); ok {
		for _, cell := range cells {
			allocator.book(demand, cell, room.Id)
		}
		return room.Id
	}

	//** Room per meeting
	booked := 0
	for _, cell := range cells {
		free := func(room model.RoomRecord) bool {
			return allocator.occupancy.Free(demand.Semester, cell, room.Id, demand.JoinKey)
		}
		room, ok := lo.Find(allocator.classrooms, func(room model.RoomRecord) bool { return fits(room) && free(room) })
		if !ok {
			room, ok = lo.Find(allocator.classrooms, free)
		}
		if !ok {
			allocator.logger.Warn("no free room",
				zap.Int("semester", demand.Semester),
				zap.String("department", demand.Department),
				zap.String("course", demand.Code),
				zap.String("day", string(cell.Day)),
				zap.String("slot", string(cell.Slot)),
			)
			continue
		}
		allocator.book(demand, cell, room.Id)
		booked++
	}
	if booked == 0 {
		allocator.unassigned(demand, "no classroom free for any meeting")
		return model.UnassignedLabel
	}
	return model.VariesLabel
}

func (allocator *roomAllocatorImplementation) AssignLabRooms(demand Demand) string {
	cells := allocator.units(demand.Cells)
	pool := allocator.labPool(demand.Department)
	if len(cells) == 0 {
		return ""
	}
	if len(pool) < 2 {
		allocator.unassigned(demand, "lab pool has fewer than two rooms", zap.Int("pool", len(pool)))
		return model.UnassignedLabel
	}
	adjacentPairs, otherPairs := allocator.pairs(pool, demand.Enrollment)

	//** Single pair for every meeting
	freeForAll := func(pair roomPair) bool {
		return allocator.occupancy.FreeAll(demand.Semester, cells, demand.JoinKey, pair.first.Id, pair.second.Id)
	}
	pair, ok := lo.Find(adjacentPairs, freeForAll)
	if !ok {
		pair, ok = lo.Find(otherPairs, freeForAll)
	}
	if ok {
		for _, cell := range cells {
			allocator.book(demand, cell, pair.first.Id)
			allocator.book(demand, cell, pair.second.Id)
		}
		return pair.label()
	}

	//** Pair per meeting
	labels := make([]string, 0)
	for _, cell := range cells {
		free := func(room model.RoomRecord) bool {
			return allocator.occupancy.Free(demand.Semester, cell, room.Id, demand.JoinKey)
		}
		pair, ok := lo.Find(adjacentPairs, func(pair roomPair) bool { return free(pair.first) && free(pair.second) })
		if !ok {
			if freeRooms := lo.Filter(pool, func(room model.RoomRecord, _ int) bool { return free(room) }); len(freeRooms) >= 2 {
				pair, ok = roomPair{first: freeRooms[0], second: freeRooms[1]}, true
			}
		}
		if !ok {
			allocator.logger.Warn("no free lab pair",
				zap.Int("semester", demand.Semester),
				zap.String("department", demand.Department),
				zap.String("course", demand.Code),
				zap.String("day", string(cell.Day)),
				zap.String("slot", string(cell.Slot)),
			)
			continue
		}
		allocator.book(demand, cell, pair.first.Id)
		allocator.book(demand, cell, pair.second.Id)
		labels = append(labels, pair.label())
	}

	switch labels = lo.Uniq(labels); len(labels) {
	case 0:
		allocator.unassigned(demand, "no lab pair free for any meeting")
		return model.UnassignedLabel
	case 1:
		return labels[0]
	}
	return model.VariesLabel
}

func (allocator *roomAllocatorImplementation) unassigned(demand Demand, reason string, fields ...zap.Field) {
	allocator.logger.Warn("scheduled meetings left without a room", append([]zap.Field{
		zap.Int("semester", demand.Semester),
		zap.String("department", demand.Department),
		zap.String("course", demand.Code),
		zap.String("reason", reason),
	}, fields...)...)
}

// Department lab category, then every lab, then the whole catalog
func (allocator *roomAllocatorImplementation) labPool(department string) []model.RoomRecord {
	if category, ok := allocator.evaluator.LabCategory(department); ok {
		if pool := lo.Filter(allocator.catalog, func(room model.RoomRecord, _ int) bool { return room.Category == category }); len(pool) > 0 {
			return pool
		}
	}
	if labs := lo.Filter(allocator.catalog, func(room model.RoomRecord, _ int) bool { return room.Category.IsLab() }); len(labs) > 0 {
		return labs
	}
	return allocator.catalog
}

// Adjacent pairs and remaining pairs, each with capacity-fitting pairs first
func (allocator *roomAllocatorImplementation) pairs(pool []model.RoomRecord, need int) (adjacent []roomPair, other []roomPair) {
	for i := range pool {
		for j := i + 1; j < len(pool); j++ {
			pair := roomPair{first: pool[i], second: pool[j]}
			if Adjacent(pair.first.Id, pair.second.Id) {
				adjacent = append(adjacent, pair)
			} else {
				other = append(other, pair)
			}
		}
	}

	fitsFirst := func(pair1, pair2 roomPair) int {
		fits1 := allocator.evaluator.Fits(model.RoomRecord{Capacity: pair1.capacity()}, need)
		fits2 := allocator.evaluator.Fits(model.RoomRecord{Capacity: pair2.capacity()}, need)
		switch {
		case fits1 && !fits2:
			return -1
		case !fits1 && fits2:
			return 1
		}
		return 0
	}
	slices.SortStableFunc(adjacent, fitsFirst)
	slices.SortStableFunc(other, fitsFirst)
	return adjacent, other
}

// Distinct cells in calendar order
func (allocator *roomAllocatorImplementation) units(cells []model.Cell) []model.Cell {
	units := lo.Uniq(cells)
	slices.SortFunc(units, allocator.calendar.Compare)
	return units
}

func (allocator *roomAllocatorImplementation) book(demand Demand, cell model.Cell, room string) {
	allocator.occupancy.Book(demand.Semester, cell, Booking{
		Room:       room,
		Department: demand.Department,
		Code:       demand.Code,
		Session:    demand.Session,
		Enrollment: demand.Enrollment,
		JoinKey:    demand.JoinKey,
	})
}

func sortRooms(rooms []model.RoomRecord) []model.RoomRecord {
	sorted := slices.Clone(rooms)
	slices.SortStableFunc(sorted, func(room1, room2 model.RoomRecord) int {
		if order := cmp.Compare(room1.Capacity, room2.Capacity); order != 0 {
			return order
		}
		return cmp.Compare(room1.Id, room2.Id)
	})
	return sorted
}
