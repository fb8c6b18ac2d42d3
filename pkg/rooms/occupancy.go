package rooms

import (
	"cmp"
	"slices"

	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/samber/lo"
)

// Booking is one room reservation for one half-hour cell
type Booking struct {
	Room       string
	Department string
	Code       string
	Session    model.Session
	Enrollment int
	JoinKey    string // Non-empty for combined classes; bookings with the same key share the room
}

func (booking Booking) Entry() Entry {
	return Entry{
		Department: booking.Department,
		Code:       booking.Code,
		Session:    booking.Session,
	}
}

type bucketKey struct {
	semester int
	cell     model.Cell
}

// Bucket holds every booking of one (semester, day, slot)
type Bucket struct {
	Semester int
	Cell     model.Cell
	Bookings []Booking
}

// RoomOccupancyRegistry tracks, per semester, which rooms are in use at each cell and the bookings behind them
type RoomOccupancyRegistry struct {
	buckets map[bucketKey][]Booking
}

func NewRoomOccupancyRegistry() *RoomOccupancyRegistry {
	return &RoomOccupancyRegistry{
		buckets: make(map[bucketKey][]Booking),
	}
}

// Free reports whether the room can be booked at the cell. A room held only by bookings with the same
// non-empty join key is free for that key.
func (registry *RoomOccupancyRegistry) Free(semester int, cell model.Cell, room, joinKey string) bool {
	return lo.EveryBy(registry.buckets[bucketKey{semester, cell}], func(booking Booking) bool {
		return booking.Room != room || (joinKey != "" && booking.JoinKey == joinKey)
	})
}

// FreeAll reports whether every room is free at every cell
func (registry *RoomOccupancyRegistry) FreeAll(semester int, cells []model.Cell, joinKey string, rooms ...string) bool {
	return lo.EveryBy(cells, func(cell model.Cell) bool {
		return lo.EveryBy(rooms, func(room string) bool { return registry.Free(semester, cell, room, joinKey) })
	})
}

// Book records the booking without checking availability
func (registry *RoomOccupancyRegistry) Book(semester int, cell model.Cell, booking Booking) {
	key := bucketKey{semester, cell}
	registry.buckets[key] = append(registry.buckets[key], booking)
}

func (registry *RoomOccupancyRegistry) InUse(semester int, cell model.Cell) []string {
	return lo.Uniq(lo.Map(registry.buckets[bucketKey{semester, cell}], func(booking Booking, _ int) string { return booking.Room }))
}

// Buckets returns every non-empty bucket ordered by semester and calendar position
func (registry *RoomOccupancyRegistry) Buckets(calendar model.Calendar) []Bucket {
	buckets := make([]Bucket, 0, len(registry.buckets))
	for key, bookings := range registry.buckets {
		if len(bookings) == 0 {
			continue
		}
		buckets = append(buckets, Bucket{
			Semester: key.semester,
			Cell:     key.cell,
			Bookings: slices.Clone(bookings),
		})
	}
	slices.SortFunc(buckets, func(bucket1, bucket2 Bucket) int {
		if order := cmp.Compare(bucket1.Semester, bucket2.Semester); order != 0 {
			return order
		}
		return calendar.Compare(bucket1.Cell, bucket2.Cell)
	})
	return buckets
}
