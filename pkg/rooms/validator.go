package rooms

import (
	"github.com/limaJavier/timegrid/pkg/model"
	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type Entry struct {
	Department string
	Code       string
	Session    model.Session
}

// Reassignment moves one booking of a conflicting bucket to another room
type Reassignment struct {
	Entry
	From string
	To   string
}

type Conflict struct {
	Semester   int
	Day        model.Day
	Slot       model.Slot
	Room       string
	Entries    []Entry
	Suggestion []Reassignment // Conflict-free reassignment of the bucket, empty when none exists
}

// ConflictValidator reports rooms booked more than once at the same semester, day and slot
type ConflictValidator interface {
	Validate(registry *RoomOccupancyRegistry) []Conflict
}

type unassignableError struct {
}

func (err unassignableError) Error() string {
	return "not all bookings can be assigned a room"
}

type conflictValidatorImplementation struct {
	calendar  model.Calendar
	catalog   []model.RoomRecord
	evaluator model.PredicateEvaluator
	logger    *zap.Logger
}

func NewConflictValidator(calendar model.Calendar, catalog []model.RoomRecord, evaluator model.PredicateEvaluator, logger *zap.Logger) ConflictValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &conflictValidatorImplementation{
		calendar:  calendar,
		catalog:   sortRooms(catalog),
		evaluator: evaluator,
		logger:    logger,
	}
}

func (validator *conflictValidatorImplementation) Validate(registry *RoomOccupancyRegistry) []Conflict {
	conflicts := make([]Conflict, 0)
	for _, bucket := range registry.Buckets(validator.calendar) {
		bookings := joined(bucket.Bookings)
		byRoom := lo.GroupBy(bookings, func(booking Booking) string { return booking.Room })
		rooms := lo.Uniq(lo.Map(bookings, func(booking Booking, _ int) string { return booking.Room }))

		bucketConflicts := make([]Conflict, 0)
		for _, room := range rooms {
			if len(byRoom[room]) < 2 {
				continue
			}
			bucketConflicts = append(bucketConflicts, Conflict{
				Semester: bucket.Semester,
				Day:      bucket.Cell.Day,
				Slot:     bucket.Cell.Slot,
				Room:     room,
				Entries:  lo.Map(byRoom[room], func(booking Booking, _ int) Entry { return booking.Entry() }),
			})
		}
		if len(bucketConflicts) == 0 {
			continue
		}

		suggestion, err := validator.suggest(bookings)
		if err != nil {
			validator.logger.Info("no conflict-free reassignment",
				zap.Int("semester", bucket.Semester),
				zap.String("day", string(bucket.Cell.Day)),
				zap.String("slot", string(bucket.Cell.Slot)),
				zap.Error(err),
			)
		}
		for i := range bucketConflicts {
			room := bucketConflicts[i].Room
			bucketConflicts[i].Suggestion = lo.Filter(suggestion, func(reassignment Reassignment, _ int) bool { return reassignment.From == room })
		}
		conflicts = append(conflicts, bucketConflicts...)
	}

	if len(conflicts) > 0 {
		validator.logger.Warn("room conflicts detected", zap.Int("conflicts", len(conflicts)))
	}
	return conflicts
}

// suggest matches every booking of a bucket to a distinct room of the same kind that fits it
func (validator *conflictValidatorImplementation) suggest(bookings []Booking) ([]Reassignment, error) {
	kinds := lo.SliceToMap(validator.catalog, func(room model.RoomRecord) (string, bool) { return room.Id, room.Category.IsLab() })

	// Build neighbors predicate based on room kind and capacity
	neighbors := func(bookingAny any, roomAny any) (bool, error) {
		booking := bookingAny.(Booking)
		room := roomAny.(model.RoomRecord)

		lab, known := kinds[booking.Room]
		return (!known || lab == room.Category.IsLab()) && validator.evaluator.Fits(room, booking.Enrollment), nil
	}

	// Transform bookings and rooms to slices of any
	bookingsAny, roomsAny := lo.Map(bookings, func(booking Booking, _ int) any { return booking }), lo.Map(validator.catalog, func(room model.RoomRecord, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(bookingsAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching covers every booking
	if len(matching) < len(bookings) {
		return nil, unassignableError{}
	}

	reassignments := make([]Reassignment, 0)
	for _, edge := range matching {
		bookingIndex, roomIndex := edge.Node1, edge.Node2-len(bookings)
		booking, room := bookings[bookingIndex], validator.catalog[roomIndex]

		if booking.Room != room.Id {
			reassignments = append(reassignments, Reassignment{
				Entry: booking.Entry(),
				From:  booking.Room,
				To:    room.Id,
			})
		}
	}
	return reassignments, nil
}

// joined collapses bookings of one combined class sharing a room into a single booking
func joined(bookings []Booking) []Booking {
	seen := make(map[[2]string]bool)
	return lo.Filter(bookings, func(booking Booking, _ int) bool {
		if booking.JoinKey == "" {
			return true
		}
		key := [2]string{booking.Room, booking.JoinKey}
		if seen[key] {
			return false
		}
		seen[key] = true
		return true
	})
}
