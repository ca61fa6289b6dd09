package reviews

import (
	"time"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/rooms"
)

type ReviewCreated struct {
	ReviewID  ReviewID
	RoomID    rooms.RoomID
	BookingID booking.BookingID
	Rating    int
	At        time.Time
}

func (e ReviewCreated) EventName() string     { return "review.created" }
func (e ReviewCreated) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewCreated) OccurredAt() time.Time { return e.At }

type ReviewUpdated struct {
	ReviewID       ReviewID
	RoomID         rooms.RoomID
	PreviousRating int
	Rating         int
	At             time.Time
}

func (e ReviewUpdated) EventName() string     { return "review.updated" }
func (e ReviewUpdated) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewUpdated) OccurredAt() time.Time { return e.At }

type ReviewDeleted struct {
	ReviewID  ReviewID
	RoomID    rooms.RoomID
	BookingID booking.BookingID
	ActorID   string
	At        time.Time
}

func (e ReviewDeleted) EventName() string     { return "review.deleted" }
func (e ReviewDeleted) AggregateID() string   { return string(e.ReviewID) }
func (e ReviewDeleted) OccurredAt() time.Time { return e.At }
