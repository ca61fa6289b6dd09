package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/events"
	"staybook/internal/domain/shared/money"
)

var (
	ErrInvalidGuests     = errors.New("booking: guests count must be positive")
	ErrCapacityExceeded  = errors.New("booking: guests exceed room capacity")
	ErrInvalidTransition = errors.New("booking: invalid status transition")
	ErrUnknownStatus     = errors.New("booking: unknown status")
	ErrForbidden         = errors.New("booking: caller is not allowed to perform this action")
	ErrTooEarly          = errors.New("booking: transition is not allowed before the stay date")
	ErrBookingNotFound   = errors.New("booking: not found")
	ErrRoomUnavailable   = errors.New("booking: room is not available")
	ErrDatesTaken        = errors.New("booking: room is already booked for these dates")
	ErrConcurrentUpdate  = errors.New("booking: concurrent update detected")
)

type BookingID string

type Booking struct {
	ID        BookingID
	UserID    string
	RoomID    rooms.RoomID
	Range     daterange.DateRange
	Guests    int
	Total     money.Money
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id BookingID) (*Booking, error)
	Save(ctx context.Context, booking *Booking) error
	ListByUser(ctx context.Context, userID string) ([]*Booking, error)
	ListByRoom(ctx context.Context, roomID rooms.RoomID) ([]*Booking, error)
	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
}

// ListFilter narrows the admin booking listing; zero values match everything.
type ListFilter struct {
	Status Status
	RoomID rooms.RoomID
	UserID string
}

func (f ListFilter) Matches(b *Booking) bool {
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	if f.RoomID != "" && b.RoomID != f.RoomID {
		return false
	}
	if f.UserID != "" && b.UserID != f.UserID {
		return false
	}
	return true
}

type CreateParams struct {
	ID        BookingID
	UserID    string
	Room      *rooms.Room
	Range     daterange.DateRange
	Guests    int
	CreatedAt time.Time
}

// NewBooking creates a pending booking. The total is fixed at nights times the
// room's nightly rate when the booking is made.
func NewBooking(params CreateParams) (*Booking, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("booking: id required")
	}
	if strings.TrimSpace(params.UserID) == "" {
		return nil, errors.New("booking: user id required")
	}
	if params.Room == nil {
		return nil, rooms.ErrRoomNotFound
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.Guests <= 0 {
		return nil, ErrInvalidGuests
	}
	if params.Guests > params.Room.Capacity {
		return nil, ErrCapacityExceeded
	}
	if !params.Room.Available {
		return nil, ErrRoomUnavailable
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	b := &Booking{
		ID:        params.ID,
		UserID:    params.UserID,
		RoomID:    params.Room.ID,
		Range:     params.Range,
		Guests:    params.Guests,
		Total:     params.Room.NightlyRate.Multiply(int64(params.Range.Nights())),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.Record(BookingRequested{BookingID: b.ID, RoomID: b.RoomID, UserID: b.UserID, Range: b.Range, Guests: b.Guests, Total: b.Total, At: now})
	return b, nil
}

func (b *Booking) OwnedBy(userID string) bool {
	return userID != "" && b.UserID == userID
}

// Transition moves the booking to target on behalf of actor. Checks run in
// order: caller relation, edge legality, caller role, stay date. On error the
// booking is left untouched.
func (b *Booking) Transition(target Status, actor Actor, now time.Time) error {
	if !target.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}
	if !actor.CanView(b) {
		return ErrForbidden
	}
	if !b.Status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, target)
	}
	if !actor.mayRequest(target) {
		return fmt.Errorf("%w: only admins may move a booking to %s", ErrForbidden, target)
	}
	if now.IsZero() {
		now = time.Now()
	}
	switch target {
	case StatusCheckedIn:
		if !daterange.OnOrAfter(now, b.Range.CheckIn) {
			return fmt.Errorf("%w: check-in opens on %s", ErrTooEarly, b.Range.CheckIn.Format(time.DateOnly))
		}
	case StatusCheckedOut:
		if !daterange.OnOrAfter(now, b.Range.CheckOut) {
			return fmt.Errorf("%w: check-out opens on %s", ErrTooEarly, b.Range.CheckOut.Format(time.DateOnly))
		}
	}
	from := b.Status
	b.Status = target
	b.UpdatedAt = now.UTC()
	b.Record(StatusChanged{BookingID: b.ID, RoomID: b.RoomID, From: from, To: target, ActorID: actor.ID, At: b.UpdatedAt})
	return nil
}

func (b *Booking) Cancel(actor Actor, now time.Time) error {
	return b.Transition(StatusCancelled, actor, now)
}

// Clone returns a copy without pending events.
func (b *Booking) Clone() *Booking {
	if b == nil {
		return nil
	}
	cp := *b
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}
