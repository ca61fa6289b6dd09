package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/daterange"
)

const createBookingKey = "booking.create"

type CreateBookingCommand struct {
	BookingID       string
	RoomID          string    `validate:"required"`
	UserID          string    `validate:"required"`
	CheckIn         time.Time `validate:"required"`
	CheckOut        time.Time `validate:"required"`
	Guests          int
	IdempotencyKeyV string
}

func (CreateBookingCommand) Key() string { return createBookingKey }

func (c CreateBookingCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (CreateBookingCommand) ResultPrototype() any { return &dto.Booking{} }

func (c CreateBookingCommand) IdempotencyScope() string { return c.UserID }

type CreateBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*dto.Booking, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	dr, err := daterange.New(cmd.CheckIn, cmd.CheckOut)
	if err != nil {
		return nil, err
	}
	now := h.now()
	if err := domainbooking.ValidateDateRange(dr, now); err != nil {
		return nil, err
	}

	room, err := unit.Rooms().ByID(unit.Ctx, domainrooms.RoomID(cmd.RoomID))
	if err != nil {
		return nil, err
	}
	if !room.Available {
		return nil, domainbooking.ErrRoomUnavailable
	}
	if guard, ok := unit.UnitOfWork.(uow.RoomGuard); ok {
		if err := guard.GuardRoom(unit.Ctx, room.ID); err != nil {
			return nil, err
		}
	}
	existing, err := unit.Bookings().ListByRoom(unit.Ctx, room.ID)
	if err != nil {
		return nil, err
	}
	if domainbooking.Conflicts(existing, dr) != nil {
		return nil, domainbooking.ErrDatesTaken
	}

	id := cmd.BookingID
	if id == "" {
		id = uuid.NewString()
	}
	booking, err := domainbooking.NewBooking(domainbooking.CreateParams{
		ID:        domainbooking.BookingID(id),
		UserID:    cmd.UserID,
		Room:      room,
		Range:     dr,
		Guests:    cmd.Guests,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Bookings().Save(unit.Ctx, booking); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(unit.Ctx, h.Outbox, h.Encoder, booking.DrainEvents()); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "booking requested",
			slog.String("booking_id", string(booking.ID)),
			slog.String("room_id", string(room.ID)),
			slog.Int("nights", dr.Nights()))
	}
	out := dto.MapBooking(booking, room)
	return &out, nil
}

func (h *CreateBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[CreateBookingCommand, *dto.Booking] = (*CreateBookingHandler)(nil)
var (
	_ middleware.IdempotentCommand = CreateBookingCommand{}
	_ middleware.ScopedCommand     = CreateBookingCommand{}
)
