package booking

import (
	"context"
	"log/slog"
	"time"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
)

const transitionBookingKey = "booking.transition"

// TransitionBookingCommand asks to move a booking to Status on behalf of Actor.
type TransitionBookingCommand struct {
	BookingID string `validate:"required"`
	Status    string `validate:"required"`
	Actor     domainbooking.Actor
}

func (TransitionBookingCommand) Key() string { return transitionBookingKey }

type TransitionBookingHandler struct {
	UoWFactory uow.UoWFactory
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

// Handle applies one state machine step. The status string is parsed before
// the booking is loaded, so an unknown status never reaches the store.
func (h *TransitionBookingHandler) Handle(ctx context.Context, cmd TransitionBookingCommand) (*dto.Booking, error) {
	target, err := domainbooking.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}

	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	booking, err := unit.Bookings().ByID(unit.Ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	from := booking.Status
	if err := booking.Transition(target, cmd.Actor, h.now()); err != nil {
		if h.Logger != nil {
			h.Logger.InfoContext(ctx, "booking transition rejected",
				slog.String("booking_id", cmd.BookingID),
				slog.String("from", from.String()),
				slog.String("to", target.String()),
				slog.Any("err", err))
		}
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
		h.Logger.InfoContext(ctx, "booking status changed",
			slog.String("booking_id", string(booking.ID)),
			slog.String("from", from.String()),
			slog.String("to", booking.Status.String()),
			slog.String("actor_id", cmd.Actor.ID))
	}
	room, _ := unit.Rooms().ByID(unit.Ctx, booking.RoomID)
	out := dto.MapBooking(booking, room)
	return &out, nil
}

func (h *TransitionBookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

var _ commands.Handler[TransitionBookingCommand, *dto.Booking] = (*TransitionBookingHandler)(nil)
