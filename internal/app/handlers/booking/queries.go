package booking

import (
	"context"
	"errors"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
)

const (
	getBookingKey       = "booking.get"
	listUserBookingsKey = "booking.list_user"
	listBookingsKey     = "booking.list_admin"
)

type GetBookingQuery struct {
	BookingID string `validate:"required"`
	Actor     domainbooking.Actor
}

func (GetBookingQuery) Key() string { return getBookingKey }

type GetBookingHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle hides bookings the caller may not see behind ErrBookingNotFound.
func (h *GetBookingHandler) Handle(ctx context.Context, q GetBookingQuery) (*dto.Booking, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	booking, err := unit.Bookings().ByID(execCtx, domainbooking.BookingID(q.BookingID))
	if err != nil {
		return nil, err
	}
	if !q.Actor.CanView(booking) {
		return nil, domainbooking.ErrBookingNotFound
	}
	room, _ := unit.Rooms().ByID(execCtx, booking.RoomID)
	out := dto.MapBooking(booking, room)
	return &out, nil
}

type ListUserBookingsQuery struct {
	UserID string `validate:"required"`
}

func (ListUserBookingsQuery) Key() string { return listUserBookingsKey }

type ListUserBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListUserBookingsHandler) Handle(ctx context.Context, q ListUserBookingsQuery) (*dto.BookingCollection, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Bookings().ListByUser(execCtx, q.UserID)
	if err != nil {
		return nil, err
	}
	rooms := newRoomCache(unit.Rooms())
	out := make([]dto.Booking, 0, len(items))
	for _, b := range items {
		view := dto.MapBooking(b, rooms.get(execCtx, b.RoomID))
		if b.Status == domainbooking.StatusCheckedOut {
			_, err := unit.Reviews().ByBooking(execCtx, b.ID)
			view.CanReview = errors.Is(err, domainreviews.ErrNotFound)
		}
		out = append(out, view)
	}
	return &dto.BookingCollection{Items: out}, nil
}

type ListBookingsQuery struct {
	Status     string
	RoomID     string
	UserID     string
	ActorAdmin bool
}

func (ListBookingsQuery) Key() string { return listBookingsKey }

func (ListBookingsQuery) AdminOnly() bool { return true }

func (q ListBookingsQuery) CallerIsAdmin() bool { return q.ActorAdmin }

type ListBookingsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) (*dto.BookingCollection, error) {
	filter := domainbooking.ListFilter{RoomID: domainrooms.RoomID(q.RoomID), UserID: q.UserID}
	if q.Status != "" {
		status, err := domainbooking.ParseStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = status
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Bookings().List(execCtx, filter)
	if err != nil {
		return nil, err
	}
	rooms := newRoomCache(unit.Rooms())
	out := make([]dto.Booking, 0, len(items))
	for _, b := range items {
		out = append(out, dto.MapBooking(b, rooms.get(execCtx, b.RoomID)))
	}
	return &dto.BookingCollection{Items: out}, nil
}

// roomCache memoizes room lookups while building a listing.
type roomCache struct {
	repo  domainrooms.Repository
	items map[domainrooms.RoomID]*domainrooms.Room
}

func newRoomCache(repo domainrooms.Repository) *roomCache {
	return &roomCache{repo: repo, items: make(map[domainrooms.RoomID]*domainrooms.Room)}
}

func (c *roomCache) get(ctx context.Context, id domainrooms.RoomID) *domainrooms.Room {
	if room, ok := c.items[id]; ok {
		return room
	}
	room, err := c.repo.ByID(ctx, id)
	if err != nil {
		room = nil
	}
	c.items[id] = room
	return room
}

var (
	_ queries.Handler[GetBookingQuery, *dto.Booking]                 = (*GetBookingHandler)(nil)
	_ queries.Handler[ListUserBookingsQuery, *dto.BookingCollection] = (*ListUserBookingsHandler)(nil)
	_ queries.Handler[ListBookingsQuery, *dto.BookingCollection]     = (*ListBookingsHandler)(nil)
)
