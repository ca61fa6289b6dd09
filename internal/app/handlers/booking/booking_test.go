package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

var (
	guest = domainbooking.Actor{ID: "guest-1"}
	admin = domainbooking.Actor{ID: "admin-1", Admin: true}
)

type fixture struct {
	store      *memory.Store
	outbox     *memory.Outbox
	clock      time.Time
	create     *CreateBookingHandler
	transition *TransitionBookingHandler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		outbox: memory.NewOutbox(nil),
		clock:  time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return f.clock }
	f.create = &CreateBookingHandler{UoWFactory: f.store.Factory(), Outbox: f.outbox, Now: now}
	f.transition = &TransitionBookingHandler{UoWFactory: f.store.Factory(), Outbox: f.outbox, Now: now}
	f.addRoom(t, "room-1", true)
	return f
}

func (f *fixture) addRoom(t *testing.T, id string, available bool) {
	t.Helper()
	room, err := domainrooms.NewRoom(domainrooms.CreateParams{
		ID:          domainrooms.RoomID(id),
		Name:        "Sea view",
		Type:        "double",
		Capacity:    2,
		NightlyRate: money.Must(10000, "USD"),
		Available:   available,
	})
	require.NoError(t, err)
	require.NoError(t, f.store.Rooms.Save(context.Background(), room))
}

func (f *fixture) book(t *testing.T, id string, inDays, nights int) {
	t.Helper()
	_, err := f.create.Handle(context.Background(), f.cmd(id, "room-1", inDays, nights))
	require.NoError(t, err)
}

func (f *fixture) cmd(id, roomID string, inDays, nights int) CreateBookingCommand {
	checkIn := daterange.Day(f.clock).AddDate(0, 0, inDays)
	return CreateBookingCommand{
		BookingID: id,
		RoomID:    roomID,
		UserID:    guest.ID,
		CheckIn:   checkIn,
		CheckOut:  checkIn.AddDate(0, 0, nights),
		Guests:    2,
	}
}

func (f *fixture) move(id, status string, actor domainbooking.Actor) error {
	_, err := f.transition.Handle(context.Background(), TransitionBookingCommand{BookingID: id, Status: status, Actor: actor})
	return err
}

func TestCreateBookingComputesTotalAndRecordsEvent(t *testing.T) {
	f := newFixture(t)

	out, err := f.create.Handle(context.Background(), f.cmd("b1", "room-1", 5, 3))
	require.NoError(t, err)

	assert.Equal(t, "pending", out.Status)
	assert.Equal(t, 3, out.Nights)
	assert.Equal(t, int64(30000), out.Total.Amount)
	assert.Equal(t, "USD", out.Total.Currency)
	assert.Equal(t, "Sea view", out.Room.Name)

	require.NoError(t, f.outbox.Flush(context.Background()))
	delivered := f.outbox.Delivered()
	require.Len(t, delivered, 1)
	assert.Equal(t, "booking.requested", delivered[0].Name)
	assert.Equal(t, "b1", delivered[0].Aggregate)
}

func TestCreateBookingReplayIsPerUser(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "room-2", true)
	base := commands.NewInMemoryBus()
	commands.Register[CreateBookingCommand, *dto.Booking](base, f.create)
	bus := middleware.ChainCommands(base, middleware.Idempotency(memory.NewIdempotencyStore(time.Hour), nil))
	ctx := context.Background()

	aliceCmd := f.cmd("", "room-1", 5, 2)
	aliceCmd.UserID = "alice"
	aliceCmd.IdempotencyKeyV = "k1"
	bobCmd := f.cmd("", "room-2", 5, 2)
	bobCmd.UserID = "bob"
	bobCmd.IdempotencyKeyV = "k1"

	alice, err := commands.Dispatch[CreateBookingCommand, *dto.Booking](ctx, bus, aliceCmd)
	require.NoError(t, err)
	bob, err := commands.Dispatch[CreateBookingCommand, *dto.Booking](ctx, bus, bobCmd)
	require.NoError(t, err)

	assert.NotEqual(t, alice.ID, bob.ID)
	assert.Equal(t, "bob", bob.UserID)
	assert.Equal(t, "room-2", bob.Room.ID)
	stored, err := f.store.Bookings.ListByUser(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	replay, err := commands.Dispatch[CreateBookingCommand, *dto.Booking](ctx, bus, aliceCmd)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, replay.ID)
	stored, err = f.store.Bookings.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestConcurrentCreatesForSameDatesBookOnce(t *testing.T) {
	f := newFixture(t)
	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		booked  int
		refused int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.Handle(context.Background(), f.cmd("", "room-1", 5, 2))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case assert.ErrorIs(t, err, domainbooking.ErrDatesTaken):
				refused++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, booked)
	assert.Equal(t, attempts-1, refused)
}

func TestCreateBookingRejections(t *testing.T) {
	f := newFixture(t)
	f.addRoom(t, "closed", false)
	f.book(t, "b1", 5, 3)
	ctx := context.Background()

	_, err := f.create.Handle(ctx, f.cmd("x1", "room-1", 6, 1))
	assert.ErrorIs(t, err, domainbooking.ErrDatesTaken)

	_, err = f.create.Handle(ctx, f.cmd("x2", "closed", 5, 1))
	assert.ErrorIs(t, err, domainbooking.ErrRoomUnavailable)

	_, err = f.create.Handle(ctx, f.cmd("x3", "missing", 5, 1))
	assert.ErrorIs(t, err, domainrooms.ErrRoomNotFound)

	_, err = f.create.Handle(ctx, f.cmd("x4", "room-1", -1, 3))
	assert.ErrorIs(t, err, domainbooking.ErrCheckInInPast)

	_, err = f.create.Handle(ctx, f.cmd("x5", "room-1", 20, 0))
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)

	over := f.cmd("x6", "room-1", 20, 1)
	over.Guests = 3
	_, err = f.create.Handle(ctx, over)
	assert.ErrorIs(t, err, domainbooking.ErrCapacityExceeded)
}

func TestCreateBookingAllowsAdjacentAndCancelledDates(t *testing.T) {
	f := newFixture(t)
	f.book(t, "b1", 5, 3)

	_, err := f.create.Handle(context.Background(), f.cmd("b2", "room-1", 8, 2))
	require.NoError(t, err)

	require.NoError(t, f.move("b1", "cancelled", guest))
	_, err = f.create.Handle(context.Background(), f.cmd("b3", "room-1", 5, 3))
	require.NoError(t, err)
}

func TestTransitionFullLifecycle(t *testing.T) {
	f := newFixture(t)
	f.book(t, "b1", 2, 3)

	require.NoError(t, f.move("b1", "confirmed", admin))

	err := f.move("b1", "checked_in", admin)
	require.ErrorIs(t, err, domainbooking.ErrTooEarly)

	f.clock = f.clock.AddDate(0, 0, 2)
	require.NoError(t, f.move("b1", "checked_in", admin))

	assert.ErrorIs(t, f.move("b1", "checked_out", admin), domainbooking.ErrTooEarly)
	f.clock = f.clock.AddDate(0, 0, 3)
	require.NoError(t, f.move("b1", "CHECKED_OUT", admin))

	stored, err := f.store.Bookings.ByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusCheckedOut, stored.Status)
	assert.Equal(t, f.clock, stored.UpdatedAt)
	assert.ErrorIs(t, f.move("b1", "cancelled", admin), domainbooking.ErrInvalidTransition)
}

func TestTransitionCheckOrder(t *testing.T) {
	f := newFixture(t)
	f.book(t, "b1", 2, 3)
	stranger := domainbooking.Actor{ID: "someone-else"}

	assert.ErrorIs(t, f.move("b1", "archived", admin), domainbooking.ErrUnknownStatus)
	assert.ErrorIs(t, f.move("missing", "confirmed", admin), domainbooking.ErrBookingNotFound)
	assert.ErrorIs(t, f.move("b1", "cancelled", stranger), domainbooking.ErrForbidden)
	assert.ErrorIs(t, f.move("b1", "checked_in", guest), domainbooking.ErrInvalidTransition)
	assert.ErrorIs(t, f.move("b1", "confirmed", guest), domainbooking.ErrForbidden)
	assert.ErrorIs(t, f.move("b1", "pending", admin), domainbooking.ErrInvalidTransition)

	require.NoError(t, f.move("b1", "confirmed", admin))
	assert.ErrorIs(t, f.move("b1", "checked_in", guest), domainbooking.ErrForbidden)

	stored, err := f.store.Bookings.ByID(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, domainbooking.StatusConfirmed, stored.Status)
}

func TestOwnerCancelDoesNotTouchRoomAvailability(t *testing.T) {
	f := newFixture(t)
	f.book(t, "b1", 2, 3)

	require.NoError(t, f.move("b1", "cancelled", guest))

	room, err := f.store.Rooms.ByID(context.Background(), "room-1")
	require.NoError(t, err)
	assert.True(t, room.Available)
}

func TestGetBookingVisibility(t *testing.T) {
	f := newFixture(t)
	f.book(t, "b1", 2, 3)
	h := &GetBookingHandler{UoWFactory: f.store.Factory()}
	ctx := context.Background()

	out, err := h.Handle(ctx, GetBookingQuery{BookingID: "b1", Actor: guest})
	require.NoError(t, err)
	assert.Equal(t, "b1", out.ID)

	_, err = h.Handle(ctx, GetBookingQuery{BookingID: "b1", Actor: admin})
	require.NoError(t, err)

	_, err = h.Handle(ctx, GetBookingQuery{BookingID: "b1", Actor: domainbooking.Actor{ID: "other"}})
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)
}

func TestListUserBookingsMarksReviewable(t *testing.T) {
	f := newFixture(t)
	f.book(t, "b1", 0, 1)
	f.book(t, "b2", 3, 1)
	require.NoError(t, f.move("b1", "confirmed", admin))
	require.NoError(t, f.move("b1", "checked_in", admin))
	f.clock = f.clock.AddDate(0, 0, 1)
	require.NoError(t, f.move("b1", "checked_out", admin))

	h := &ListUserBookingsHandler{UoWFactory: f.store.Factory()}
	out, err := h.Handle(context.Background(), ListUserBookingsQuery{UserID: guest.ID})
	require.NoError(t, err)
	require.Len(t, out.Items, 2)
	byID := map[string]bool{}
	for _, item := range out.Items {
		byID[item.ID] = item.CanReview
	}
	assert.True(t, byID["b1"])
	assert.False(t, byID["b2"])

	require.NoError(t, f.store.Reviews.Create(context.Background(), &domainreviews.Review{ID: "r1", BookingID: "b1", RoomID: "room-1", Rating: 5}))
	out, err = h.Handle(context.Background(), ListUserBookingsQuery{UserID: guest.ID})
	require.NoError(t, err)
	for _, item := range out.Items {
		assert.False(t, item.CanReview)
	}
}

func TestListBookingsFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	f.book(t, "b1", 2, 1)
	f.book(t, "b2", 4, 1)
	require.NoError(t, f.move("b2", "confirmed", admin))
	h := &ListBookingsHandler{UoWFactory: f.store.Factory()}

	out, err := h.Handle(context.Background(), ListBookingsQuery{Status: "confirmed", ActorAdmin: true})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	assert.Equal(t, "b2", out.Items[0].ID)

	_, err = h.Handle(context.Background(), ListBookingsQuery{Status: "bogus"})
	assert.ErrorIs(t, err, domainbooking.ErrUnknownStatus)
}
