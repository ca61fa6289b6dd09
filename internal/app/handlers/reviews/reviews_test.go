package reviews

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/rating"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

const comment = "Quiet room, friendly staff."

type fixture struct {
	store  *memory.Store
	outbox *memory.Outbox
	submit *SubmitReviewHandler
	update *UpdateReviewHandler
	remove *DeleteReviewHandler
}

func newFixture(t *testing.T, ratings RatingTrigger) *fixture {
	t.Helper()
	store := memory.NewStore()
	if ratings == nil {
		ratings = rating.NewAggregator(store.Factory(), nil)
	}
	box := memory.NewOutbox(nil)
	f := &fixture{
		store:  store,
		outbox: box,
		submit: &SubmitReviewHandler{UoWFactory: store.Factory(), Ratings: ratings, Outbox: box},
		update: &UpdateReviewHandler{UoWFactory: store.Factory(), Ratings: ratings, Outbox: box},
		remove: &DeleteReviewHandler{UoWFactory: store.Factory(), Ratings: ratings, Outbox: box},
	}
	room, err := domainrooms.NewRoom(domainrooms.CreateParams{
		ID:          "room-1",
		Name:        "Loft",
		Type:        "suite",
		Capacity:    3,
		NightlyRate: money.Must(9000, "EUR"),
		Available:   true,
	})
	require.NoError(t, err)
	require.NoError(t, store.Rooms.Save(context.Background(), room))
	return f
}

func (f *fixture) stay(t *testing.T, id, userID string, status domainbooking.Status) {
	t.Helper()
	dr, err := daterange.New(time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	b := &domainbooking.Booking{
		ID:     domainbooking.BookingID(id),
		UserID: userID,
		RoomID: "room-1",
		Range:  dr,
		Guests: 1,
		Status: status,
	}
	require.NoError(t, f.store.Bookings.Save(context.Background(), b))
}

func (f *fixture) review(t *testing.T, bookingID, userID string, stars int) string {
	t.Helper()
	out, err := f.submit.Handle(context.Background(), SubmitReviewCommand{
		BookingID: bookingID,
		AuthorID:  userID,
		Rating:    stars,
		Title:     "Stay",
		Comment:   comment,
	})
	require.NoError(t, err)
	return out.ID
}

func (f *fixture) room(t *testing.T) *domainrooms.Room {
	t.Helper()
	room, err := f.store.Rooms.ByID(context.Background(), "room-1")
	require.NoError(t, err)
	return room
}

func TestReviewLifecycleKeepsRoomRatingConsistent(t *testing.T) {
	f := newFixture(t, nil)
	f.stay(t, "b1", "u1", domainbooking.StatusCheckedOut)
	f.stay(t, "b2", "u2", domainbooking.StatusCheckedOut)
	f.stay(t, "b3", "u3", domainbooking.StatusCheckedOut)

	f.review(t, "b1", "u1", 5)
	f.review(t, "b2", "u2", 4)
	third := f.review(t, "b3", "u3", 3)
	assert.Equal(t, 4.0, f.room(t).Rating)
	assert.Equal(t, 3, f.room(t).ReviewsCount)

	_, err := f.remove.Handle(context.Background(), DeleteReviewCommand{ReviewID: third, Actor: domainbooking.Actor{ID: "u3"}})
	require.NoError(t, err)
	assert.Equal(t, 4.5, f.room(t).Rating)
	assert.Equal(t, 2, f.room(t).ReviewsCount)
}

func TestUpdateReviewRecalculates(t *testing.T) {
	f := newFixture(t, nil)
	f.stay(t, "b1", "u1", domainbooking.StatusCheckedOut)
	id := f.review(t, "b1", "u1", 2)

	out, err := f.update.Handle(context.Background(), UpdateReviewCommand{ReviewID: id, AuthorID: "u1", Rating: 5, Title: "Better", Comment: comment})
	require.NoError(t, err)
	assert.Equal(t, 5, out.Rating)
	assert.Equal(t, 5.0, f.room(t).Rating)
	assert.Equal(t, 1, f.room(t).ReviewsCount)

	_, err = f.update.Handle(context.Background(), UpdateReviewCommand{ReviewID: id, AuthorID: "u2", Rating: 1, Title: "x", Comment: comment})
	assert.ErrorIs(t, err, domainreviews.ErrForbidden)
}

func TestSubmitReviewRejections(t *testing.T) {
	f := newFixture(t, nil)
	f.stay(t, "done", "u1", domainbooking.StatusCheckedOut)
	f.stay(t, "open", "u1", domainbooking.StatusCheckedIn)
	f.review(t, "done", "u1", 4)
	ctx := context.Background()

	_, err := f.submit.Handle(ctx, SubmitReviewCommand{BookingID: "done", AuthorID: "u1", Rating: 5, Title: "Again", Comment: comment})
	assert.ErrorIs(t, err, domainreviews.ErrDuplicateReview)

	_, err = f.submit.Handle(ctx, SubmitReviewCommand{BookingID: "open", AuthorID: "u1", Rating: 5, Title: "Early", Comment: comment})
	assert.ErrorIs(t, err, domainreviews.ErrStayNotCompleted)

	_, err = f.submit.Handle(ctx, SubmitReviewCommand{BookingID: "open", AuthorID: "u2", Rating: 5, Title: "Nope", Comment: comment})
	assert.ErrorIs(t, err, domainreviews.ErrForbidden)

	_, err = f.submit.Handle(ctx, SubmitReviewCommand{BookingID: "missing", AuthorID: "u1", Rating: 5, Title: "Nope", Comment: comment})
	assert.ErrorIs(t, err, domainbooking.ErrBookingNotFound)

	assert.Equal(t, 1, f.room(t).ReviewsCount)
}

func TestDeleteReviewAuthorization(t *testing.T) {
	f := newFixture(t, nil)
	f.stay(t, "b1", "u1", domainbooking.StatusCheckedOut)
	id := f.review(t, "b1", "u1", 4)
	ctx := context.Background()

	_, err := f.remove.Handle(ctx, DeleteReviewCommand{ReviewID: id, Actor: domainbooking.Actor{ID: "u2"}})
	assert.ErrorIs(t, err, domainreviews.ErrForbidden)

	_, err = f.remove.Handle(ctx, DeleteReviewCommand{ReviewID: id, Actor: domainbooking.Actor{ID: "admin", Admin: true}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.room(t).Rating)
	assert.Equal(t, 0, f.room(t).ReviewsCount)

	_, err = f.remove.Handle(ctx, DeleteReviewCommand{ReviewID: id, Actor: domainbooking.Actor{ID: "admin", Admin: true}})
	assert.ErrorIs(t, err, domainreviews.ErrNotFound)
}

type brokenFactory struct{}

func (brokenFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return nil, errors.New("rooms collection unavailable")
}

func TestAggregationFailureDoesNotFailReview(t *testing.T) {
	var logs bytes.Buffer
	agg := rating.NewAggregator(brokenFactory{}, slog.New(slog.NewTextHandler(&logs, nil)))
	f := newFixture(t, agg)
	f.stay(t, "b1", "u1", domainbooking.StatusCheckedOut)

	id := f.review(t, "b1", "u1", 5)

	stored, err := f.store.Reviews.ByID(context.Background(), domainreviews.ReviewID(id))
	require.NoError(t, err)
	assert.Equal(t, 5, stored.Rating)
	assert.Equal(t, 0, f.room(t).ReviewsCount)
	assert.True(t, strings.Contains(logs.String(), "room rating aggregation failed"))

	summary, err := rating.NewAggregator(f.store.Factory(), nil).Recalculate(context.Background(), "room-1")
	require.NoError(t, err)
	assert.Equal(t, domainrooms.RatingSummary{Rating: 5, Count: 1}, summary)
}

func TestToggleHelpful(t *testing.T) {
	f := newFixture(t, nil)
	f.stay(t, "b1", "u1", domainbooking.StatusCheckedOut)
	id := f.review(t, "b1", "u1", 4)
	h := &ToggleHelpfulHandler{UoWFactory: f.store.Factory()}
	ctx := context.Background()

	vote, err := h.Handle(ctx, ToggleHelpfulCommand{ReviewID: id, UserID: "u2"})
	require.NoError(t, err)
	assert.True(t, vote.Voted)
	assert.Equal(t, 1, vote.HelpfulVotes)

	vote, err = h.Handle(ctx, ToggleHelpfulCommand{ReviewID: id, UserID: "u2"})
	require.NoError(t, err)
	assert.False(t, vote.Voted)
	assert.Equal(t, 0, vote.HelpfulVotes)

	_, err = h.Handle(ctx, ToggleHelpfulCommand{ReviewID: id, UserID: "u1"})
	assert.ErrorIs(t, err, domainreviews.ErrOwnReviewVote)
}

func TestListRoomReviews(t *testing.T) {
	f := newFixture(t, nil)
	f.stay(t, "b1", "u1", domainbooking.StatusCheckedOut)
	f.stay(t, "b2", "u2", domainbooking.StatusCheckedOut)
	f.review(t, "b1", "u1", 4)
	f.review(t, "b2", "u2", 2)
	h := &ListRoomReviewsHandler{UoWFactory: f.store.Factory()}

	out, err := h.Handle(context.Background(), ListRoomReviewsQuery{RoomID: "room-1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.Total)

	_, err = h.Handle(context.Background(), ListRoomReviewsQuery{RoomID: "nope"})
	assert.ErrorIs(t, err, domainrooms.ErrRoomNotFound)

	mine, err := (&ListAuthorReviewsHandler{UoWFactory: f.store.Factory()}).Handle(context.Background(), ListAuthorReviewsQuery{AuthorID: "u2"})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	assert.Equal(t, 2, mine.Items[0].Rating)
}

func TestReviewEventsReachOutbox(t *testing.T) {
	f := newFixture(t, nil)
	f.stay(t, "b1", "u1", domainbooking.StatusCheckedOut)
	id := f.review(t, "b1", "u1", 4)
	_, err := f.remove.Handle(context.Background(), DeleteReviewCommand{ReviewID: id, Actor: domainbooking.Actor{ID: "u1"}})
	require.NoError(t, err)

	require.NoError(t, f.outbox.Flush(context.Background()))
	names := []string{}
	for _, rec := range f.outbox.Delivered() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"review.created", "review.deleted"}, names)
}
