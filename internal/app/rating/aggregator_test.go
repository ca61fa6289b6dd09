package rating

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/storage/memory"
)

func newFixture(t *testing.T) (*memory.Store, *Aggregator, *bytes.Buffer) {
	t.Helper()
	store := memory.NewStore()
	room, err := domainrooms.NewRoom(domainrooms.CreateParams{
		ID:          "room-1",
		Name:        "Garden suite",
		Type:        "suite",
		Capacity:    2,
		NightlyRate: money.Must(12000, "USD"),
		Available:   true,
	})
	require.NoError(t, err)
	require.NoError(t, store.Rooms.Save(context.Background(), room))
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return store, NewAggregator(store.Factory(), logger), &logs
}

func addReview(t *testing.T, store *memory.Store, id string, rating int) *domainreviews.Review {
	t.Helper()
	review := &domainreviews.Review{
		ID:        domainreviews.ReviewID(id),
		RoomID:    "room-1",
		BookingID: domainbooking.BookingID("booking-" + id),
		Rating:    rating,
	}
	require.NoError(t, store.Reviews.Create(context.Background(), review))
	return review
}

func storedRoom(t *testing.T, store *memory.Store) *domainrooms.Room {
	t.Helper()
	room, err := store.Rooms.ByID(context.Background(), "room-1")
	require.NoError(t, err)
	return room
}

func TestRecalculateFollowsReviewSet(t *testing.T) {
	ctx := context.Background()
	store, agg, _ := newFixture(t)

	r5 := addReview(t, store, "r1", 5)
	addReview(t, store, "r2", 4)
	r3 := addReview(t, store, "r3", 3)
	summary, err := agg.Recalculate(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, domainrooms.RatingSummary{Rating: 4.0, Count: 3}, summary)

	require.NoError(t, store.Reviews.Delete(ctx, r3.ID))
	agg.OnReviewDeleted(ctx, r3)
	room := storedRoom(t, store)
	assert.Equal(t, 4.5, room.Rating)
	assert.Equal(t, 2, room.ReviewsCount)

	require.NoError(t, store.Reviews.Delete(ctx, r5.ID))
	require.NoError(t, store.Reviews.Delete(ctx, "r2"))
	agg.OnReviewDeleted(ctx, r5)
	room = storedRoom(t, store)
	assert.Equal(t, 0.0, room.Rating)
	assert.Equal(t, 0, room.ReviewsCount)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, agg, _ := newFixture(t)
	addReview(t, store, "r1", 4)
	addReview(t, store, "r2", 5)

	first, err := agg.Recalculate(ctx, "room-1")
	require.NoError(t, err)
	second, err := agg.Recalculate(ctx, "room-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, domainrooms.RatingSummary{Rating: 4.5, Count: 2}, second)
}

func TestRecalculateRoundsHalfUp(t *testing.T) {
	ctx := context.Background()
	store, agg, _ := newFixture(t)
	for i, r := range []int{5, 5, 5, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4} {
		addReview(t, store, string(rune('a'+i)), r)
	}

	summary, err := agg.Recalculate(ctx, "room-1")
	require.NoError(t, err)
	assert.Equal(t, 4.2, summary.Rating)
	assert.Equal(t, 20, summary.Count)
}

func TestRecalculateUnknownRoomFails(t *testing.T) {
	_, agg, _ := newFixture(t)

	_, err := agg.Recalculate(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrAggregationFailed)
	assert.ErrorIs(t, err, domainrooms.ErrRoomNotFound)
}

func TestTriggerDefersUntilCommit(t *testing.T) {
	store, agg, _ := newFixture(t)
	unit, err := store.Factory().Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.ContextWithUnitOfWork(context.Background(), unit)

	review := addReview(t, store, "r1", 2)
	agg.OnReviewCreated(ctx, review)
	assert.Equal(t, 0, storedRoom(t, store).ReviewsCount)

	require.NoError(t, unit.Commit(ctx))
	room := storedRoom(t, store)
	assert.Equal(t, 2.0, room.Rating)
	assert.Equal(t, 1, room.ReviewsCount)
}

func TestTriggerSkippedOnRollback(t *testing.T) {
	store, agg, _ := newFixture(t)
	unit, err := store.Factory().Begin(context.Background(), uow.TxOptions{})
	require.NoError(t, err)
	ctx := uow.ContextWithUnitOfWork(context.Background(), unit)

	agg.OnReviewUpdated(ctx, addReview(t, store, "r1", 2))
	require.NoError(t, unit.Rollback(ctx))

	assert.Equal(t, 0, storedRoom(t, store).ReviewsCount)
}

type failingFactory struct{}

func (failingFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return nil, errors.New("store offline")
}

func TestTriggerFailureIsLoggedNotPropagated(t *testing.T) {
	var logs bytes.Buffer
	agg := NewAggregator(failingFactory{}, slog.New(slog.NewJSONHandler(&logs, nil)))

	assert.NotPanics(t, func() {
		agg.OnReviewCreated(context.Background(), &domainreviews.Review{ID: "r1", RoomID: "room-9"})
	})
	assert.Contains(t, logs.String(), "room rating aggregation failed")
	assert.Contains(t, logs.String(), "room-9")
}
