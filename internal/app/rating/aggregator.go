// Package rating keeps a room's denormalized rating and review count in step
// with its reviews.
package rating

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"staybook/internal/app/handlers/support"
	"staybook/internal/app/uow"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
)

var ErrAggregationFailed = errors.New("rating: aggregation failed")

// Aggregator recomputes a room's rating from the full review set. Writes are
// unconditional; two concurrent recalculations for one room resolve as last
// writer wins.
type Aggregator struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func NewAggregator(factory uow.UoWFactory, logger *slog.Logger) *Aggregator {
	return &Aggregator{UoWFactory: factory, Logger: logger}
}

// Recalculate reads the review tally of roomID and stores the resulting summary
// on the room. It always runs in a unit of work of its own.
func (a *Aggregator) Recalculate(ctx context.Context, roomID domainrooms.RoomID) (domainrooms.RatingSummary, error) {
	summary, err := a.recalculate(uow.DetachUnitOfWork(ctx), roomID)
	if err != nil {
		return domainrooms.RatingSummary{}, fmt.Errorf("%w: room %s: %w", ErrAggregationFailed, roomID, err)
	}
	return summary, nil
}

func (a *Aggregator) recalculate(ctx context.Context, roomID domainrooms.RoomID) (domainrooms.RatingSummary, error) {
	if a == nil || a.UoWFactory == nil {
		return domainrooms.RatingSummary{}, uow.ErrUnitOfWorkMissing
	}
	unit, err := support.BeginWriteUnit(ctx, a.UoWFactory)
	if err != nil {
		return domainrooms.RatingSummary{}, err
	}
	defer unit.Close()

	tally, err := unit.Reviews().TallyByRoom(unit.Ctx, roomID)
	if err != nil {
		return domainrooms.RatingSummary{}, err
	}
	summary := tally.Summary()
	if err := unit.Rooms().UpdateRating(unit.Ctx, roomID, summary); err != nil {
		return domainrooms.RatingSummary{}, err
	}
	if err := unit.Commit(); err != nil {
		return domainrooms.RatingSummary{}, err
	}
	return summary, nil
}

func (a *Aggregator) OnReviewCreated(ctx context.Context, review *domainreviews.Review) {
	a.schedule(ctx, review, "created")
}

func (a *Aggregator) OnReviewUpdated(ctx context.Context, review *domainreviews.Review) {
	a.schedule(ctx, review, "updated")
}

func (a *Aggregator) OnReviewDeleted(ctx context.Context, review *domainreviews.Review) {
	a.schedule(ctx, review, "deleted")
}

// schedule defers the recalculation until the surrounding unit of work commits,
// or runs it at once when there is none.
func (a *Aggregator) schedule(ctx context.Context, review *domainreviews.Review, reason string) {
	if review == nil {
		return
	}
	roomID := review.RoomID
	if unit, ok := uow.FromContext(ctx); ok {
		unit.AfterCommit(func(hookCtx context.Context) {
			a.runTrigger(hookCtx, roomID, reason)
		})
		return
	}
	a.runTrigger(ctx, roomID, reason)
}

func (a *Aggregator) runTrigger(ctx context.Context, roomID domainrooms.RoomID, reason string) {
	summary, err := a.Recalculate(ctx, roomID)
	if a.Logger == nil {
		return
	}
	if err != nil {
		a.Logger.ErrorContext(ctx, "room rating aggregation failed",
			slog.String("room_id", string(roomID)),
			slog.String("trigger", reason),
			slog.Any("err", err))
		return
	}
	a.Logger.DebugContext(ctx, "room rating recalculated",
		slog.String("room_id", string(roomID)),
		slog.String("trigger", reason),
		slog.Float64("rating", summary.Rating),
		slog.Int("reviews_count", summary.Count))
}
