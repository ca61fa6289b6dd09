package reviews

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
	domainreviews "staybook/internal/domain/reviews"
)

const (
	updateReviewKey  = "reviews.update"
	deleteReviewKey  = "reviews.delete"
	toggleHelpfulKey = "reviews.helpful.toggle"
)

// UpdateReviewCommand edits a review owned by AuthorID.
type UpdateReviewCommand struct {
	ReviewID string `validate:"required"`
	AuthorID string `validate:"required"`
	Rating   int
	Title    string
	Comment  string
}

func (UpdateReviewCommand) Key() string { return updateReviewKey }

type UpdateReviewHandler struct {
	UoWFactory uow.UoWFactory
	Ratings    RatingTrigger
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *UpdateReviewHandler) Handle(ctx context.Context, cmd UpdateReviewCommand) (*dto.Review, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	review, err := unit.Reviews().ByID(unit.Ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return nil, err
	}
	if !review.EditableBy(cmd.AuthorID) {
		return nil, domainreviews.ErrForbidden
	}
	if err := review.Update(cmd.Rating, cmd.Title, cmd.Comment, nowOr(h.Now)); err != nil {
		return nil, err
	}
	if err := unit.Reviews().Save(unit.Ctx, review); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(unit.Ctx, h.Outbox, h.Encoder, review.DrainEvents()); err != nil {
		return nil, err
	}
	triggerOrNoop(h.Ratings).OnReviewUpdated(unit.Ctx, review)
	if err := unit.Commit(); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "review updated", slog.String("review_id", string(review.ID)), slog.Int("rating", review.Rating))
	}
	out := dto.MapReview(review)
	return &out, nil
}

// DeleteReviewCommand removes a review; the author or an admin may do so.
type DeleteReviewCommand struct {
	ReviewID string `validate:"required"`
	Actor    domainbooking.Actor
}

func (DeleteReviewCommand) Key() string { return deleteReviewKey }

type DeleteReviewHandler struct {
	UoWFactory uow.UoWFactory
	Ratings    RatingTrigger
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *DeleteReviewHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (*dto.Review, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	review, err := unit.Reviews().ByID(unit.Ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return nil, err
	}
	if !cmd.Actor.Admin && !review.EditableBy(cmd.Actor.ID) {
		return nil, domainreviews.ErrForbidden
	}
	review.MarkDeleted(cmd.Actor.ID, nowOr(h.Now))
	if err := unit.Reviews().Delete(unit.Ctx, review.ID); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(unit.Ctx, h.Outbox, h.Encoder, review.DrainEvents()); err != nil {
		return nil, err
	}
	triggerOrNoop(h.Ratings).OnReviewDeleted(unit.Ctx, review)
	if err := unit.Commit(); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "review deleted",
			slog.String("review_id", string(review.ID)),
			slog.String("room_id", string(review.RoomID)),
			slog.String("actor_id", cmd.Actor.ID))
	}
	out := dto.MapReview(review)
	return &out, nil
}

// ToggleHelpfulCommand flips UserID's helpful vote on a review.
type ToggleHelpfulCommand struct {
	ReviewID string `validate:"required"`
	UserID   string `validate:"required"`
}

func (ToggleHelpfulCommand) Key() string { return toggleHelpfulKey }

// ToggleHelpfulHandler does not notify the rating trigger; votes never change ratings.
type ToggleHelpfulHandler struct {
	UoWFactory uow.UoWFactory
	Now        func() time.Time
}

func (h *ToggleHelpfulHandler) Handle(ctx context.Context, cmd ToggleHelpfulCommand) (*dto.HelpfulVote, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	review, err := unit.Reviews().ByID(unit.Ctx, domainreviews.ReviewID(cmd.ReviewID))
	if err != nil {
		return nil, err
	}
	voted, err := review.ToggleHelpful(cmd.UserID, nowOr(h.Now))
	if err != nil {
		return nil, err
	}
	if err := unit.Reviews().Save(unit.Ctx, review); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}
	return &dto.HelpfulVote{ReviewID: string(review.ID), Voted: voted, HelpfulVotes: len(review.HelpfulVotes)}, nil
}

var (
	_ commands.Handler[UpdateReviewCommand, *dto.Review]       = (*UpdateReviewHandler)(nil)
	_ commands.Handler[DeleteReviewCommand, *dto.Review]       = (*DeleteReviewHandler)(nil)
	_ commands.Handler[ToggleHelpfulCommand, *dto.HelpfulVote] = (*ToggleHelpfulHandler)(nil)
)
