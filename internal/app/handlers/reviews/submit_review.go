package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/outbox"
	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
)

const submitReviewKey = "reviews.submit"

// SubmitReviewCommand creates the review of a completed stay.
type SubmitReviewCommand struct {
	BookingID string `validate:"required"`
	AuthorID  string `validate:"required"`
	Rating    int
	Title     string
	Comment   string
}

func (SubmitReviewCommand) Key() string { return submitReviewKey }

type SubmitReviewHandler struct {
	UoWFactory uow.UoWFactory
	Ratings    RatingTrigger
	Outbox     outbox.Outbox
	Encoder    outbox.EventEncoder
	Logger     *slog.Logger
	Now        func() time.Time
}

func (h *SubmitReviewHandler) Handle(ctx context.Context, cmd SubmitReviewCommand) (*dto.Review, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	stay, err := unit.Bookings().ByID(unit.Ctx, domainbooking.BookingID(cmd.BookingID))
	if err != nil {
		return nil, err
	}
	if !stay.OwnedBy(cmd.AuthorID) {
		return nil, domainreviews.ErrForbidden
	}
	if _, err := unit.Reviews().ByBooking(unit.Ctx, stay.ID); err == nil {
		return nil, domainreviews.ErrDuplicateReview
	} else if !errors.Is(err, domainreviews.ErrNotFound) {
		return nil, err
	}

	review, err := domainreviews.Submit(domainreviews.SubmitParams{
		ID:        domainreviews.ReviewID(uuid.NewString()),
		Booking:   stay,
		AuthorID:  cmd.AuthorID,
		Rating:    cmd.Rating,
		Title:     cmd.Title,
		Comment:   cmd.Comment,
		CreatedAt: nowOr(h.Now),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Reviews().Create(unit.Ctx, review); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(unit.Ctx, h.Outbox, h.Encoder, review.DrainEvents()); err != nil {
		return nil, err
	}
	triggerOrNoop(h.Ratings).OnReviewCreated(unit.Ctx, review)
	if err := unit.Commit(); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "review submitted",
			slog.String("review_id", string(review.ID)),
			slog.String("room_id", string(review.RoomID)),
			slog.Int("rating", review.Rating))
	}
	out := dto.MapReview(review)
	return &out, nil
}

func nowOr(now func() time.Time) time.Time {
	if now != nil {
		return now()
	}
	return time.Now()
}

var _ commands.Handler[SubmitReviewCommand, *dto.Review] = (*SubmitReviewHandler)(nil)
