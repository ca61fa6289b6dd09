package reviews

import (
	"context"
	"log/slog"

	"staybook/internal/app/dto"
	handlersupport "staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainrooms "staybook/internal/domain/rooms"
)

const (
	listRoomReviewsKey   = "reviews.room.list"
	listAuthorReviewsKey = "reviews.author.list"
)

// ListRoomReviewsQuery retrieves reviews for a room, newest first.
type ListRoomReviewsQuery struct {
	RoomID string `validate:"required"`
	Limit  int
	Offset int
}

func (ListRoomReviewsQuery) Key() string { return listRoomReviewsKey }

// ListRoomReviewsHandler loads a page of reviews together with the room's total.
type ListRoomReviewsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListRoomReviewsHandler) Handle(ctx context.Context, q ListRoomReviewsQuery) (*dto.ReviewCollection, error) {
	limit := normalizeLimit(q.Limit)
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	roomID := domainrooms.RoomID(q.RoomID)
	if _, err := unit.Rooms().ByID(execCtx, roomID); err != nil {
		return nil, err
	}
	page, err := unit.Reviews().ListByRoom(execCtx, roomID, limit, offset)
	if err != nil {
		return nil, err
	}
	tally, err := unit.Reviews().TallyByRoom(execCtx, roomID)
	if err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.DebugContext(ctx, "room reviews listed", "room_id", roomID, "count", len(page), "total", tally.Count)
	}
	return &dto.ReviewCollection{Items: dto.MapReviews(page), Total: tally.Count}, nil
}

type ListAuthorReviewsQuery struct {
	AuthorID string `validate:"required"`
}

func (ListAuthorReviewsQuery) Key() string { return listAuthorReviewsKey }

type ListAuthorReviewsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListAuthorReviewsHandler) Handle(ctx context.Context, q ListAuthorReviewsQuery) (*dto.ReviewCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	items, err := unit.Reviews().ListByAuthor(execCtx, q.AuthorID)
	if err != nil {
		return nil, err
	}
	return &dto.ReviewCollection{Items: dto.MapReviews(items), Total: len(items)}, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

var (
	_ queries.Handler[ListRoomReviewsQuery, *dto.ReviewCollection]   = (*ListRoomReviewsHandler)(nil)
	_ queries.Handler[ListAuthorReviewsQuery, *dto.ReviewCollection] = (*ListAuthorReviewsHandler)(nil)
)
