package rooms

import (
	"context"
	"strings"

	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainrooms "staybook/internal/domain/rooms"
)

const (
	getRoomKey     = "rooms.get"
	searchRoomsKey = "rooms.search"
)

type GetRoomQuery struct {
	RoomID string `validate:"required"`
}

func (GetRoomQuery) Key() string { return getRoomKey }

type GetRoomHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetRoomHandler) Handle(ctx context.Context, q GetRoomQuery) (*dto.Room, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, domainrooms.RoomID(q.RoomID))
	if err != nil {
		return nil, err
	}
	out := dto.MapRoom(room)
	return &out, nil
}

// SearchRoomsQuery filters the public catalog. An empty Type matches every type.
type SearchRoomsQuery struct {
	OnlyAvailable bool
	Type          string
	MinCapacity   int     `validate:"gte=0"`
	MinRating     float64 `validate:"gte=0,lte=5"`
	MaxRate       int64   `validate:"gte=0"`
	Sort          string  `validate:"omitempty,oneof=price_asc price_desc rating"`
	Limit         int
	Offset        int
}

func (SearchRoomsQuery) Key() string { return searchRoomsKey }

type SearchRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *SearchRoomsHandler) Handle(ctx context.Context, q SearchRoomsQuery) (*dto.RoomCollection, error) {
	params := domainrooms.SearchParams{
		OnlyAvailable: q.OnlyAvailable,
		MinCapacity:   q.MinCapacity,
		MinRating:     q.MinRating,
		MaxRateAmount: q.MaxRate,
		Sort:          domainrooms.SortOrder(q.Sort),
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	if raw := strings.TrimSpace(q.Type); raw != "" {
		roomType, err := domainrooms.ParseType(raw)
		if err != nil {
			return nil, err
		}
		params.Type = roomType
	}
	params = params.Normalized()

	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	res, err := unit.Rooms().Search(execCtx, params)
	if err != nil {
		return nil, err
	}
	items := make([]dto.Room, 0, len(res.Items))
	for _, room := range res.Items {
		items = append(items, dto.MapRoom(room))
	}
	return &dto.RoomCollection{Items: items, Total: res.Total, Limit: params.Limit, Offset: params.Offset}, nil
}

var (
	_ queries.Handler[GetRoomQuery, *dto.Room]               = (*GetRoomHandler)(nil)
	_ queries.Handler[SearchRoomsQuery, *dto.RoomCollection] = (*SearchRoomsHandler)(nil)
)
