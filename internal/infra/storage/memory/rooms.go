package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	domainrooms "staybook/internal/domain/rooms"
)

// RoomRepository is an in-memory room catalog.
type RoomRepository struct {
	mu    sync.RWMutex
	items map[domainrooms.RoomID]*domainrooms.Room
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{items: make(map[domainrooms.RoomID]*domainrooms.Room)}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.items[id]
	if !ok {
		return nil, domainrooms.ErrRoomNotFound
	}
	return room.Clone(), nil
}

// Save stores admin-owned fields. Rating fields of an existing room are kept
// as stored, they only change through UpdateRating.
func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	if room == nil || room.ID == "" {
		return domainrooms.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := room.Clone()
	if existing, ok := r.items[room.ID]; ok {
		cp.Rating = existing.Rating
		cp.ReviewsCount = existing.ReviewsCount
	}
	r.items[room.ID] = cp
	return nil
}

func (r *RoomRepository) UpdateRating(ctx context.Context, id domainrooms.RoomID, summary domainrooms.RatingSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.items[id]
	if !ok {
		return domainrooms.ErrRoomNotFound
	}
	room.ApplyRating(summary)
	room.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *RoomRepository) Search(ctx context.Context, params domainrooms.SearchParams) (domainrooms.SearchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	opts := params.Normalized()
	matches := make([]*domainrooms.Room, 0, len(r.items))
	for _, room := range r.items {
		if err := ctx.Err(); err != nil {
			return domainrooms.SearchResult{}, err
		}
		if !opts.Matches(room) {
			continue
		}
		matches = append(matches, room.Clone())
	}

	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch opts.Sort {
		case domainrooms.SortByPriceDesc:
			if a.NightlyRate.Amount == b.NightlyRate.Amount {
				return a.ID < b.ID
			}
			return a.NightlyRate.Amount > b.NightlyRate.Amount
		case domainrooms.SortByRating:
			if a.Rating == b.Rating {
				return a.NightlyRate.Amount < b.NightlyRate.Amount
			}
			return a.Rating > b.Rating
		default:
			if a.NightlyRate.Amount == b.NightlyRate.Amount {
				return a.ID < b.ID
			}
			return a.NightlyRate.Amount < b.NightlyRate.Amount
		}
	})

	return domainrooms.SearchResult{Items: page(matches, opts.Offset, opts.Limit), Total: len(matches)}, nil
}

// page slices items[offset:offset+limit]; a non-positive limit means no limit.
func page[T any](items []T, offset, limit int) []T {
	total := len(items)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return items[offset:end]
}

var _ domainrooms.Repository = (*RoomRepository)(nil)
