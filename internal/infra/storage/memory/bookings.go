package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "staybook/internal/domain/booking"
	domainrooms "staybook/internal/domain/rooms"
)

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrBookingNotFound
	}
	return b.Clone(), nil
}

// Save stores the current booking state and bumps its version. A booking
// loaded before another save landed is rejected with ErrConcurrentUpdate.
func (r *BookingRepository) Save(ctx context.Context, b *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[b.ID]; ok && stored.Version != b.Version {
		return domainbooking.ErrConcurrentUpdate
	}
	b.Version++
	r.items[b.ID] = b.Clone()
	return nil
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domainbooking.Booking, error) {
	return r.List(ctx, domainbooking.ListFilter{UserID: userID})
}

func (r *BookingRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID) ([]*domainbooking.Booking, error) {
	return r.List(ctx, domainbooking.ListFilter{RoomID: roomID})
}

// List returns matching bookings, newest first.
func (r *BookingRepository) List(ctx context.Context, filter domainbooking.ListFilter) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, b := range r.items {
		if filter.Matches(b) {
			matches = append(matches, b.Clone())
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

var _ domainbooking.Repository = (*BookingRepository)(nil)
