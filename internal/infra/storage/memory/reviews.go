package memory

import (
	"context"
	"sort"
	"sync"

	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
)

// ReviewRepository keeps reviews in memory with one review per booking.
type ReviewRepository struct {
	mu        sync.RWMutex
	items     map[domainreviews.ReviewID]*domainreviews.Review
	byBooking map[domainbooking.BookingID]domainreviews.ReviewID
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		items:     make(map[domainreviews.ReviewID]*domainreviews.Review),
		byBooking: make(map[domainbooking.BookingID]domainreviews.ReviewID),
	}
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[id]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return review.Clone(), nil
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byBooking[bookingID]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	return r.items[id].Clone(), nil
}

func (r *ReviewRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := r.collect(func(rv *domainreviews.Review) bool { return rv.RoomID == roomID })
	return page(matches, offset, limit), nil
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collect(func(rv *domainreviews.Review) bool { return rv.AuthorID == authorID }), nil
}

func (r *ReviewRepository) TallyByRoom(ctx context.Context, roomID domainrooms.RoomID) (domainrooms.Tally, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tally domainrooms.Tally
	for _, review := range r.items {
		if review.RoomID != roomID {
			continue
		}
		tally.Sum += review.Rating
		tally.Count++
	}
	return tally, nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byBooking[review.BookingID]; taken {
		return domainreviews.ErrDuplicateReview
	}
	r.items[review.ID] = review.Clone()
	r.byBooking[review.BookingID] = review.ID
	return nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[review.ID]; !ok {
		return domainreviews.ErrNotFound
	}
	r.items[review.ID] = review.Clone()
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.items[id]
	if !ok {
		return domainreviews.ErrNotFound
	}
	delete(r.byBooking, review.BookingID)
	delete(r.items, id)
	return nil
}

// collect returns clones of matching reviews, newest first. Callers hold the lock.
func (r *ReviewRepository) collect(match func(*domainreviews.Review) bool) []*domainreviews.Review {
	out := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if match(review) {
			out = append(out, review.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
