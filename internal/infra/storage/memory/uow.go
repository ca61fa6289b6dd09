package memory

import (
	"context"
	"errors"
	"sync"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	RoomsRepo    domainrooms.Repository
	BookingsRepo domainbooking.Repository
	ReviewsRepo  domainreviews.Repository
	Locks        *RoomLocks
}

// RoomLocks hands out one mutex per room, shared by every unit of a store.
type RoomLocks struct {
	mu    sync.Mutex
	rooms map[domainrooms.RoomID]*sync.Mutex
}

func NewRoomLocks() *RoomLocks {
	return &RoomLocks{rooms: make(map[domainrooms.RoomID]*sync.Mutex)}
}

func (l *RoomLocks) get(id domainrooms.RoomID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.rooms[id]
	if !ok {
		m = &sync.Mutex{}
		l.rooms[id] = m
	}
	return m
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. Writes are applied
// immediately and are not rolled back; GuardRoom is the only isolation.
// After-commit hooks behave as in the transactional stores.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.RoomsRepo == nil || f.BookingsRepo == nil || f.ReviewsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{rooms: f.RoomsRepo, bookings: f.BookingsRepo, reviews: f.ReviewsRepo, locks: f.Locks}, nil
}

// Unit is a uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	uow.Hooks
	rooms    domainrooms.Repository
	bookings domainbooking.Repository
	reviews  domainreviews.Repository

	locks *RoomLocks
	held  map[domainrooms.RoomID]*sync.Mutex
}

// GuardRoom blocks until no other unit holds the room. The lock is released
// on Commit or Rollback.
func (u *Unit) GuardRoom(ctx context.Context, id domainrooms.RoomID) error {
	if u.locks == nil {
		return nil
	}
	if _, ok := u.held[id]; ok {
		return nil
	}
	m := u.locks.get(id)
	m.Lock()
	if u.held == nil {
		u.held = make(map[domainrooms.RoomID]*sync.Mutex)
	}
	u.held[id] = m
	return nil
}

func (u *Unit) release() {
	for id, m := range u.held {
		m.Unlock()
		delete(u.held, id)
	}
}

func (u *Unit) Rooms() domainrooms.Repository {
	return u.rooms
}

func (u *Unit) Bookings() domainbooking.Repository {
	return u.bookings
}

func (u *Unit) Reviews() domainreviews.Repository {
	return u.reviews
}

func (u *Unit) Commit(ctx context.Context) error {
	u.release()
	u.RunHooks(ctx)
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.release()
	u.DiscardHooks()
	return nil
}

// Store bundles the in-memory repositories behind one factory.
type Store struct {
	Rooms    *RoomRepository
	Bookings *BookingRepository
	Reviews  *ReviewRepository
	Locks    *RoomLocks
}

func NewStore() *Store {
	return &Store{
		Rooms:    NewRoomRepository(),
		Bookings: NewBookingRepository(),
		Reviews:  NewReviewRepository(),
		Locks:    NewRoomLocks(),
	}
}

func (s *Store) Factory() Factory {
	return Factory{RoomsRepo: s.Rooms, BookingsRepo: s.Bookings, ReviewsRepo: s.Reviews, Locks: s.Locks}
}

var (
	_ uow.UoWFactory = Factory{}
	_ uow.RoomGuard  = (*Unit)(nil)
)
