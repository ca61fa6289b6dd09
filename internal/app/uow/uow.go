package uow

import (
	"context"

	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Rooms() domainrooms.Repository
	Bookings() domainbooking.Repository
	Reviews() domainreviews.Repository

	// AfterCommit registers fn to run once Commit has succeeded. Hooks never
	// run after Rollback.
	AfterCommit(fn func(ctx context.Context))

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}

// RoomGuard is implemented by units that can serialise booking writes on one
// room. GuardRoom holds until the unit commits or rolls back; a competing
// writer either waits or fails with booking.ErrConcurrentUpdate.
type RoomGuard interface {
	GuardRoom(ctx context.Context, id domainrooms.RoomID) error
}
