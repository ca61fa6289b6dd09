package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
type Factory struct {
	DB *mongo.Database

	RoomsRepo    domainrooms.Repository
	BookingsRepo domainbooking.Repository
	ReviewsRepo  domainreviews.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if opts.ReadOnly {
		txnOpts = txnOpts.SetReadPreference(f.DB.ReadPreference())
	}
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		session:  session,
		roomsCol: f.DB.Collection(roomsCollection),
		rooms:    f.RoomsRepo,
		bookings: f.BookingsRepo,
		reviews:  f.ReviewsRepo,
	}, nil
}

type Unit struct {
	uow.Hooks

	session  mongo.Session
	roomsCol *mongo.Collection

	rooms    domainrooms.Repository
	bookings domainbooking.Repository
	reviews  domainreviews.Repository
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

// GuardRoom bumps the room's booking_seq inside the transaction. A second
// transaction touching the same room document aborts with a write conflict,
// so concurrent bookings of one room cannot both commit.
func (u *Unit) GuardRoom(ctx context.Context, id domainrooms.RoomID) error {
	res, err := u.roomsCol.UpdateOne(ctx, bson.M{"_id": string(id)}, bookingSeqBump())
	if err != nil {
		if isWriteConflict(err) {
			return domainbooking.ErrConcurrentUpdate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return domainrooms.ErrRoomNotFound
	}
	return nil
}

func bookingSeqBump() bson.M {
	return bson.M{"$inc": bson.M{"booking_seq": 1}}
}

const writeConflictCode = 112

func isWriteConflict(err error) bool {
	var se mongo.ServerError
	if !errors.As(err, &se) {
		return false
	}
	return se.HasErrorCode(writeConflictCode) || se.HasErrorLabel("TransientTransactionError")
}

// Commit runs the after-commit hooks once the transaction is durable.
func (u *Unit) Commit(ctx context.Context) error {
	if err := u.session.CommitTransaction(ctx); err != nil {
		u.DiscardHooks()
		u.session.EndSession(ctx)
		if isWriteConflict(err) {
			return fmt.Errorf("%w: %w", domainbooking.ErrConcurrentUpdate, err)
		}
		return err
	}
	u.session.EndSession(ctx)
	u.RunHooks(ctx)
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.DiscardHooks()
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}

var (
	_ uow.UoWFactory = Factory{}
	_ uow.RoomGuard  = (*Unit)(nil)
)
