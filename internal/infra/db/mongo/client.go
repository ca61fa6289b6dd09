package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	roomsCollection       = "rooms"
	bookingsCollection    = "bookings"
	reviewsCollection     = "reviews"
	usersCollection       = "users"
	idempotencyCollection = "app_idempotency"
)

type Client struct {
	DB *mongo.Database
}

func New(ctx context.Context, uri, database string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := m.Ping(ctx, nil); err != nil {
		_ = m.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: ping: %w", err)
	}
	return &Client{DB: m.Database(database)}, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.DB.Client().Disconnect(ctx)
}

// Store bundles the Mongo repositories over one database.
type Store struct {
	Rooms       *RoomRepository
	Bookings    *BookingRepository
	Reviews     *ReviewRepository
	Users       *UserRepository
	Idempotency *IdempotencyStore
	db          *mongo.Database
}

func NewStore(db *mongo.Database, idempotencyTTL time.Duration) *Store {
	return &Store{
		Rooms:       NewRoomRepository(db),
		Bookings:    NewBookingRepository(db),
		Reviews:     NewReviewRepository(db),
		Users:       NewUserRepository(db),
		Idempotency: NewIdempotencyStore(db, idempotencyTTL),
		db:          db,
	}
}

// EnsureIndexes creates every index the repositories rely on, including the
// unique booking_id index that enforces one review per booking.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	steps := []func(context.Context) error{
		s.Rooms.ensureIndexes,
		s.Bookings.ensureIndexes,
		s.Reviews.ensureIndexes,
		s.Users.ensureIndexes,
		s.Idempotency.ensureIndexes,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Factory() Factory {
	return Factory{DB: s.db, RoomsRepo: s.Rooms, BookingsRepo: s.Bookings, ReviewsRepo: s.Reviews}
}

func createIndexes(ctx context.Context, col *mongo.Collection, models ...mongo.IndexModel) error {
	if _, err := col.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("mongo: create indexes on %s: %w", col.Name(), err)
	}
	return nil
}
