package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
)

type ReviewRepository struct {
	col *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{col: db.Collection(reviewsCollection)}
}

func (r *ReviewRepository) ensureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		mongo.IndexModel{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		mongo.IndexModel{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "created_at", Value: -1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "author_id", Value: 1}}},
	)
}

func (r *ReviewRepository) ByID(ctx context.Context, id domainreviews.ReviewID) (*domainreviews.Review, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	return r.findOne(ctx, bson.M{"booking_id": string(bookingID)})
}

func (r *ReviewRepository) ListByRoom(ctx context.Context, roomID domainrooms.RoomID, limit, offset int) ([]*domainreviews.Review, error) {
	opts := options.Find().SetSort(newestFirst())
	if offset > 0 {
		opts.SetSkip(int64(offset))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"room_id": string(roomID)}, opts)
}

func (r *ReviewRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domainreviews.Review, error) {
	return r.find(ctx, bson.M{"author_id": authorID}, options.Find().SetSort(newestFirst()))
}

// TallyByRoom sums ratings server side; a room without reviews yields a zero Tally.
func (r *ReviewRepository) TallyByRoom(ctx context.Context, roomID domainrooms.RoomID) (domainrooms.Tally, error) {
	cur, err := r.col.Aggregate(ctx, tallyPipeline(roomID))
	if err != nil {
		return domainrooms.Tally{}, err
	}
	var rows []struct {
		Sum   int `bson:"sum"`
		Count int `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return domainrooms.Tally{}, err
	}
	if len(rows) == 0 {
		return domainrooms.Tally{}, nil
	}
	return domainrooms.Tally{Sum: rows[0].Sum, Count: rows[0].Count}, nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domainreviews.Review) error {
	if _, err := r.col.InsertOne(ctx, newReviewDocument(review)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domainreviews.ErrDuplicateReview
		}
		return err
	}
	return nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	doc := newReviewDocument(review)
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id domainreviews.ReviewID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": string(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domainreviews.ErrNotFound
	}
	return nil
}

func (r *ReviewRepository) findOne(ctx context.Context, filter bson.M) (*domainreviews.Review, error) {
	var doc reviewDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainreviews.ErrNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *ReviewRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domainreviews.Review, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []reviewDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*domainreviews.Review, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.toAggregate())
	}
	return out, nil
}

func tallyPipeline(roomID domainrooms.RoomID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "room_id", Value: string(roomID)}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "sum", Value: bson.D{{Key: "$sum", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

func newestFirst() bson.D {
	return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
}

type reviewDocument struct {
	ID           string    `bson:"_id"`
	AuthorID     string    `bson:"author_id"`
	RoomID       string    `bson:"room_id"`
	BookingID    string    `bson:"booking_id"`
	Rating       int       `bson:"rating"`
	Title        string    `bson:"title"`
	Comment      string    `bson:"comment"`
	HelpfulVotes []string  `bson:"helpful_votes"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func newReviewDocument(r *domainreviews.Review) reviewDocument {
	return reviewDocument{
		ID:           string(r.ID),
		AuthorID:     r.AuthorID,
		RoomID:       string(r.RoomID),
		BookingID:    string(r.BookingID),
		Rating:       r.Rating,
		Title:        r.Title,
		Comment:      r.Comment,
		HelpfulVotes: nonNil(r.HelpfulVotes),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func (d reviewDocument) toAggregate() *domainreviews.Review {
	return &domainreviews.Review{
		ID:           domainreviews.ReviewID(d.ID),
		AuthorID:     d.AuthorID,
		RoomID:       domainrooms.RoomID(d.RoomID),
		BookingID:    domainbooking.BookingID(d.BookingID),
		Rating:       d.Rating,
		Title:        d.Title,
		Comment:      d.Comment,
		HelpfulVotes: d.HelpfulVotes,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

var _ domainreviews.Repository = (*ReviewRepository)(nil)
