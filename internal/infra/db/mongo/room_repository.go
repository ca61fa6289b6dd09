package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/money"
)

// RoomRepository stores rooms. Save never writes rating or reviews_count;
// those fields belong to UpdateRating.
type RoomRepository struct {
	col *mongo.Collection
}

func NewRoomRepository(db *mongo.Database) *RoomRepository {
	return &RoomRepository{col: db.Collection(roomsCollection)}
}

func (r *RoomRepository) ensureIndexes(ctx context.Context) error {
	return createIndexes(ctx, r.col,
		mongo.IndexModel{Keys: bson.D{{Key: "available", Value: 1}, {Key: "nightly_rate.amount", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "rating", Value: -1}}},
	)
}

func (r *RoomRepository) ByID(ctx context.Context, id domainrooms.RoomID) (*domainrooms.Room, error) {
	var doc roomDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": string(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domainrooms.ErrRoomNotFound
		}
		return nil, err
	}
	return doc.toAggregate(), nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainrooms.Room) error {
	if room == nil || room.ID == "" {
		return domainrooms.ErrIDRequired
	}
	filter, update := roomUpsert(room)
	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *RoomRepository) UpdateRating(ctx context.Context, id domainrooms.RoomID, summary domainrooms.RatingSummary) error {
	update := bson.M{"$set": bson.M{"rating": summary.Rating, "reviews_count": summary.Count}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": string(id)}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domainrooms.ErrRoomNotFound
	}
	return nil
}

func (r *RoomRepository) Search(ctx context.Context, params domainrooms.SearchParams) (domainrooms.SearchResult, error) {
	opts := params.Normalized()
	filter := roomFilter(opts)
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return domainrooms.SearchResult{}, err
	}
	findOpts := options.Find().
		SetSort(roomSort(opts.Sort)).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return domainrooms.SearchResult{}, err
	}
	var docs []roomDocument
	if err := cur.All(ctx, &docs); err != nil {
		return domainrooms.SearchResult{}, err
	}
	items := make([]*domainrooms.Room, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toAggregate())
	}
	return domainrooms.SearchResult{Items: items, Total: int(total)}, nil
}

// roomUpsert writes the admin-owned fields. rating and reviews_count are only
// initialised when the document is inserted.
func roomUpsert(room *domainrooms.Room) (bson.M, bson.M) {
	doc := newRoomDocument(room)
	set := bson.M{
		"name":         doc.Name,
		"type":         doc.Type,
		"description":  doc.Description,
		"capacity":     doc.Capacity,
		"amenities":    doc.Amenities,
		"photos":       doc.Photos,
		"nightly_rate": doc.NightlyRate,
		"available":    doc.Available,
		"updated_at":   doc.UpdatedAt,
	}
	onInsert := bson.M{
		"rating":        0.0,
		"reviews_count": 0,
		"created_at":    doc.CreatedAt,
	}
	return bson.M{"_id": doc.ID}, bson.M{"$set": set, "$setOnInsert": onInsert}
}

// roomFilter mirrors SearchParams.Matches for normalized params.
func roomFilter(p domainrooms.SearchParams) bson.M {
	filter := bson.M{}
	if p.OnlyAvailable {
		filter["available"] = true
	}
	if p.Type != "" {
		filter["type"] = string(p.Type)
	}
	if p.MinCapacity > 0 {
		filter["capacity"] = bson.M{"$gte": p.MinCapacity}
	}
	if p.MinRating > 0 {
		filter["rating"] = bson.M{"$gte": p.MinRating}
	}
	if p.MaxRateAmount > 0 {
		filter["nightly_rate.amount"] = bson.M{"$lte": p.MaxRateAmount}
	}
	return filter
}

func roomSort(order domainrooms.SortOrder) bson.D {
	switch order {
	case domainrooms.SortByPriceDesc:
		return bson.D{{Key: "nightly_rate.amount", Value: -1}, {Key: "_id", Value: 1}}
	case domainrooms.SortByRating:
		return bson.D{{Key: "rating", Value: -1}, {Key: "nightly_rate.amount", Value: 1}}
	default:
		return bson.D{{Key: "nightly_rate.amount", Value: 1}, {Key: "_id", Value: 1}}
	}
}

type roomDocument struct {
	ID           string      `bson:"_id"`
	Name         string      `bson:"name"`
	Type         string      `bson:"type"`
	Description  string      `bson:"description"`
	Capacity     int         `bson:"capacity"`
	Amenities    []string    `bson:"amenities"`
	Photos       []string    `bson:"photos"`
	NightlyRate  money.Money `bson:"nightly_rate"`
	Rating       float64     `bson:"rating"`
	ReviewsCount int         `bson:"reviews_count"`
	Available    bool        `bson:"available"`
	CreatedAt    time.Time   `bson:"created_at"`
	UpdatedAt    time.Time   `bson:"updated_at"`
}

func newRoomDocument(room *domainrooms.Room) roomDocument {
	return roomDocument{
		ID:           string(room.ID),
		Name:         room.Name,
		Type:         string(room.Type),
		Description:  room.Description,
		Capacity:     room.Capacity,
		Amenities:    nonNil(room.Amenities),
		Photos:       nonNil(room.Photos),
		NightlyRate:  room.NightlyRate,
		Rating:       room.Rating,
		ReviewsCount: room.ReviewsCount,
		Available:    room.Available,
		CreatedAt:    room.CreatedAt.UTC(),
		UpdatedAt:    room.UpdatedAt.UTC(),
	}
}

func (d roomDocument) toAggregate() *domainrooms.Room {
	return &domainrooms.Room{
		ID:           domainrooms.RoomID(d.ID),
		Name:         d.Name,
		Type:         domainrooms.RoomType(d.Type),
		Description:  d.Description,
		Capacity:     d.Capacity,
		Amenities:    d.Amenities,
		Photos:       d.Photos,
		NightlyRate:  d.NightlyRate,
		Rating:       d.Rating,
		ReviewsCount: d.ReviewsCount,
		Available:    d.Available,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

var _ domainrooms.Repository = (*RoomRepository)(nil)
