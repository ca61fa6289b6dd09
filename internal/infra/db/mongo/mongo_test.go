package mongo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

var testNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func TestRoomUpsertLeavesRatingFieldsToAggregator(t *testing.T) {
	room := &domainrooms.Room{
		ID:           "room-101",
		Name:         "Sea view",
		Type:         "double",
		Capacity:     2,
		NightlyRate:  money.Must(12000, "USD"),
		Rating:       4.5,
		ReviewsCount: 8,
		Available:    true,
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}

	filter, update := roomUpsert(room)

	assert.Equal(t, bson.M{"_id": "room-101"}, filter)
	set := update["$set"].(bson.M)
	assert.NotContains(t, set, "rating")
	assert.NotContains(t, set, "reviews_count")
	assert.Equal(t, true, set["available"])
	assert.Equal(t, []string{}, set["amenities"])
	onInsert := update["$setOnInsert"].(bson.M)
	assert.Equal(t, 0.0, onInsert["rating"])
	assert.Equal(t, 0, onInsert["reviews_count"])
}

func TestRoomFilter(t *testing.T) {
	assert.Empty(t, roomFilter(domainrooms.SearchParams{}))

	filter := roomFilter(domainrooms.SearchParams{
		OnlyAvailable: true,
		Type:          "suite",
		MinCapacity:   3,
		MinRating:     4,
		MaxRateAmount: 30000,
	})
	assert.Equal(t, bson.M{
		"available":           true,
		"type":                "suite",
		"capacity":            bson.M{"$gte": 3},
		"rating":              bson.M{"$gte": 4.0},
		"nightly_rate.amount": bson.M{"$lte": int64(30000)},
	}, filter)
}

func TestRoomSort(t *testing.T) {
	assert.Equal(t, "nightly_rate.amount", roomSort("")[0].Key)
	assert.Equal(t, 1, roomSort(domainrooms.SortByPriceAsc)[0].Value)
	assert.Equal(t, -1, roomSort(domainrooms.SortByPriceDesc)[0].Value)
	assert.Equal(t, "rating", roomSort(domainrooms.SortByRating)[0].Key)
}

func TestRoomDocumentRoundTrip(t *testing.T) {
	room := &domainrooms.Room{
		ID:           "room-7",
		Name:         "Garden",
		Type:         "single",
		Capacity:     1,
		Amenities:    []string{"wifi"},
		Photos:       []string{"http://cdn/rooms/room-7/a.jpg"},
		NightlyRate:  money.Must(9000, "EUR"),
		Rating:       3.7,
		ReviewsCount: 3,
		Available:    false,
		CreatedAt:    testNow,
		UpdatedAt:    testNow.Add(time.Hour),
	}

	got := newRoomDocument(room).toAggregate()

	assert.Equal(t, room, got)
}

func TestBookingFilter(t *testing.T) {
	assert.Empty(t, bookingFilter(domainbooking.ListFilter{}))
	assert.Equal(t, bson.M{"status": "confirmed", "room_id": "room-1", "user_id": "u-1"},
		bookingFilter(domainbooking.ListFilter{Status: domainbooking.StatusConfirmed, RoomID: "room-1", UserID: "u-1"}))
}

func TestBookingDocumentRoundTrip(t *testing.T) {
	b := &domainbooking.Booking{
		ID:     "bk-1",
		UserID: "u-1",
		RoomID: "room-101",
		Range: daterange.DateRange{
			CheckIn:  time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
			CheckOut: time.Date(2026, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		Guests:    2,
		Total:     money.Must(24000, "USD"),
		Status:    domainbooking.StatusPending,
		CreatedAt: testNow,
		UpdatedAt: testNow,
		Version:   3,
	}

	doc := newBookingDocument(b)
	require.Equal(t, "pending", doc.Status)
	require.Equal(t, int64(3), doc.Version)

	assert.Equal(t, b, doc.toAggregate())
}

func TestTallyPipeline(t *testing.T) {
	pipeline := tallyPipeline("room-9")

	require.Len(t, pipeline, 2)
	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, bson.D{{Key: "room_id", Value: "room-9"}}, pipeline[0][0].Value)
	assert.Equal(t, "$group", pipeline[1][0].Key)
	group := pipeline[1][0].Value.(bson.D)
	assert.Equal(t, bson.D{{Key: "$sum", Value: "$rating"}}, group[1].Value)
	assert.Equal(t, bson.D{{Key: "$sum", Value: 1}}, group[2].Value)
}

func TestReviewDocumentRoundTrip(t *testing.T) {
	review := &domainreviews.Review{
		ID:           "rv-1",
		AuthorID:     "u-1",
		RoomID:       "room-101",
		BookingID:    "bk-1",
		Rating:       4,
		Title:        "Lovely",
		Comment:      "Quiet room, great breakfast.",
		HelpfulVotes: []string{"u-2"},
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}

	assert.Equal(t, review, newReviewDocument(review).toAggregate())
	assert.Equal(t, []string{}, newReviewDocument(&domainreviews.Review{}).HelpfulVotes)
}

func TestUserFilterEscapesQuery(t *testing.T) {
	assert.Empty(t, userFilter(""))

	filter := userFilter("a.b+c")
	or := filter["$or"].(bson.A)
	require.Len(t, or, 2)
	pattern := or[0].(bson.M)["email"].(primitive.Regex)
	assert.Equal(t, `a\.b\+c`, pattern.Pattern)
	assert.Equal(t, "i", pattern.Options)
}

func TestUserDocumentNormalizesEmail(t *testing.T) {
	u := &domainuser.User{
		ID:           "u-1",
		Email:        " Guest@Example.COM ",
		Name:         "Guest",
		PasswordHash: "hash",
		Roles:        []domainuser.Role{domainuser.RoleGuest, domainuser.RoleAdmin},
		CreatedAt:    testNow,
		UpdatedAt:    testNow,
	}

	doc := newUserDocument(u)
	assert.Equal(t, "guest@example.com", doc.Email)
	assert.Equal(t, []string{"guest", "admin"}, doc.Roles)

	back := doc.toAggregate()
	assert.Equal(t, u.Roles, back.Roles)
	assert.Equal(t, "guest@example.com", back.Email)
}

func TestGuardRoomIncrementsBookingSequence(t *testing.T) {
	assert.Equal(t, bson.M{"$inc": bson.M{"booking_seq": 1}}, bookingSeqBump())
}

func TestIsWriteConflict(t *testing.T) {
	conflict := mongo.CommandError{Code: writeConflictCode, Name: "WriteConflict"}
	transient := mongo.CommandError{Code: 251, Labels: []string{"TransientTransactionError"}}

	assert.True(t, isWriteConflict(conflict))
	assert.True(t, isWriteConflict(transient))
	assert.True(t, isWriteConflict(fmt.Errorf("update room: %w", conflict)))
	assert.False(t, isWriteConflict(mongo.CommandError{Code: 11000}))
	assert.False(t, isWriteConflict(errors.New("boom")))
}
