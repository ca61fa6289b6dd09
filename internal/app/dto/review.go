package dto

import (
	"time"

	domainreviews "staybook/internal/domain/reviews"
)

// Review represents a public review payload.
type Review struct {
	ID           string    `json:"id"`
	BookingID    string    `json:"booking_id"`
	RoomID       string    `json:"room_id"`
	AuthorID     string    `json:"author_id"`
	Rating       int       `json:"rating"`
	Title        string    `json:"title"`
	Comment      string    `json:"comment"`
	HelpfulVotes int       `json:"helpful_votes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ReviewCollection struct {
	Items []Review `json:"items"`
	Total int      `json:"total"`
}

type HelpfulVote struct {
	ReviewID     string `json:"review_id"`
	Voted        bool   `json:"voted"`
	HelpfulVotes int    `json:"helpful_votes"`
}

// MapReview builds a DTO from a domain review.
func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:           string(review.ID),
		BookingID:    string(review.BookingID),
		RoomID:       string(review.RoomID),
		AuthorID:     review.AuthorID,
		Rating:       review.Rating,
		Title:        review.Title,
		Comment:      review.Comment,
		HelpfulVotes: len(review.HelpfulVotes),
		CreatedAt:    review.CreatedAt,
		UpdatedAt:    review.UpdatedAt,
	}
}

func MapReviews(items []*domainreviews.Review) []Review {
	out := make([]Review, 0, len(items))
	for _, item := range items {
		out = append(out, MapReview(item))
	}
	return out
}
