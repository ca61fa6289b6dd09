package dto

import (
	"time"

	domainrooms "staybook/internal/domain/rooms"
)

type Room struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Description  string    `json:"description,omitempty"`
	Capacity     int       `json:"capacity"`
	Amenities    []string  `json:"amenities"`
	Photos       []string  `json:"photos"`
	NightlyRate  MoneyDTO  `json:"nightly_rate"`
	Rating       float64   `json:"rating"`
	ReviewsCount int       `json:"reviews_count"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type RoomCollection struct {
	Items  []Room `json:"items"`
	Total  int    `json:"total"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type RoomRating struct {
	RoomID       string  `json:"room_id"`
	Rating       float64 `json:"rating"`
	ReviewsCount int     `json:"reviews_count"`
}

func MapRoom(room *domainrooms.Room) Room {
	if room == nil {
		return Room{}
	}
	return Room{
		ID:           string(room.ID),
		Name:         room.Name,
		Type:         string(room.Type),
		Description:  room.Description,
		Capacity:     room.Capacity,
		Amenities:    nonNil(room.Amenities),
		Photos:       nonNil(room.Photos),
		NightlyRate:  MapMoney(room.NightlyRate),
		Rating:       room.Rating,
		ReviewsCount: room.ReviewsCount,
		Available:    room.Available,
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
}

func MapRoomRating(id domainrooms.RoomID, summary domainrooms.RatingSummary) RoomRating {
	return RoomRating{RoomID: string(id), Rating: summary.Rating, ReviewsCount: summary.Count}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
