package dto

import (
	"time"

	domainbooking "staybook/internal/domain/booking"
	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/money"
)

type MoneyDTO struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type BookingRoomSnapshot struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Type         string `json:"type,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type Booking struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Room      BookingRoomSnapshot `json:"room"`
	CheckIn   time.Time           `json:"check_in"`
	CheckOut  time.Time           `json:"check_out"`
	Nights    int                 `json:"nights"`
	Guests    int                 `json:"guests"`
	Status    string              `json:"status"`
	Total     MoneyDTO            `json:"total"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	// CanReview is set on the owner's own listing once the stay is over and no review exists.
	CanReview bool `json:"can_review,omitempty"`
}

type BookingCollection struct {
	Items []Booking `json:"items"`
}

func MapMoney(value money.Money) MoneyDTO {
	return MoneyDTO{
		Amount:   value.Amount,
		Currency: value.Currency,
	}
}

// MapBooking builds a booking payload; room may be nil when it could not be loaded.
func MapBooking(booking *domainbooking.Booking, room *domainrooms.Room) Booking {
	if booking == nil {
		return Booking{}
	}
	snapshot := BookingRoomSnapshot{ID: string(booking.RoomID)}
	if room != nil {
		snapshot.Name = room.Name
		snapshot.Type = string(room.Type)
		if len(room.Photos) > 0 {
			snapshot.ThumbnailURL = room.Photos[0]
		}
	}
	return Booking{
		ID:        string(booking.ID),
		UserID:    booking.UserID,
		Room:      snapshot,
		CheckIn:   booking.Range.CheckIn,
		CheckOut:  booking.Range.CheckOut,
		Nights:    booking.Range.Nights(),
		Guests:    booking.Guests,
		Status:    booking.Status.String(),
		Total:     MapMoney(booking.Total),
		CreatedAt: booking.CreatedAt,
		UpdatedAt: booking.UpdatedAt,
	}
}
