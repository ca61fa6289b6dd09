package booking

import (
	"errors"
	"time"

	"staybook/internal/domain/shared/daterange"
)

var ErrCheckInInPast = errors.New("booking: check-in date is in the past")

func ValidateDateRange(dr daterange.DateRange, now time.Time) error {
	if dr.CheckIn.Before(daterange.Day(now)) {
		return ErrCheckInInPast
	}
	return nil
}

// Conflicts returns the first active booking whose dates overlap dr.
func Conflicts(existing []*Booking, dr daterange.DateRange) *Booking {
	for _, other := range existing {
		if other == nil || !other.Status.Active() {
			continue
		}
		if other.Range.Overlaps(dr) {
			return other
		}
	}
	return nil
}
