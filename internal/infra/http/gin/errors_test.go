package ginserver

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"staybook/internal/app/middleware"
	"staybook/internal/app/rating"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: name failed required", middleware.ErrValidation), http.StatusBadRequest},
		{domainbooking.ErrInvalidTransition, http.StatusBadRequest},
		{domainbooking.ErrTooEarly, http.StatusBadRequest},
		{domainbooking.ErrForbidden, http.StatusForbidden},
		{middleware.ErrAdminRequired, http.StatusForbidden},
		{domainbooking.ErrBookingNotFound, http.StatusNotFound},
		{domainreviews.ErrDuplicateReview, http.StatusConflict},
		{fmt.Errorf("%w: r1", domainrooms.ErrRoomExists), http.StatusConflict},
		{domainbooking.ErrConcurrentUpdate, http.StatusConflict},
		{fmt.Errorf("%w: room r1: %w", rating.ErrAggregationFailed, errors.New("mongo down")), http.StatusInternalServerError},
		{fmt.Errorf("%w: room r1: %w", rating.ErrAggregationFailed, domainrooms.ErrRoomNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
