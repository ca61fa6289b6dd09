package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	reviewsapp "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/queries"
)

type MeHTTP interface {
	ListBookings(c *gin.Context)
	ListReviews(c *gin.Context)
}

type MeHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h MeHandler) ListBookings(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	query := bookingapp.ListUserBookingsQuery{UserID: user.ID()}
	result, err := queries.Ask[bookingapp.ListUserBookingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "me bookings query failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h MeHandler) ListReviews(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	query := reviewsapp.ListAuthorReviewsQuery{AuthorID: user.ID()}
	result, err := queries.Ask[reviewsapp.ListAuthorReviewsQuery, *dto.ReviewCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, "me reviews query failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ MeHTTP = (*MeHandler)(nil)
