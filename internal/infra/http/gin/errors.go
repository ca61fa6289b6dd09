package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/middleware"
	"staybook/internal/app/rating"
	authsvc "staybook/internal/app/services/auth"
	domainbooking "staybook/internal/domain/booking"
	domainreviews "staybook/internal/domain/reviews"
	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/daterange"
	"staybook/internal/domain/shared/money"
	domainuser "staybook/internal/domain/user"
)

var (
	validationErrors = []error{
		middleware.ErrValidation,
		domainbooking.ErrInvalidTransition,
		domainbooking.ErrUnknownStatus,
		domainbooking.ErrTooEarly,
		domainbooking.ErrInvalidGuests,
		domainbooking.ErrCapacityExceeded,
		domainbooking.ErrCheckInInPast,
		domainbooking.ErrRoomUnavailable,
		domainbooking.ErrDatesTaken,
		daterange.ErrInvalidRange,
		domainreviews.ErrInvalidRating,
		domainreviews.ErrInvalidTitle,
		domainreviews.ErrInvalidComment,
		domainreviews.ErrStayNotCompleted,
		domainreviews.ErrOwnReviewVote,
		domainrooms.ErrIDRequired,
		domainrooms.ErrNameRequired,
		domainrooms.ErrInvalidType,
		domainrooms.ErrInvalidCapacity,
		domainrooms.ErrInvalidRate,
		domainrooms.ErrPhotoRequired,
		money.ErrInvalidCurrency,
		money.ErrCurrencyMismatch,
		authsvc.ErrPasswordTooShort,
		domainuser.ErrEmailRequired,
		domainuser.ErrNameRequired,
	}
	forbiddenErrors = []error{
		middleware.ErrAdminRequired,
		domainbooking.ErrForbidden,
		domainreviews.ErrForbidden,
		authsvc.ErrUserBlocked,
	}
	notFoundErrors = []error{
		domainbooking.ErrBookingNotFound,
		domainrooms.ErrRoomNotFound,
		domainreviews.ErrNotFound,
		domainuser.ErrNotFound,
	}
	conflictErrors = []error{
		domainbooking.ErrConcurrentUpdate,
		domainreviews.ErrDuplicateReview,
		domainrooms.ErrRoomExists,
		domainuser.ErrEmailAlreadyUsed,
	}
)

// statusFor classifies an application error into an HTTP status. A failed
// aggregation over a missing room is still a 404.
func statusFor(err error) int {
	switch {
	case errors.Is(err, authsvc.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case matchesAny(err, forbiddenErrors):
		return http.StatusForbidden
	case matchesAny(err, notFoundErrors):
		return http.StatusNotFound
	case errors.Is(err, rating.ErrAggregationFailed):
		return http.StatusInternalServerError
	case matchesAny(err, conflictErrors):
		return http.StatusConflict
	case matchesAny(err, validationErrors):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// respondError writes {"error": ...}. Internal errors are logged and hidden from the client.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.ErrorContext(c.Request.Context(), msg, "error", err, "path", c.FullPath())
		}
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
