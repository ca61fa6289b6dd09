package reviews

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staybook/internal/domain/booking"
)

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func completedStay() *booking.Booking {
	return &booking.Booking{ID: "bk-1", UserID: "guest-1", RoomID: "room-1", Status: booking.StatusCheckedOut}
}

func submit(t *testing.T) *Review {
	t.Helper()
	r, err := Submit(SubmitParams{
		ID:        "rv-1",
		Booking:   completedStay(),
		AuthorID:  "guest-1",
		Rating:    4,
		Title:     "  Quiet and clean ",
		Comment:   "Great stay, friendly staff.",
		CreatedAt: now,
	})
	require.NoError(t, err)
	return r
}

func TestSubmit(t *testing.T) {
	r := submit(t)

	assert.Equal(t, "Quiet and clean", r.Title)
	assert.Equal(t, booking.BookingID("bk-1"), r.BookingID)
	assert.EqualValues(t, "room-1", r.RoomID)
	require.Len(t, r.PendingEvents(), 1)
	assert.Equal(t, "review.created", r.PendingEvents()[0].EventName())
}

func TestSubmitRequiresCompletedOwnStay(t *testing.T) {
	stay := completedStay()
	_, err := Submit(SubmitParams{ID: "rv", Booking: stay, AuthorID: "guest-2", Rating: 4, Title: "t", Comment: "long enough text"})
	assert.ErrorIs(t, err, ErrForbidden)

	stay.Status = booking.StatusCheckedIn
	_, err = Submit(SubmitParams{ID: "rv", Booking: stay, AuthorID: "guest-1", Rating: 4, Title: "t", Comment: "long enough text"})
	assert.ErrorIs(t, err, ErrStayNotCompleted)
}

func TestValidateContentBounds(t *testing.T) {
	ok := "ten chars!"
	cases := []struct {
		name    string
		rating  int
		title   string
		comment string
		want    error
	}{
		{"rating too low", 0, "t", ok, ErrInvalidRating},
		{"rating too high", 6, "t", ok, ErrInvalidRating},
		{"blank title", 3, "   ", ok, ErrInvalidTitle},
		{"long title", 3, strings.Repeat("a", 101), ok, ErrInvalidTitle},
		{"short comment", 3, "t", "too short", ErrInvalidComment},
		{"long comment", 3, "t", strings.Repeat("b", 1001), ErrInvalidComment},
		{"max title ok", 5, strings.Repeat("é", 100), ok, nil},
		{"min comment ok", 1, "t", ok, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := ValidateContent(tc.rating, tc.title, tc.comment)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestUpdateKeepsReviewOnInvalidInput(t *testing.T) {
	r := submit(t)
	r.ClearEvents()

	err := r.Update(9, "x", "valid comment here", now)
	assert.ErrorIs(t, err, ErrInvalidRating)
	assert.Equal(t, 4, r.Rating)

	require.NoError(t, r.Update(2, "Changed", "Noisy at night, sadly.", now.Add(time.Hour)))
	assert.Equal(t, 2, r.Rating)
	updated, ok := r.PendingEvents()[0].(ReviewUpdated)
	require.True(t, ok)
	assert.Equal(t, 4, updated.PreviousRating)
}

func TestToggleHelpful(t *testing.T) {
	r := submit(t)

	_, err := r.ToggleHelpful("guest-1", now)
	assert.ErrorIs(t, err, ErrOwnReviewVote)

	voted, err := r.ToggleHelpful("guest-2", now)
	require.NoError(t, err)
	assert.True(t, voted)
	assert.Equal(t, []string{"guest-2"}, r.HelpfulVotes)

	voted, err = r.ToggleHelpful("guest-2", now)
	require.NoError(t, err)
	assert.False(t, voted)
	assert.Empty(t, r.HelpfulVotes)
}
