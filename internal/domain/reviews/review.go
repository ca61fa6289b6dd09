package reviews

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"staybook/internal/domain/booking"
	"staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/events"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxTitleLength   = 100
	MinCommentLength = 10
	MaxCommentLength = 1000
)

var (
	ErrInvalidRating    = errors.New("reviews: rating must be between 1 and 5")
	ErrInvalidTitle     = errors.New("reviews: title must be between 1 and 100 characters")
	ErrInvalidComment   = errors.New("reviews: comment must be between 10 and 1000 characters")
	ErrNotFound         = errors.New("reviews: not found")
	ErrDuplicateReview  = errors.New("reviews: booking already has a review")
	ErrForbidden        = errors.New("reviews: caller is not allowed to modify this review")
	ErrStayNotCompleted = errors.New("reviews: stay is not completed yet")
	ErrOwnReviewVote    = errors.New("reviews: authors cannot vote on their own review")
)

type ReviewID string

type Review struct {
	ID           ReviewID
	AuthorID     string
	RoomID       rooms.RoomID
	BookingID    booking.BookingID
	Rating       int
	Title        string
	Comment      string
	HelpfulVotes []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	events.EventRecorder
}

// Repository stores reviews. Create must reject a second review for the same
// booking with ErrDuplicateReview.
type Repository interface {
	ByID(ctx context.Context, id ReviewID) (*Review, error)
	ByBooking(ctx context.Context, bookingID booking.BookingID) (*Review, error)
	ListByRoom(ctx context.Context, roomID rooms.RoomID, limit, offset int) ([]*Review, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*Review, error)
	TallyByRoom(ctx context.Context, roomID rooms.RoomID) (rooms.Tally, error)
	Create(ctx context.Context, review *Review) error
	Save(ctx context.Context, review *Review) error
	Delete(ctx context.Context, id ReviewID) error
}

type SubmitParams struct {
	ID        ReviewID
	Booking   *booking.Booking
	AuthorID  string
	Rating    int
	Title     string
	Comment   string
	CreatedAt time.Time
}

// Submit creates a review for a completed stay of the author.
func Submit(params SubmitParams) (*Review, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("reviews: id required")
	}
	stay := params.Booking
	if stay == nil {
		return nil, booking.ErrBookingNotFound
	}
	if !stay.OwnedBy(params.AuthorID) {
		return nil, ErrForbidden
	}
	if stay.Status != booking.StatusCheckedOut {
		return nil, ErrStayNotCompleted
	}
	title, comment, err := ValidateContent(params.Rating, params.Title, params.Comment)
	if err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	review := &Review{
		ID:        params.ID,
		AuthorID:  params.AuthorID,
		RoomID:    stay.RoomID,
		BookingID: stay.ID,
		Rating:    params.Rating,
		Title:     title,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	review.Record(ReviewCreated{ReviewID: review.ID, RoomID: review.RoomID, BookingID: review.BookingID, Rating: review.Rating, At: now})
	return review, nil
}

// ValidateContent checks the rating range and the trimmed title and comment lengths.
func ValidateContent(rating int, title, comment string) (string, string, error) {
	if rating < MinRating || rating > MaxRating {
		return "", "", ErrInvalidRating
	}
	title = strings.TrimSpace(title)
	if n := utf8.RuneCountInString(title); n < 1 || n > MaxTitleLength {
		return "", "", ErrInvalidTitle
	}
	comment = strings.TrimSpace(comment)
	if n := utf8.RuneCountInString(comment); n < MinCommentLength || n > MaxCommentLength {
		return "", "", ErrInvalidComment
	}
	return title, comment, nil
}

func (r *Review) EditableBy(userID string) bool {
	return userID != "" && r.AuthorID == userID
}

func (r *Review) Update(rating int, title, comment string, now time.Time) error {
	title, comment, err := ValidateContent(rating, title, comment)
	if err != nil {
		return err
	}
	previous := r.Rating
	r.Rating = rating
	r.Title = title
	r.Comment = comment
	r.touch(now)
	r.Record(ReviewUpdated{ReviewID: r.ID, RoomID: r.RoomID, PreviousRating: previous, Rating: rating, At: r.UpdatedAt})
	return nil
}

// ToggleHelpful adds or removes userID from the helpful votes and reports
// whether the vote is now present.
func (r *Review) ToggleHelpful(userID string, now time.Time) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, ErrForbidden
	}
	if r.AuthorID == userID {
		return false, ErrOwnReviewVote
	}
	for i, voter := range r.HelpfulVotes {
		if voter == userID {
			r.HelpfulVotes = append(r.HelpfulVotes[:i], r.HelpfulVotes[i+1:]...)
			r.touch(now)
			return false, nil
		}
	}
	r.HelpfulVotes = append(r.HelpfulVotes, userID)
	r.touch(now)
	return true, nil
}

// MarkDeleted records the removal; the repository performs the actual delete.
func (r *Review) MarkDeleted(actorID string, now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	r.Record(ReviewDeleted{ReviewID: r.ID, RoomID: r.RoomID, BookingID: r.BookingID, ActorID: actorID, At: now.UTC()})
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	cp := *r
	cp.HelpfulVotes = append([]string(nil), r.HelpfulVotes...)
	cp.EventRecorder = events.EventRecorder{}
	return &cp
}

func (r *Review) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	r.UpdatedAt = now.UTC()
}
