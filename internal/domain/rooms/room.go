package rooms

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/shared/money"
)

var (
	ErrRoomNotFound    = errors.New("rooms: not found")
	ErrRoomExists      = errors.New("rooms: room already exists")
	ErrIDRequired      = errors.New("rooms: id is required")
	ErrNameRequired    = errors.New("rooms: name is required")
	ErrInvalidType     = errors.New("rooms: unknown room type")
	ErrInvalidCapacity = errors.New("rooms: capacity must be at least 1")
	ErrInvalidRate     = errors.New("rooms: nightly rate must be positive")
	ErrPhotoRequired   = errors.New("rooms: photo url is required")
)

type RoomID string

type RoomType string

const (
	TypeSingle RoomType = "single"
	TypeDouble RoomType = "double"
	TypeTwin   RoomType = "twin"
	TypeSuite  RoomType = "suite"
	TypeDeluxe RoomType = "deluxe"
	TypeFamily RoomType = "family"
)

func ParseType(raw string) (RoomType, error) {
	t := RoomType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case TypeSingle, TypeDouble, TypeTwin, TypeSuite, TypeDeluxe, TypeFamily:
		return t, nil
	}
	return "", ErrInvalidType
}

// Room is a bookable unit. Rating and ReviewsCount are derived from the room's
// reviews and are only written through Repository.UpdateRating.
type Room struct {
	ID           RoomID
	Name         string
	Type         RoomType
	Description  string
	Capacity     int
	Amenities    []string
	Photos       []string
	NightlyRate  money.Money
	Rating       float64
	ReviewsCount int
	Available    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	Save(ctx context.Context, room *Room) error
	UpdateRating(ctx context.Context, id RoomID, summary RatingSummary) error
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

type CreateParams struct {
	ID          RoomID
	Name        string
	Type        string
	Description string
	Capacity    int
	Amenities   []string
	NightlyRate money.Money
	Available   bool
	Now         time.Time
}

func NewRoom(params CreateParams) (*Room, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	details, err := normalizeDetails(DetailsParams{
		Name:        params.Name,
		Type:        params.Type,
		Description: params.Description,
		Capacity:    params.Capacity,
		Amenities:   params.Amenities,
		NightlyRate: params.NightlyRate,
	})
	if err != nil {
		return nil, err
	}
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	room := &Room{
		ID:        params.ID,
		Available: params.Available,
		CreatedAt: now,
		UpdatedAt: now,
	}
	room.applyDetails(details)
	return room, nil
}

// DetailsParams carries the admin-editable descriptive fields.
type DetailsParams struct {
	Name        string
	Type        string
	Description string
	Capacity    int
	Amenities   []string
	NightlyRate money.Money
}

func (r *Room) UpdateDetails(params DetailsParams, now time.Time) error {
	details, err := normalizeDetails(params)
	if err != nil {
		return err
	}
	r.applyDetails(details)
	r.touch(now)
	return nil
}

func (r *Room) SetAvailability(available bool, now time.Time) {
	r.Available = available
	r.touch(now)
}

func (r *Room) AddPhoto(url string, now time.Time) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrPhotoRequired
	}
	r.Photos = append(r.Photos, url)
	r.touch(now)
	return nil
}

func (r *Room) ApplyRating(summary RatingSummary) {
	r.Rating = summary.Rating
	r.ReviewsCount = summary.Count
}

// Clone returns a deep copy safe to hand out of a store.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Amenities = append([]string(nil), r.Amenities...)
	cp.Photos = append([]string(nil), r.Photos...)
	return &cp
}

func (r *Room) applyDetails(d DetailsParams) {
	r.Name = d.Name
	r.Type = RoomType(d.Type)
	r.Description = d.Description
	r.Capacity = d.Capacity
	r.Amenities = d.Amenities
	r.NightlyRate = d.NightlyRate
}

func (r *Room) touch(now time.Time) {
	if now.IsZero() {
		now = time.Now()
	}
	r.UpdatedAt = now.UTC()
}

func normalizeDetails(p DetailsParams) (DetailsParams, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return DetailsParams{}, ErrNameRequired
	}
	roomType, err := ParseType(p.Type)
	if err != nil {
		return DetailsParams{}, err
	}
	p.Type = string(roomType)
	if p.Capacity < 1 {
		return DetailsParams{}, ErrInvalidCapacity
	}
	if !p.NightlyRate.IsPositive() || p.NightlyRate.Currency == "" {
		return DetailsParams{}, ErrInvalidRate
	}
	p.Description = strings.TrimSpace(p.Description)
	p.Amenities = normalizeTokens(p.Amenities)
	return p, nil
}

func normalizeTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		token = strings.TrimSpace(strings.ToLower(token))
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		out = append(out, token)
	}
	return out
}
