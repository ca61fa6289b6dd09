package rooms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	"staybook/internal/app/handlers/support"
	"staybook/internal/app/uow"
	domainrooms "staybook/internal/domain/rooms"
	"staybook/internal/domain/shared/money"
)

const (
	createRoomKey        = "rooms.create"
	updateRoomKey        = "rooms.update"
	setAvailabilityKey   = "rooms.availability.set"
	attachPhotoKey       = "rooms.photos.attach"
	recalculateRatingKey = "rooms.rating.recalculate"
	defaultRoomCurrency  = "USD"
)

var ErrUploaderUnavailable = errors.New("rooms: photo uploader unavailable")

// PhotoUploader stores an image and returns its public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (string, error)
}

// RatingRecalculator rebuilds a room's rating from its reviews.
type RatingRecalculator interface {
	Recalculate(ctx context.Context, roomID domainrooms.RoomID) (domainrooms.RatingSummary, error)
}

// AdminScope is embedded by every room command; all of them are admin operations.
type AdminScope struct {
	ActorAdmin bool
}

func (AdminScope) AdminOnly() bool       { return true }
func (a AdminScope) CallerIsAdmin() bool { return a.ActorAdmin }

// RoomDetails carries the admin-editable descriptive fields of a room.
type RoomDetails struct {
	Name        string `validate:"required"`
	Type        string `validate:"required"`
	Description string
	Capacity    int `validate:"gte=1"`
	Amenities   []string
	RateAmount  int64 `validate:"gt=0"`
	Currency    string
}

func (d RoomDetails) params(defaultCurrency string) (domainrooms.DetailsParams, error) {
	currency := strings.TrimSpace(d.Currency)
	if currency == "" {
		currency = defaultCurrency
	}
	rate, err := money.New(d.RateAmount, currency)
	if err != nil {
		return domainrooms.DetailsParams{}, fmt.Errorf("%w: %v", domainrooms.ErrInvalidRate, err)
	}
	return domainrooms.DetailsParams{
		Name:        d.Name,
		Type:        d.Type,
		Description: d.Description,
		Capacity:    d.Capacity,
		Amenities:   d.Amenities,
		NightlyRate: rate,
	}, nil
}

type CreateRoomCommand struct {
	AdminScope
	RoomID    string
	Details   RoomDetails
	Available bool
}

func (CreateRoomCommand) Key() string { return createRoomKey }

type UpdateRoomCommand struct {
	AdminScope
	RoomID  string `validate:"required"`
	Details RoomDetails
}

func (UpdateRoomCommand) Key() string { return updateRoomKey }

type SetAvailabilityCommand struct {
	AdminScope
	RoomID    string `validate:"required"`
	Available bool
}

func (SetAvailabilityCommand) Key() string { return setAvailabilityKey }

type AttachPhotoCommand struct {
	AdminScope
	RoomID      string `validate:"required"`
	FileName    string
	ContentType string
	Reader      io.Reader `validate:"required"`
}

func (AttachPhotoCommand) Key() string { return attachPhotoKey }

type RecalculateRatingCommand struct {
	AdminScope
	RoomID string `validate:"required"`
}

func (RecalculateRatingCommand) Key() string { return recalculateRatingKey }

// AdminHandler serves every admin room command.
type AdminHandler struct {
	UoWFactory      uow.UoWFactory
	Uploader        PhotoUploader
	Ratings         RatingRecalculator
	DefaultCurrency string
	Logger          *slog.Logger
	Now             func() time.Time
}

func (h *AdminHandler) CreateRoom(ctx context.Context, cmd CreateRoomCommand) (*dto.Room, error) {
	details, err := cmd.Details.params(h.currency())
	if err != nil {
		return nil, err
	}
	id := strings.TrimSpace(cmd.RoomID)
	if id == "" {
		id = uuid.NewString()
	}
	room, err := domainrooms.NewRoom(domainrooms.CreateParams{
		ID:          domainrooms.RoomID(id),
		Name:        details.Name,
		Type:        details.Type,
		Description: details.Description,
		Capacity:    details.Capacity,
		Amenities:   details.Amenities,
		NightlyRate: details.NightlyRate,
		Available:   cmd.Available,
		Now:         h.now(),
	})
	if err != nil {
		return nil, err
	}
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	if _, err := unit.Rooms().ByID(unit.Ctx, room.ID); err == nil {
		return nil, fmt.Errorf("%w: %s", domainrooms.ErrRoomExists, room.ID)
	} else if !errors.Is(err, domainrooms.ErrRoomNotFound) {
		return nil, err
	}
	return h.save(ctx, unit, room, "room created")
}

func (h *AdminHandler) UpdateRoom(ctx context.Context, cmd UpdateRoomCommand) (*dto.Room, error) {
	details, err := cmd.Details.params(h.currency())
	if err != nil {
		return nil, err
	}
	return h.mutate(ctx, cmd.RoomID, "room updated", func(room *domainrooms.Room) error {
		return room.UpdateDetails(details, h.now())
	})
}

func (h *AdminHandler) SetAvailability(ctx context.Context, cmd SetAvailabilityCommand) (*dto.Room, error) {
	return h.mutate(ctx, cmd.RoomID, "room availability changed", func(room *domainrooms.Room) error {
		room.SetAvailability(cmd.Available, h.now())
		return nil
	})
}

// AttachPhoto uploads the image before loading the room, so a failed upload
// leaves the room untouched.
func (h *AdminHandler) AttachPhoto(ctx context.Context, cmd AttachPhotoCommand) (*dto.Room, error) {
	if h.Uploader == nil {
		return nil, ErrUploaderUnavailable
	}
	if cmd.Reader == nil {
		return nil, domainrooms.ErrPhotoRequired
	}
	key := path.Join("rooms", cmd.RoomID, uuid.NewString()+strings.ToLower(path.Ext(cmd.FileName)))
	url, err := h.Uploader.Upload(ctx, key, cmd.Reader, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	return h.mutate(ctx, cmd.RoomID, "room photo attached", func(room *domainrooms.Room) error {
		return room.AddPhoto(url, h.now())
	})
}

func (h *AdminHandler) RecalculateRating(ctx context.Context, cmd RecalculateRatingCommand) (*dto.RoomRating, error) {
	if h.Ratings == nil {
		return nil, errors.New("rooms: rating recalculator unavailable")
	}
	summary, err := h.Ratings.Recalculate(ctx, domainrooms.RoomID(cmd.RoomID))
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, "room rating recalculated", "room_id", cmd.RoomID, "rating", summary.Rating, "reviews_count", summary.Count)
	}
	out := dto.MapRoomRating(domainrooms.RoomID(cmd.RoomID), summary)
	return &out, nil
}

func (h *AdminHandler) mutate(ctx context.Context, id, msg string, apply func(*domainrooms.Room) error) (*dto.Room, error) {
	unit, err := support.BeginWriteUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	defer unit.Close()
	room, err := unit.Rooms().ByID(unit.Ctx, domainrooms.RoomID(id))
	if err != nil {
		return nil, err
	}
	if err := apply(room); err != nil {
		return nil, err
	}
	return h.save(ctx, unit, room, msg)
}

func (h *AdminHandler) save(ctx context.Context, unit *support.WriteUnit, room *domainrooms.Room, msg string) (*dto.Room, error) {
	if err := unit.Rooms().Save(unit.Ctx, room); err != nil {
		return nil, err
	}
	if err := unit.Commit(); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.InfoContext(ctx, msg, "room_id", room.ID)
	}
	out := dto.MapRoom(room)
	return &out, nil
}

func (h *AdminHandler) currency() string {
	if h.DefaultCurrency != "" {
		return h.DefaultCurrency
	}
	return defaultRoomCurrency
}

func (h *AdminHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Register binds every admin room command on bus.
func (h *AdminHandler) Register(bus *commands.InMemoryBus) {
	commands.Register[CreateRoomCommand, *dto.Room](bus, commands.HandlerFunc[CreateRoomCommand, *dto.Room](h.CreateRoom))
	commands.Register[UpdateRoomCommand, *dto.Room](bus, commands.HandlerFunc[UpdateRoomCommand, *dto.Room](h.UpdateRoom))
	commands.Register[SetAvailabilityCommand, *dto.Room](bus, commands.HandlerFunc[SetAvailabilityCommand, *dto.Room](h.SetAvailability))
	commands.Register[AttachPhotoCommand, *dto.Room](bus, commands.HandlerFunc[AttachPhotoCommand, *dto.Room](h.AttachPhoto))
	commands.Register[RecalculateRatingCommand, *dto.RoomRating](bus, commands.HandlerFunc[RecalculateRatingCommand, *dto.RoomRating](h.RecalculateRating))
}
