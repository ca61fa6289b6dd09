package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	bookingapp "staybook/internal/app/handlers/booking"
	roomsapp "staybook/internal/app/handlers/rooms"
	usersapp "staybook/internal/app/handlers/users"
	"staybook/internal/app/queries"
)

const maxPhotoSize = 10 << 20

type AdminHTTP interface {
	CreateRoom(c *gin.Context)
	UpdateRoom(c *gin.Context)
	SetAvailability(c *gin.Context)
	UploadPhoto(c *gin.Context)
	RecalculateRating(c *gin.Context)
	ListBookings(c *gin.Context)
	ListUsers(c *gin.Context)
}

// AdminHandler checks the admin role up front; the bus authorizer checks it again per message.
type AdminHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type roomRequest struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity"`
	Amenities   []string `json:"amenities"`
	NightlyRate struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	} `json:"nightly_rate"`
	Available *bool `json:"available"`
}

func (r roomRequest) details() roomsapp.RoomDetails {
	return roomsapp.RoomDetails{
		Name:        r.Name,
		Type:        r.Type,
		Description: r.Description,
		Capacity:    r.Capacity,
		Amenities:   r.Amenities,
		RateAmount:  r.NightlyRate.Amount,
		Currency:    r.NightlyRate.Currency,
	}
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

func (h AdminHandler) CreateRoom(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cmd := roomsapp.CreateRoomCommand{
		AdminScope: adminScope(c),
		RoomID:     req.ID,
		Details:    req.details(),
		Available:  req.Available == nil || *req.Available,
	}
	room, err := commands.Dispatch[roomsapp.CreateRoomCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "create room failed", err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h AdminHandler) UpdateRoom(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cmd := roomsapp.UpdateRoomCommand{AdminScope: adminScope(c), RoomID: c.Param("id"), Details: req.details()}
	room, err := commands.Dispatch[roomsapp.UpdateRoomCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "update room failed", err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h AdminHandler) SetAvailability(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		badRequest(c, "available is required")
		return
	}
	cmd := roomsapp.SetAvailabilityCommand{AdminScope: adminScope(c), RoomID: c.Param("id"), Available: *req.Available}
	room, err := commands.Dispatch[roomsapp.SetAvailabilityCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "set availability failed", err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h AdminHandler) UploadPhoto(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoSize)
	header, err := c.FormFile("photo")
	if err != nil {
		badRequest(c, "photo file is required")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		badRequest(c, "photo must be an image")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "cannot read photo")
		return
	}
	defer file.Close()

	cmd := roomsapp.AttachPhotoCommand{
		AdminScope:  adminScope(c),
		RoomID:      c.Param("id"),
		FileName:    header.Filename,
		ContentType: contentType,
		Reader:      file,
	}
	room, err := commands.Dispatch[roomsapp.AttachPhotoCommand, *dto.Room](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "upload photo failed", err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

// RecalculateRating is the manual repair path for a stale room rating.
func (h AdminHandler) RecalculateRating(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	cmd := roomsapp.RecalculateRatingCommand{AdminScope: adminScope(c), RoomID: c.Param("id")}
	rating, err := commands.Dispatch[roomsapp.RecalculateRatingCommand, *dto.RoomRating](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "rating recalculation failed", err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

func (h AdminHandler) ListBookings(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	q := bookingapp.ListBookingsQuery{
		Status:     c.Query("status"),
		RoomID:     c.Query("room_id"),
		UserID:     c.Query("user_id"),
		ActorAdmin: currentActor(c).Admin,
	}
	result, err := queries.Ask[bookingapp.ListBookingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, "list bookings failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AdminHandler) ListUsers(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	q := usersapp.ListUsersQuery{
		Query:      c.Query("query"),
		Limit:      parseIntWithDefault(c.Query("limit"), 50),
		Offset:     parseIntWithDefault(c.Query("offset"), 0),
		ActorAdmin: currentActor(c).Admin,
	}
	result, err := queries.Ask[usersapp.ListUsersQuery, *dto.UserCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, "list users failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func adminScope(c *gin.Context) roomsapp.AdminScope {
	return roomsapp.AdminScope{ActorAdmin: currentActor(c).Admin}
}

var _ AdminHTTP = (*AdminHandler)(nil)
