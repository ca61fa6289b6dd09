package ginserver

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	reviewsapp "staybook/internal/app/handlers/reviews"
	roomsapp "staybook/internal/app/handlers/rooms"
	"staybook/internal/app/queries"
)

type RoomHTTP interface {
	Search(c *gin.Context)
	Get(c *gin.Context)
	Reviews(c *gin.Context)
}

type RoomHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h RoomHandler) Search(c *gin.Context) {
	q := roomsapp.SearchRoomsQuery{
		Type:   strings.TrimSpace(c.Query("type")),
		Sort:   strings.TrimSpace(c.Query("sort")),
		Limit:  parseIntWithDefault(c.Query("limit"), 20),
		Offset: parseIntWithDefault(c.Query("offset"), 0),
	}
	var err error
	if q.OnlyAvailable, err = parseBoolQuery(c.Query("available")); err != nil {
		badRequest(c, "available: "+err.Error())
		return
	}
	if q.MinCapacity, err = parseIntQuery(c.Query("capacity")); err != nil {
		badRequest(c, "capacity: "+err.Error())
		return
	}
	if q.MinRating, err = parseFloatQuery(c.Query("min_rating")); err != nil {
		badRequest(c, "min_rating: "+err.Error())
		return
	}
	maxPrice, err := parseIntQuery(c.Query("max_price"))
	if err != nil {
		badRequest(c, "max_price: "+err.Error())
		return
	}
	q.MaxRate = int64(maxPrice)

	result, err := queries.Ask[roomsapp.SearchRoomsQuery, *dto.RoomCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, "room search failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) Get(c *gin.Context) {
	result, err := queries.Ask[roomsapp.GetRoomQuery, *dto.Room](c.Request.Context(), h.Queries, roomsapp.GetRoomQuery{RoomID: c.Param("id")})
	if err != nil {
		respondError(c, h.Logger, "get room failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h RoomHandler) Reviews(c *gin.Context) {
	q := reviewsapp.ListRoomReviewsQuery{
		RoomID: c.Param("id"),
		Limit:  parseIntWithDefault(c.Query("limit"), 20),
		Offset: parseIntWithDefault(c.Query("offset"), 0),
	}
	result, err := queries.Ask[reviewsapp.ListRoomReviewsQuery, *dto.ReviewCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, "list room reviews failed", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func parseIntWithDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func parseIntQuery(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func parseFloatQuery(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func parseBoolQuery(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	return strconv.ParseBool(raw)
}

var _ RoomHTTP = RoomHandler{}
