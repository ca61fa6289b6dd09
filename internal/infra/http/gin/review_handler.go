package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	reviewsapp "staybook/internal/app/handlers/reviews"
)

type ReviewsHTTP interface {
	Submit(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	ToggleHelpful(c *gin.Context)
}

type ReviewsHandler struct {
	Commands commands.Bus
	Logger   *slog.Logger
}

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

func (h ReviewsHandler) Submit(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cmd := reviewsapp.SubmitReviewCommand{
		BookingID: c.Param("id"),
		AuthorID:  user.ID(),
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
	}
	review, err := commands.Dispatch[reviewsapp.SubmitReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "review submit failed", err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h ReviewsHandler) Update(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	cmd := reviewsapp.UpdateReviewCommand{
		ReviewID: c.Param("id"),
		AuthorID: user.ID(),
		Rating:   req.Rating,
		Title:    req.Title,
		Comment:  req.Comment,
	}
	review, err := commands.Dispatch[reviewsapp.UpdateReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "review update failed", err)
		return
	}
	c.JSON(http.StatusOK, review)
}

func (h ReviewsHandler) Delete(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := reviewsapp.DeleteReviewCommand{ReviewID: c.Param("id"), Actor: user.Actor()}
	if _, err := commands.Dispatch[reviewsapp.DeleteReviewCommand, *dto.Review](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, "review delete failed", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h ReviewsHandler) ToggleHelpful(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	cmd := reviewsapp.ToggleHelpfulCommand{ReviewID: c.Param("id"), UserID: user.ID()}
	vote, err := commands.Dispatch[reviewsapp.ToggleHelpfulCommand, *dto.HelpfulVote](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, "helpful vote failed", err)
		return
	}
	c.JSON(http.StatusOK, vote)
}

var _ ReviewsHTTP = ReviewsHandler{}
