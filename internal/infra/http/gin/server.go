package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"staybook/internal/infra/config"
	"staybook/internal/infra/obs"
)

type Handlers struct {
	Rooms          RoomHTTP
	Booking        BookingHTTP
	Reviews        ReviewsHTTP
	Auth           AuthHTTP
	Me             MeHTTP
	Admin          AdminHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", idempotencyHeader},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			obs.RequestIDHeader,
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)
	registerSwaggerRoutes(router)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Rooms != nil {
		api.GET("/rooms", h.Rooms.Search)
		api.GET("/rooms/:id", h.Rooms.Get)
		api.GET("/rooms/:id/reviews", h.Rooms.Reviews)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings/:id", h.Booking.Get)
		api.PATCH("/bookings/:id/status", h.Booking.UpdateStatus)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.Reviews != nil {
		api.POST("/bookings/:id/review", h.Reviews.Submit)
		api.PUT("/reviews/:id", h.Reviews.Update)
		api.DELETE("/reviews/:id", h.Reviews.Delete)
		api.POST("/reviews/:id/helpful", h.Reviews.ToggleHelpful)
	}
	if h.Me != nil {
		meGroup := api.Group("/me")
		meGroup.GET("/bookings", h.Me.ListBookings)
		meGroup.GET("/reviews", h.Me.ListReviews)
	}
	if h.Admin != nil {
		adminGroup := api.Group("/admin")
		adminGroup.POST("/rooms", h.Admin.CreateRoom)
		adminGroup.PUT("/rooms/:id", h.Admin.UpdateRoom)
		adminGroup.PATCH("/rooms/:id/availability", h.Admin.SetAvailability)
		adminGroup.POST("/rooms/:id/photos", h.Admin.UploadPhoto)
		adminGroup.POST("/rooms/:id/recalculate-rating", h.Admin.RecalculateRating)
		adminGroup.GET("/bookings", h.Admin.ListBookings)
		adminGroup.GET("/users", h.Admin.ListUsers)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
