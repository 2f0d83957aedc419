// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/appsalon/booking-api/internal/config"
	"github.com/appsalon/booking-api/internal/handler"
	"github.com/appsalon/booking-api/internal/middleware"
	"github.com/appsalon/booking-api/internal/repository"
)

// Deps carries everything the routes need. The Redis client may be nil;
// rate limiting and response caching are then disabled.
type Deps struct {
	Cfg          config.Config
	Users        *repository.UserRepo
	Auth         *handler.AuthHandler
	Services     *handler.ServiceHandler
	Appointments *handler.AppointmentHandler
	Comments     *handler.CommentHandler
	Redis        *redis.Client
}

// Register sets up the full route table. Public catalog reads carry the
// response cache; everything carries the rate limiter; bearer routes run
// the Auth middleware and the admin catalog additionally RequireAdmin.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), d.Redis))

	bearer := middleware.Auth(d.Cfg.JWTSecret, d.Users)
	admin := middleware.RequireAdmin()
	cached := middleware.CacheResponse(config.LoadCacheConfig(), d.Redis)

	api := e.Group("/api")

	// Account endpoints; registration, verification, login and the
	// password-reset flow are reachable without a token.
	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.GET("/verify/:token", d.Auth.VerifyAccount)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/forgot-password", d.Auth.ForgotPassword)
	auth.GET("/forgot-password/:token", d.Auth.VerifyResetToken)
	auth.POST("/forgot-password/:token", d.Auth.UpdatePassword)
	auth.GET("/user", d.Auth.User, bearer)
	auth.GET("/admin", d.Auth.Admin, bearer)

	// Catalog: reads are public and cached, writes are admin-only.
	services := api.Group("/services")
	services.GET("", d.Services.List, cached)
	services.GET("/:id", d.Services.GetByID, cached)
	services.POST("", d.Services.Create, bearer, admin)
	services.PUT("/:id", d.Services.Update, bearer, admin)
	services.DELETE("/:id", d.Services.Delete, bearer, admin)
	services.POST("/:id/images", d.Services.UploadImage, bearer, admin)
	services.GET("/:id/images", d.Services.ListImages, bearer, admin)
	services.DELETE("/:id/images/:imageId", d.Services.DeleteImage, bearer, admin)

	// Booking endpoints all require a caller.
	appts := api.Group("/appointments", bearer)
	appts.POST("", d.Appointments.Create)
	appts.GET("", d.Appointments.BookedTimes)
	appts.GET("/:id", d.Appointments.GetByID)
	appts.PUT("/:id", d.Appointments.Update)
	appts.DELETE("/:id", d.Appointments.Cancel)

	api.GET("/users/:user/appointments", d.Appointments.ListForUser, bearer)

	// Comments: creation requires a caller, listings are public.
	comments := api.Group("/comments")
	comments.POST("", d.Comments.Create, bearer)
	comments.GET("", d.Comments.ListAll)
	comments.GET("/:id", d.Comments.ListForService)
}
