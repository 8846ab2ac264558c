// Package router wires handlers, authentication and the Redis-backed
// middleware into the Echo route tree.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/mfadillah/kostly/internal/config"
	"github.com/mfadillah/kostly/internal/handler"
	"github.com/mfadillah/kostly/internal/middleware"
	"github.com/mfadillah/kostly/internal/model"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg      config.Config
	Redis    *redis.Client
	Auth     *handler.AuthHandler
	Rooms    *handler.RoomHandler
	Bookings *handler.BookingHandler
	Payments *handler.PaymentHandler
}

// Register mounts all routes on the provided Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Public surface: auth, the cached room listing and the gateway
	// webhook.  The webhook cannot carry a JWT; the gateway signs in
	// through its own payload.
	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
	e.GET("/v1/rooms", d.Rooms.ListAvailable, cache)

	e.POST("/v1/payments/notification", d.Payments.Notification)

	// Everything below requires a valid access token.
	v1 := e.Group("/v1", middleware.JWTAuth(d.Cfg.JWTSecret))
	v1.GET("/me", d.Auth.Me)

	v1.POST("/bookings", d.Bookings.Create)
	v1.POST("/rentals/:id/extend", d.Bookings.Extend)
	v1.GET("/rentals/:id/transfer/preview", d.Bookings.TransferPreview)

	// Payment endpoints sit behind the token bucket; gateway calls
	// are the expensive part of the request.
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	pay := v1.Group("/payments", limit)
	pay.POST("", d.Payments.Create)
	pay.POST("/:orderRef/sync", d.Payments.Sync)
	pay.POST("/:id/cancel", d.Payments.Cancel)
	pay.GET("/summary", d.Payments.Summary)
	pay.GET("", d.Payments.List)
	pay.GET("/:id", d.Payments.Get)

	// Owner-only operations.
	owner := v1.Group("", middleware.RequireRole(model.RolePemilik))
	owner.POST("/bookings/:id/confirm", d.Bookings.Confirm)
	owner.POST("/rentals/:id/transfer", d.Bookings.Transfer)
	owner.POST("/payments/:id/verify", d.Payments.Verify)
}
