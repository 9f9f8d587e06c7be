package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework used for routing

	"github.com/iliyamo/room-reservation/internal/handler"    // handlers implementing the endpoints
	"github.com/iliyamo/room-reservation/internal/middleware" // JWT authentication middleware
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems probe this endpoint to verify
	// that the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected account endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session: register, login,
	// refresh and logout all work with credentials or a refresh token
	// carried in the body.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	// Account endpoints require a valid access token.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PATCH("/profile", a.UpdateProfile)
}

// RegisterRooms registers the public room catalog.  The optional cache
// middleware (nil-safe) fronts the listing since the catalog only
// changes when the seed process runs.
func RegisterRooms(e *echo.Echo, r *handler.RoomHandler, cache echo.MiddlewareFunc) {
	if cache != nil {
		e.GET("/v1/rooms", r.ListRooms, cache)
		return
	}
	e.GET("/v1/rooms", r.ListRooms)
}

// RegisterReservations registers the reservation CRUD endpoints.  Every
// route requires a valid access token; the handler then enforces
// ownership on mutations.
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.GET("", h.ListReservations)
	g.POST("", h.CreateReservation)
	g.PUT("/:id", h.UpdateReservation)
	g.DELETE("/:id", h.DeleteReservation)
}
