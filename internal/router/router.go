// Package router registers the HTTP routes of the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-booking/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication:
// liveness and readiness probes.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers sign-up, sign-in and sign-out.  Sign-in issues the
// bearer token the protected groups require; sign-out needs one.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	e.POST("/users", a.SignUp)
	e.POST("/auth/sign-in", a.SignIn)
	e.POST("/auth/sign-out", a.SignOut, auth)
}

// RegisterBooking registers the booking endpoints.  auth must run first so
// the rate limiter can key on the user.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, auth, limit echo.MiddlewareFunc) {
	g := e.Group("/booking", auth, limit)
	g.POST("", h.Create)
	g.GET("", h.Get)
	g.PUT("/:bookingId", h.Update)
}

// RegisterHotels registers the hotel catalog.  Responses are cached per
// user since eligibility depends on the caller's ticket.
func RegisterHotels(e *echo.Echo, h *handler.HotelHandler, auth, cache echo.MiddlewareFunc) {
	g := e.Group("/hotels", auth, cache)
	g.GET("", h.List)
	g.GET("/:hotelId", h.Get)
}
