package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation/internal/handler"
	"github.com/iliyamo/event-reservation/internal/middleware"
	"github.com/iliyamo/event-reservation/internal/model"
)

// RegisterReservations registers the reservation and review endpoints
// under /v1.  Creating a reservation and listing one's own reservations
// are customer operations; viewing, confirming and cancelling a single
// reservation are shared with organizers, who may act on reservations
// against their own events (the service layer authorizes per call).
func RegisterReservations(e *echo.Echo, h *handler.ReservationHandler, rv *handler.ReviewHandler, jwtSecret string) {
	customers := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer),
	)
	customers.POST("/reservations", h.Create)
	customers.GET("/reservations", h.ListMine)

	// Reviews hang off the holder's reservation.
	customers.PUT("/reservations/:id/review", rv.Submit)
	customers.GET("/reservations/:id/review", rv.Get)
	customers.GET("/reservations/:id/review/eligibility", rv.Eligibility)

	shared := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleOrganizer),
	)
	shared.GET("/reservations/:id", h.Get)
	shared.POST("/reservations/:id/confirm", h.Confirm)
	shared.POST("/reservations/:id/cancel", h.Cancel)
}
