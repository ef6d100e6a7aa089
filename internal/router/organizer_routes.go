package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation/internal/handler"
	"github.com/iliyamo/event-reservation/internal/middleware"
	"github.com/iliyamo/event-reservation/internal/model"
)

// RegisterOrganizer registers organizer-scoped event management under
// /v1/organizer.  All routes require a valid JWT and the ORGANIZER role;
// ownership of the individual event is checked in the service layer.
func RegisterOrganizer(e *echo.Echo, h *handler.OrganizerEventHandler, jwtSecret string) {
	g := e.Group(
		"/v1/organizer",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOrganizer),
	)
	g.POST("/events", h.Create)
	g.GET("/events", h.List)
	g.GET("/events/:id", h.Get)
	g.PUT("/events/:id", h.Update)
	g.DELETE("/events/:id", h.Delete)

	// Lifecycle transitions.
	g.POST("/events/:id/publish", h.Publish)
	g.POST("/events/:id/cancel", h.Cancel)

	// Every reservation taken against one of the organizer's events.
	g.GET("/events/:id/reservations", h.Reservations)
}
