package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation/internal/handler"
	"github.com/iliyamo/event-reservation/internal/middleware"
	"github.com/iliyamo/event-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers and monitoring to verify the service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Session-less operations: register, login and the two refresh
	// variants.  Each handler generates or exchanges tokens itself.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication: a valid refresh_token
	// in the body is enough to terminate that session.
	g.POST("/logout", a.Logout)

	// Protected endpoints accept both roles; RequireRole rejects missing
	// or unknown roles.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleOrganizer, model.RoleCustomer))
	auth.GET("/me", a.Me)

	// Top-level alias so clients can call either /v1/auth/logout or
	// /v1/logout with a refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints.  The
// PublicHandler returns sanitized event data; no JWT or role middleware
// applies here.  The response cache attaches only to this group: every
// response here is identical for every caller, which is not true of the
// authenticated routes.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/events", cache)
	// List and search published events (city, category, time range, text).
	g.GET("", p.ListEvents)
	// Event detail with a live availability snapshot.
	g.GET("/:id", p.GetEvent)
	// Reviews left for a completed event.
	g.GET("/:id/reviews", p.ListEventReviews)
}
