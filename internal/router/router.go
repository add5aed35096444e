package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/handler"
	"github.com/casavia/brokerage-api/internal/middleware"
)

// RegisterRoutes registers routes that carry no authentication at all.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	e.GET("/healthz", h.Health)
}

// RegisterAuth registers the session endpoints. Login and refresh live
// under /v1/auth without middleware; logout and /v1/me require a valid
// access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the guest-facing portal: the catalogue and the
// inquiry form. The catalogue listing goes through the response cache and
// the inquiry form sits behind the rate limiter; either middleware may be
// nil when Redis is not configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cache, limiter echo.MiddlewareFunc) {
	listMW := []echo.MiddlewareFunc{}
	if cache != nil {
		listMW = append(listMW, cache)
	}
	e.GET("/v1/properties", p.ListProperties, listMW...)
	// The detail route stays uncached: every hit must record a view.
	e.GET("/v1/properties/:id", p.GetProperty)

	submitMW := []echo.MiddlewareFunc{}
	if limiter != nil {
		submitMW = append(submitMW, limiter)
	}
	e.POST("/v1/inquiries", p.SubmitInquiry, submitMW...)
}
