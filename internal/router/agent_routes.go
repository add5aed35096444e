package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/handler"
	"github.com/casavia/brokerage-api/internal/middleware"
	"github.com/casavia/brokerage-api/internal/model"
)

// RegisterAgent registers the agent workspace under /v1/agent. Admins pass
// the role gate too so they can work an inquiry directly.
func RegisterAgent(e *echo.Echo, a *handler.AgentHandler, p *handler.PropertyHandler, cal *handler.CalendarHandler, jwtSecret string) {
	g := e.Group(
		"/v1/agent",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAgent, model.RoleAdmin, model.RoleSuperAdmin),
	)

	// ---- Inquiry pool ----
	g.GET("/inquiries", a.ListInquiries)
	g.GET("/inquiries/:id", a.GetInquiry)
	g.POST("/inquiries/:id/claim", a.ClaimInquiry)
	g.PUT("/inquiries/:id/status", a.UpdateInquiryStatus)
	g.PATCH("/inquiries/:id/status", a.UpdateInquiryStatus)
	g.POST("/inquiries/:id/notes", a.AddNote)

	// ---- Listings ----
	g.POST("/properties", p.CreateProperty)
	g.POST("/properties/:id/reserve", p.ReserveProperty)

	// ---- Calendar ----
	g.POST("/events", cal.CreateEvent)
	g.GET("/events", cal.ListEvents)
	g.GET("/events/:id", cal.GetEvent)
	g.PUT("/events/:id", cal.UpdateEvent)
	g.PATCH("/events/:id", cal.UpdateEvent)
	g.DELETE("/events/:id", cal.DeleteEvent)
}
