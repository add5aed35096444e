package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/casavia/brokerage-api/internal/handler"
	"github.com/casavia/brokerage-api/internal/middleware"
	"github.com/casavia/brokerage-api/internal/model"
)

// RegisterAdmin registers the back-office endpoints under /v1/admin. Every
// route requires an admin or superadmin token.
func RegisterAdmin(e *echo.Echo, ad *handler.AdminHandler, p *handler.PropertyHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleSuperAdmin),
	)

	// ---- Staff accounts ----
	g.POST("/users", ad.CreateUser)
	g.GET("/users", ad.ListUsers)
	g.DELETE("/users/:id", ad.DeleteUser)

	// ---- Inquiries ----
	g.GET("/inquiries", ad.ListAllInquiries)
	g.POST("/inquiries/:id/assign", ad.AssignInquiry)
	g.DELETE("/inquiries/:id", ad.DeleteInquiry)

	// ---- Listings ----
	g.POST("/properties", p.CreatePublishedProperty)
	g.PUT("/properties/:id/status", ad.UpdatePropertyStatus)
	g.PATCH("/properties/:id/status", ad.UpdatePropertyStatus)
	g.POST("/properties/:id/commission/pay", ad.PayCommission)
	g.DELETE("/properties/:id", ad.DeleteProperty)

	// ---- Audit trail ----
	g.GET("/activity", ad.ListActivity)
}
