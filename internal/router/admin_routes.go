package router

import (
	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/handler"
	"github.com/pawssion/shelter-adoption/internal/middleware"
	"github.com/pawssion/shelter-adoption/internal/model"
)

// RegisterAdmin registers the shelter review endpoints under
// /v1/admin. All routes require a valid JWT and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		limit,
	)
	g.GET("/shelters", h.List)
	g.GET("/shelters/:id", h.Get)
	g.POST("/shelters/:id/approve", h.Approve)
	g.POST("/shelters/:id/reject", h.Reject)
	g.DELETE("/shelters/:id", h.Delete)
}
