package router

import (
	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/handler"
	"github.com/pawssion/shelter-adoption/internal/middleware"
	"github.com/pawssion/shelter-adoption/internal/model"
)

// RegisterUser registers user-scoped endpoints under /v1. All routes
// require a valid JWT and the USER role. Users manage their profile,
// submit and withdraw adoption requests and read their own feed.
func RegisterUser(e *echo.Echo, p *handler.ProfileHandler, a *handler.UserAdoptionHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser),
		limit,
	)
	g.GET("/profile", p.Get)
	g.PUT("/profile", p.Update)

	g.POST("/animals/:id/adopt", a.Adopt)
	g.GET("/my-requests", a.MyRequests)
	g.GET("/requests/:id", a.Get)
	g.DELETE("/requests/:id", a.Cancel)
}
