package router

import (
	"github.com/labstack/echo/v4"

	"github.com/pawssion/shelter-adoption/internal/handler"
	"github.com/pawssion/shelter-adoption/internal/middleware"
	"github.com/pawssion/shelter-adoption/internal/model"
)

// RegisterShelter registers shelter-scoped endpoints under /v1. All
// routes require a valid JWT and the SHELTER role; only approved
// shelters ever hold such a token, since login refuses the other
// states.
func RegisterShelter(e *echo.Echo, an *handler.AnimalHandler, ad *handler.ShelterAdoptionHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleShelter),
		limit,
	)
	g.POST("/animals", an.Create)
	g.PUT("/animals/:id", an.Update)
	g.DELETE("/animals/:id", an.Delete)
	g.GET("/my-animals", an.ListMine)

	g.GET("/adoption-requests", ad.List)
	g.GET("/adoption-requests/:id", ad.Get)
	g.POST("/adoption-requests/:id/approve", ad.Approve)
	g.POST("/adoption-requests/:id/reject", ad.Reject)
	g.GET("/approved-adoptions", ad.Approved)
}
