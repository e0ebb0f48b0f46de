// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/pawssion/shelter-adoption/internal/config"
	"github.com/pawssion/shelter-adoption/internal/handler"
	"github.com/pawssion/shelter-adoption/internal/middleware"
	"github.com/pawssion/shelter-adoption/internal/model"
)

// RegisterRoutes registers routes that never require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the /v1/auth endpoints plus /v1/me, which any
// authenticated role may call. The limiter runs after JWTAuth on the
// authenticated group so it keys per principal; on /v1/auth there is no
// principal yet and it keys per IP, which is what login throttling
// wants anyway.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limit)
	g.POST("/register", a.Register)
	g.POST("/register-shelter", a.RegisterShelter)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleShelter, model.RoleAdmin),
		limit,
	)
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse catalog. The
// Redis response cache sits in front of these read-heavy endpoints when
// a client is available.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)
	e.GET("/v1/shelters", p.ListShelters, cache)
	e.GET("/v1/shelters/:id", p.GetShelter, cache)
	e.GET("/v1/shelters/:id/animals", p.ShelterAnimals, cache)
	e.GET("/v1/animals/:id", p.GetAnimal, cache)
}

// RegisterNotifications registers the shared notification feed for all
// three roles.
func RegisterNotifications(e *echo.Echo, n *handler.NotificationHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleShelter, model.RoleAdmin),
		limit,
	)
	g.GET("/notifications", n.List)
}
