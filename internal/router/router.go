package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ecocoleta/ecocoleta-backend/internal/config"
	"github.com/ecocoleta/ecocoleta-backend/internal/handler"
	"github.com/ecocoleta/ecocoleta-backend/internal/middleware"
	"github.com/ecocoleta/ecocoleta-backend/internal/model"
	"github.com/ecocoleta/ecocoleta-backend/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check used by load balancers and
// monitoring systems.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations (signup, login, refresh) live under /v1/auth; logout and
// me require a valid access token and an active user, which is what
// the JWTAuth middleware enforces.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, users *repository.UserRepo) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret, users))
	auth.POST("/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterAPI registers the address, material and pickup endpoints.
// Every route requires an authenticated, active user; role gates are
// applied per route: material registration is admin-only, pickup
// creation and listing belong to producers.  The material catalog
// listing sits behind the Redis response cache.
func RegisterAPI(e *echo.Echo, addr *handler.AddressHandler, mat *handler.MaterialHandler, pk *handler.PickupHandler,
	jwtSecret string, users *repository.UserRepo, cacheCfg config.CacheConfig, rdb *redis.Client) {

	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret, users))

	g.POST("/addresses", addr.Register)
	g.GET("/addresses", addr.List)

	g.POST("/materials", mat.Register, middleware.RequireRole(model.RoleAdmin))
	g.GET("/materials", mat.List, middleware.RedisCache(cacheCfg, rdb))

	g.POST("/pickups", pk.Create, middleware.RequireRole(model.RoleProducer))
	g.GET("/pickups", pk.ListMine, middleware.RequireRole(model.RoleProducer))
	g.POST("/pickups/:id/status", pk.UpdateStatus)
}
