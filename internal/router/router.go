// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"io/fs"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ai-health-analyze/internal/handler"
	"github.com/iliyamo/ai-health-analyze/internal/middleware"
)

// RegisterRoutes registers the health check, the pages and the static
// assets. The page renderer is installed on e.
func RegisterRoutes(e *echo.Echo, r *handler.Renderer, static fs.FS, lang string) {
	e.GET("/healthz", handler.Health)

	e.Renderer = r
	for _, p := range handler.Pages {
		e.GET(p.Path, handler.PageHandler(p, lang))
	}
	e.StaticFS("/static", static)
}

// RegisterAPI registers the completion endpoints. They never require a
// session; a valid bearer token only attaches the user to stored analyses.
// limiter may be nil.
func RegisterAPI(e *echo.Echo, a *handler.AssistantHandler, limiter echo.MiddlewareFunc, jwtSecret string) {
	g := e.Group("/api")
	if limiter != nil {
		g.Use(limiter)
	}
	g.Use(middleware.OptionalIdentity(jwtSecret))
	g.POST("/chat", a.Chat)
	g.POST("/health/analyze", a.Analyze)
}

// RegisterAuth registers the account API. Unauthenticated operations live
// under /v1/auth, protected ones under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, h *handler.HistoryHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout works with either a refresh token or a bearer token
	g.POST("/logout", a.Logout, middleware.OptionalIdentity(jwtSecret))

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.GET("/me/analyses", h.List)
}
