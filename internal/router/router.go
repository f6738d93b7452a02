// Package router wires middleware and routes onto an echo instance.
package router

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/vitrii/agenda/internal/handler"
	"github.com/vitrii/agenda/internal/middleware"
	"github.com/vitrii/agenda/internal/validation"
)

// Setup installs the validator and the global middleware chain: panic
// recovery, request ids, request logging and identity resolution.
func Setup(e *echo.Echo, log zerolog.Logger, jwtSecret string) {
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(middleware.Identity(jwtSecret))
}

// RegisterRoutes registers routes that do not touch the agenda.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterEvents registers /api/eventos-agenda.  The visible-events listing
// is served through the per-advertiser response cache.
func RegisterEvents(e *echo.Echo, h *handler.EventHandler, cache *middleware.ResponseCache) {
	g := e.Group("/api/eventos-agenda")
	g.POST("", h.Create, middleware.RequireViewer())
	g.GET("/visiveis/:anuncianteId", h.ListVisible, cache.Middleware())
	g.GET("/:id", h.Get)
	g.PATCH("/:id/status", h.UpdateStatus, middleware.RequireViewer())
}

// RegisterWaitlist registers /api/filas-espera.  Every route needs an
// identified viewer; submissions also pass through the rate limiter.
func RegisterWaitlist(e *echo.Echo, h *handler.WaitlistHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/filas-espera", middleware.RequireViewer())
	g.POST("", h.Submit, limiter)
	g.GET("/minhas", h.Mine)
	g.GET("/anunciante/:anuncianteId", h.Inbox)
	g.POST("/:id/aceitar", h.Accept)
	g.POST("/:id/rejeitar", h.Reject)
	g.POST("/:id/sugerir", h.Suggest)
}
