package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/whistle-service/internal/api/http/handlers"
	"github.com/spec-kit/whistle-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health            *handlers.HealthHandler
	Auth              *handlers.AuthHandler
	Reports           *handlers.ReportsHandler
	Review            *handlers.ReviewHandler
	Attachments       *handlers.AttachmentsHandler
	SessionMiddleware *auth.SessionMiddleware
}

// RegisterRoutes wires HTTP routes. Everything beyond login and health sits
// behind the allow-list session; review routes additionally require the
// step-up verified reviewer role.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	session := app.Group("", cfg.SessionMiddleware.Handle)
	session.Post("/auth/pin", cfg.Auth.VerifyPIN)
	session.Post("/auth/logout", cfg.Auth.Logout)

	session.Post("/reports", cfg.Reports.Submit)
	session.Get("/reports/:protocol", cfg.Reports.Track)
	session.Post("/reports/:protocol/messages", cfg.Reports.AddMessage)
	session.Post("/reports/:protocol/audio", cfg.Reports.AddAudioMessage)
	session.Get("/attachments/:handle", cfg.Attachments.Retrieve)

	review := session.Group("/review", auth.RequireReviewer())
	review.Get("/reports", cfg.Review.Dashboard)
	review.Get("/reports/:protocol", cfg.Review.OpenThread)
	review.Post("/reports/:protocol/messages", cfg.Review.AddMessage)
	review.Put("/reports/:protocol/status", cfg.Review.UpdateStatus)
	review.Put("/reports/:protocol/note", cfg.Review.UpdateNote)
}
