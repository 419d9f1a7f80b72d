package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/agrocredito/agrocredito-backend/internal/config"
	"github.com/agrocredito/agrocredito-backend/internal/handlers"
	"github.com/agrocredito/agrocredito-backend/internal/middleware"
	"github.com/agrocredito/agrocredito-backend/internal/services"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

// Version is reported by / and /health
const Version = "1.0.0"

// Dependencies are the services the routes are wired to
type Dependencies struct {
	Store     storage.Store
	WhatsApp  *services.WhatsAppService
	Assessor  *services.Assessor
	Messenger services.Messenger
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, deps Dependencies) {
	whatsappHandler := handlers.NewWhatsAppHandler(deps.WhatsApp, deps.Messenger)
	assessmentHandler := handlers.NewAssessmentHandler(deps.Store, deps.Assessor)
	adminHandler := handlers.NewAdminHandler(deps.Store, deps.WhatsApp)
	healthHandler := handlers.NewHealthHandler(Version, deps.Store)

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AgroCrédito Backend",
			"version": Version,
			"endpoints": fiber.Map{
				"health":      "/health",
				"assessments": "/api/assessments",
				"webhook":     "/webhook/whatsapp",
				"admin":       "/admin",
			},
		})
	})

	app.Get("/health", healthHandler.Check)

	// API routes
	api := app.Group("/api")
	api.Post("/assessments", assessmentHandler.Create)
	api.Get("/assessments/:id", assessmentHandler.Get)

	// ========== WEBHOOK ROUTES ==========
	webhooks := app.Group("/webhook")
	if cfg.Server.DisableWebhookValidation {
		log.Warn().Msg("WhatsApp webhook signature validation DISABLED")
		webhooks.Post("/whatsapp", whatsappHandler.HandleWebhook)
	} else {
		webhooks.Post("/whatsapp",
			middleware.ValidateTwilioSignature(cfg.Twilio.AuthToken, cfg.Server.PublicURL),
			whatsappHandler.HandleWebhook)
	}

	// ========== TEST ROUTES (Development Only) ==========
	if cfg.IsDevelopment() {
		app.Post("/test/whatsapp", whatsappHandler.HandleTestWebhook)
	}

	// ========== ADMIN ROUTES ==========
	if cfg.AdminAPIKey == "" && !cfg.IsDevelopment() {
		log.Warn().Msg("ADMIN_API_KEY not set, admin routes are disabled")
	}
	admin := app.Group("/admin", middleware.RequireAdminKey(cfg.AdminAPIKey, cfg.IsDevelopment()))
	admin.Get("/sessions/:phone", adminHandler.GetSession)
	admin.Post("/sessions/:phone/reset", adminHandler.ResetSession)
	admin.Get("/loan-applications", adminHandler.ListLoanApplications)
}
