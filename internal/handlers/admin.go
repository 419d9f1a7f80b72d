package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/services"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

// AdminHandler handles admin operations
type AdminHandler struct {
	store           storage.Store
	whatsappService *services.WhatsAppService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store storage.Store, whatsappService *services.WhatsAppService) *AdminHandler {
	return &AdminHandler{
		store:           store,
		whatsappService: whatsappService,
	}
}

// GetSession returns the intake session of a phone
func (h *AdminHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.whatsappService.GetSession(c.UserContext(), c.Params("phone"))
	if err != nil {
		return errorResponse(c, err, "Failed to fetch session")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// ResetSession sends a session back to the first question
func (h *AdminHandler) ResetSession(c *fiber.Ctx) error {
	session, err := h.whatsappService.ResetSession(c.UserContext(), c.Params("phone"))
	if err != nil {
		return errorResponse(c, err, "Failed to reset session")
	}
	return c.JSON(fiber.Map{
		"success": true,
		"session": session,
	})
}

// ListLoanApplications lists loan applications, optionally filtered by ?status=
func (h *AdminHandler) ListLoanApplications(c *fiber.Ctx) error {
	status := c.Query("status")
	switch status {
	case "", models.LoanStatusPendingReview, models.LoanStatusApproved, models.LoanStatusDeclined:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Status must be 'pending_review', 'approved' or 'declined'",
		})
	}

	apps, err := h.store.ListLoanApplications(c.UserContext(), status)
	if err != nil {
		return errorResponse(c, err, "Failed to fetch loan applications")
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"loan_applications": apps,
		"count":             len(apps),
	})
}
