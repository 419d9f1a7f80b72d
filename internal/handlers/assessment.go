package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/agrocredito/agrocredito-backend/internal/services"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

// AssessmentHandler exposes scoring and projection over HTTP
type AssessmentHandler struct {
	store    storage.Store
	assessor *services.Assessor
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(store storage.Store, assessor *services.Assessor) *AssessmentHandler {
	return &AssessmentHandler{
		store:    store,
		assessor: assessor,
	}
}

// Create scores and projects a project described in free text
func (h *AssessmentHandler) Create(c *fiber.Ctx) error {
	var req services.AssessmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	inputs, result, err := h.assessor.AssessRequest(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err, "Failed to assess project")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":       true,
		"assessment_id": result.AssessmentID,
		"inputs":        inputs,
		"score":         result.Score,
		"projection":    result.Projection,
	})
}

// Get returns a recorded assessment
func (h *AssessmentHandler) Get(c *fiber.Ctx) error {
	assessment, err := h.store.GetAssessment(c.UserContext(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err, "Failed to fetch assessment")
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"assessment": assessment,
	})
}
