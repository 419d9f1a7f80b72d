package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/agrocredito/agrocredito-backend/internal/logger"
	"github.com/agrocredito/agrocredito-backend/internal/services"
)

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	whatsappService *services.WhatsAppService
	messenger       services.Messenger
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(whatsappService *services.WhatsAppService, messenger services.Messenger) *WhatsAppHandler {
	return &WhatsAppHandler{
		whatsappService: whatsappService,
		messenger:       messenger,
	}
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid  string `form:"MessageSid"`
	AccountSid  string `form:"AccountSid"`
	From        string `form:"From"` // WhatsApp number (whatsapp:+50255551234)
	To          string `form:"To"`   // Your Twilio number
	Body        string `form:"Body"` // Message text
	NumMedia    string `form:"NumMedia"`
	ProfileName string `form:"ProfileName"`
}

// HandleWebhook processes incoming WhatsApp messages
func (h *WhatsAppHandler) HandleWebhook(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		log.Warn().Err(err).Msg("Invalid webhook payload")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}

	// Status callbacks carry no body
	if payload.From == "" || strings.TrimSpace(payload.Body) == "" {
		return c.SendStatus(fiber.StatusOK)
	}

	from := strings.TrimPrefix(payload.From, "whatsapp:")
	log.Info().
		Str("phone", logger.MaskPhone(from)).
		Str("message_sid", payload.MessageSid).
		Msg("WhatsApp message received")

	// the reply is the retry prompt on error, so it is sent either way
	response, duplicate, _ := h.whatsappService.ProcessInbound(c.UserContext(), payload.MessageSid, from, payload.Body)
	if duplicate {
		return c.SendStatus(fiber.StatusOK)
	}

	if err := h.messenger.SendWhatsAppMessage(from, response); err != nil {
		log.Error().Err(err).Str("phone", logger.MaskPhone(from)).Msg("Failed to send WhatsApp response")
	}

	// Acknowledge webhook receipt
	return c.SendStatus(fiber.StatusOK)
}

// TestWebhookPayload drives the intake without Twilio
type TestWebhookPayload struct {
	From    string `json:"from"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test WhatsApp messages and returns the reply
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.From == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}

	response, err := h.whatsappService.ProcessMessage(c.UserContext(), payload.From, payload.Message)

	return c.JSON(fiber.Map{
		"success":  err == nil,
		"response": response,
	})
}
