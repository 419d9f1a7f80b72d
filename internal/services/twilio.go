package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/agrocredito/agrocredito-backend/internal/config"
	"github.com/agrocredito/agrocredito-backend/internal/logger"
)

// Messenger delivers outbound WhatsApp text
type Messenger interface {
	SendWhatsAppMessage(to string, message string) error
}

type TwilioService struct {
	client *twilio.RestClient
	from   string // Format: "whatsapp:+14155238886"
}

// NewTwilioService creates a new Twilio service instance
func NewTwilioService(cfg config.TwilioConfig) (*TwilioService, error) {
	if !cfg.TwilioConfigured() {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	from := cfg.WhatsAppFrom
	if !strings.HasPrefix(from, "whatsapp:") {
		from = "whatsapp:" + from
	}

	return &TwilioService{
		client: client,
		from:   from,
	}, nil
}

// SendWhatsAppMessage sends a WhatsApp message via Twilio
func (t *TwilioService) SendWhatsAppMessage(to string, message string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo("whatsapp:" + strings.TrimPrefix(to, "whatsapp:"))
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send WhatsApp message: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		msg := ""
		if resp.ErrorMessage != nil {
			msg = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, msg)
	}

	log.Info().Str("sid", sidOf(resp)).Str("to", logger.MaskPhone(to)).Msg("WhatsApp message sent")
	return nil
}

// SendWhatsAppTemplate sends an approved Content template. Templates are the
// only messages WhatsApp delivers outside the 24 hour customer service window.
func (t *TwilioService) SendWhatsAppTemplate(to string, contentSID string, contentVariables map[string]string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo("whatsapp:" + strings.TrimPrefix(to, "whatsapp:"))
	params.SetContentSid(contentSID)

	// SetContentVariables expects a JSON string
	if len(contentVariables) > 0 {
		variablesJSON, err := json.Marshal(contentVariables)
		if err != nil {
			return fmt.Errorf("failed to marshal content variables: %w", err)
		}
		params.SetContentVariables(string(variablesJSON))
	}

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send WhatsApp template: %w", err)
	}

	log.Info().
		Str("sid", sidOf(resp)).
		Str("template", contentSID).
		Str("to", logger.MaskPhone(to)).
		Msg("WhatsApp template sent")
	return nil
}

func sidOf(resp *twilioApi.ApiV2010Message) string {
	if resp == nil || resp.Sid == nil {
		return ""
	}
	return *resp.Sid
}

// LogMessenger stands in for Twilio when credentials are not configured
type LogMessenger struct{}

func (LogMessenger) SendWhatsAppMessage(to string, message string) error {
	log.Info().Str("to", logger.MaskPhone(to)).Str("body", message).Msg("Reply not sent, Twilio not configured")
	return nil
}

func (LogMessenger) SendWhatsAppTemplate(to string, contentSID string, contentVariables map[string]string) error {
	log.Info().
		Str("to", logger.MaskPhone(to)).
		Str("template", contentSID).
		Interface("variables", contentVariables).
		Msg("Template not sent, Twilio not configured")
	return nil
}
