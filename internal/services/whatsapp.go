package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
	"github.com/agrocredito/agrocredito-backend/internal/logger"
	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

// WhatsAppService handles WhatsApp message processing. It is the turn
// boundary: every error is logged here and turned into a reply.
type WhatsAppService struct {
	store    storage.Store
	flow     *IntakeFlow
	assessor *Assessor
}

// NewWhatsAppService creates a new WhatsApp service
func NewWhatsAppService(store storage.Store, flow *IntakeFlow, assessor *Assessor) *WhatsAppService {
	return &WhatsAppService{
		store:    store,
		flow:     flow,
		assessor: assessor,
	}
}

// ProcessInbound runs a webhook delivery through the intake once. A
// redelivered MessageSid is skipped: duplicate is true and there is nothing
// to send.
func (w *WhatsAppService) ProcessInbound(ctx context.Context, messageSID, from, message string) (reply string, duplicate bool, err error) {
	if messageSID != "" {
		phone := strings.TrimPrefix(strings.TrimSpace(from), "whatsapp:")
		claimErr := w.store.RecordInboundMessage(ctx, &models.InboundMessage{MessageSID: messageSID, Phone: phone})
		if apperr.Is(claimErr, apperr.KindConflict) {
			log.Info().
				Str("phone", logger.MaskPhone(phone)).
				Str("message_sid", messageSID).
				Msg("Skipping redelivered message")
			return "", true, nil
		}
		if claimErr != nil {
			reply, err = w.fail(phone, "record inbound message", claimErr)
			return reply, false, err
		}
	}

	reply, err = w.ProcessMessage(ctx, from, message)
	return reply, false, err
}

// ProcessMessage runs one inbound message through the intake. The returned
// reply is always safe to send, on error it is the generic retry prompt.
func (w *WhatsAppService) ProcessMessage(ctx context.Context, from, message string) (string, error) {
	phone := strings.TrimPrefix(strings.TrimSpace(from), "whatsapp:")
	if phone == "" {
		return msgGenericRetry, apperr.Validation("sender is required")
	}

	session, err := w.store.GetSession(ctx, phone)
	if apperr.Is(err, apperr.KindNotFound) {
		return w.startSession(ctx, phone)
	}
	if err != nil {
		return w.fail(phone, "load session", err)
	}

	turn := w.flow.Handle(session.State, session.Data.Data(), message)

	log.Debug().
		Str("phone", logger.MaskPhone(phone)).
		Str("state", string(session.State)).
		Str("next_state", string(turn.State)).
		Bool("changed", turn.Changed).
		Msg("Processing message")

	if turn.Changed {
		if err := w.save(ctx, session, turn); err != nil {
			return w.fail(phone, "save session", err)
		}
	}

	switch turn.Action {
	case ActionAssess:
		return w.assess(ctx, session)
	case ActionApplyLoan:
		return w.applyLoan(ctx, session)
	}
	return turn.Reply, nil
}

func (w *WhatsAppService) startSession(ctx context.Context, phone string) (string, error) {
	if _, err := w.store.CreateSession(ctx, phone); err != nil {
		// a duplicate first message loses the race and is asked to retry
		return w.fail(phone, "create session", err)
	}
	log.Info().Str("phone", logger.MaskPhone(phone)).Msg("New intake session")
	return Welcome(), nil
}

// assess scores and projects a session at UBICACION. On failure the session
// is left there so the next message retries.
func (w *WhatsAppService) assess(ctx context.Context, session *models.IntakeSession) (string, error) {
	data := session.Data.Data()

	in, err := data.Inputs()
	if err != nil {
		return w.fail(session.Phone, "build inputs", err)
	}

	result, err := w.assessor.Assess(ctx, session.Phone, models.SourceWhatsApp, in)
	if err != nil {
		return w.fail(session.Phone, "assess project", err)
	}

	turn := w.flow.Complete(data, result)
	if err := w.save(ctx, session, turn); err != nil {
		return w.fail(session.Phone, "finish session", err)
	}

	log.Info().
		Str("phone", logger.MaskPhone(session.Phone)).
		Str("crop", in.Crop).
		Int("total", result.Score.Total).
		Str("tier", string(result.Score.Tier)).
		Msg("Intake completed")
	return turn.Reply, nil
}

func (w *WhatsAppService) applyLoan(ctx context.Context, session *models.IntakeSession) (string, error) {
	data := session.Data.Data()

	app := models.NewLoanApplication(session.Phone, data)
	if err := w.store.CreateLoanApplication(ctx, app); err != nil {
		return w.fail(session.Phone, "create loan application", err)
	}

	turn := w.flow.Applied(data, app)
	if err := w.save(ctx, session, turn); err != nil {
		return w.fail(session.Phone, "link loan application", err)
	}

	log.Info().
		Str("phone", logger.MaskPhone(session.Phone)).
		Str("loan_application_id", app.ID).
		Float64("requested_amount", app.RequestedAmount).
		Msg("Loan application recorded")
	return turn.Reply, nil
}

// save writes the turn only if nobody else wrote the session since it was read
func (w *WhatsAppService) save(ctx context.Context, session *models.IntakeSession, turn Turn) error {
	expected := session.Version
	session.State = turn.State
	session.Data = datatypes.NewJSONType(turn.Data)
	return w.store.SaveSession(ctx, session, expected)
}

func (w *WhatsAppService) fail(phone, op string, err error) (string, error) {
	event := log.Error()
	if apperr.Is(err, apperr.KindConflict) {
		event = log.Warn()
	}
	event.Err(err).
		Str("phone", logger.MaskPhone(phone)).
		Str("op", op).
		Str("kind", string(apperr.KindOf(err))).
		Msg("Failed to process message")
	return msgGenericRetry, err
}

// GetSession returns the stored intake of phone
func (w *WhatsAppService) GetSession(ctx context.Context, phone string) (*models.IntakeSession, error) {
	return w.store.GetSession(ctx, phone)
}

// ResetSession clears the intake of phone back to INICIO
func (w *WhatsAppService) ResetSession(ctx context.Context, phone string) (*models.IntakeSession, error) {
	session, err := w.store.GetSession(ctx, phone)
	if err != nil {
		return nil, err
	}
	turn := w.flow.Handle(session.State, session.Data.Data(), "reiniciar")
	if err := w.save(ctx, session, turn); err != nil {
		return nil, err
	}
	log.Info().Str("phone", logger.MaskPhone(phone)).Msg("Intake session reset")
	return session, nil
}
