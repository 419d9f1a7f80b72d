package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agrocredito/agrocredito-backend/internal/logger"
	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/services"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

// ReminderJob nudges farmers who stopped answering half way through the intake
type ReminderJob struct {
	store     storage.Store
	messenger services.Messenger
	templates *services.TemplateService
	interval  time.Duration
	after     time.Duration
	now       func() time.Time
}

// NewReminderJob creates the job. templates may be nil, reminders then go out
// as plain text.
func NewReminderJob(store storage.Store, messenger services.Messenger, templates *services.TemplateService, interval, after time.Duration) *ReminderJob {
	return &ReminderJob{
		store:     store,
		messenger: messenger,
		templates: templates,
		interval:  interval,
		after:     after,
		now:       time.Now,
	}
}

// Start runs the job every interval until ctx is canceled
func (r *ReminderJob) Start(ctx context.Context) {
	log.Info().Dur("interval", r.interval).Dur("after", r.after).Msg("Starting reminder job")

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Reminder job stopped")
				return
			case <-ticker.C:
				if _, err := r.RunOnce(ctx); err != nil {
					log.Error().Err(err).Msg("Reminder run failed")
				}
			}
		}
	}()
}

// RunOnce reminds every stale session once and returns how many were sent
func (r *ReminderJob) RunOnce(ctx context.Context) (int, error) {
	now := r.now()
	sessions, err := r.store.ListStaleSessions(ctx, now.Add(-r.after))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, session := range sessions {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		if err := r.remind(session); err != nil {
			log.Error().Err(err).Str("phone", logger.MaskPhone(session.Phone)).Msg("Failed to send reminder")
			continue
		}
		if err := r.store.MarkReminded(ctx, session.Phone, now); err != nil {
			log.Error().Err(err).Str("phone", logger.MaskPhone(session.Phone)).Msg("Failed to mark reminder")
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Info().Int("sent", sent).Int("stale", len(sessions)).Msg("Intake reminders sent")
	}
	return sent, nil
}

func (r *ReminderJob) remind(session *models.IntakeSession) error {
	data := session.Data.Data()
	if r.templates.Has(services.TemplateIntakeReminder) {
		return r.templates.SendTemplate(session.Phone, services.TemplateIntakeReminder, map[string]string{
			"question": services.Prompt(session.State, data),
		})
	}
	return r.messenger.SendWhatsAppMessage(session.Phone, services.Reminder(session.State, data))
}
