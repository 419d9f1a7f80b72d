package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/services"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

type fakeMessenger struct {
	texts     map[string]string
	templates map[string]map[string]string
	fail      map[string]bool
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{
		texts:     map[string]string{},
		templates: map[string]map[string]string{},
		fail:      map[string]bool{},
	}
}

func (f *fakeMessenger) SendWhatsAppMessage(to, message string) error {
	if f.fail[to] {
		return errors.New("delivery failed")
	}
	f.texts[to] = message
	return nil
}

func (f *fakeMessenger) SendWhatsAppTemplate(to, _ string, vars map[string]string) error {
	if f.fail[to] {
		return errors.New("delivery failed")
	}
	f.templates[to] = vars
	return nil
}

func seed(t *testing.T, store storage.Store, phone string, state models.IntakeState) {
	t.Helper()
	ctx := context.Background()
	s, err := store.CreateSession(ctx, phone)
	require.NoError(t, err)
	if state != models.StateInicio {
		s.State = state
		s.Data = datatypes.NewJSONType(models.SessionData{Crop: "maiz"})
		require.NoError(t, store.SaveSession(ctx, s, s.Version))
	}
}

// twoDaysLater makes every session created now look idle
func twoDaysLater() time.Time {
	return time.Now().Add(48 * time.Hour)
}

func TestReminderRunOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	seed(t, store, "+50255550001", models.StateCultivo)
	seed(t, store, "+50255550002", models.StateFinalizado)
	seed(t, store, "+50255550003", models.StateInicio)

	messenger := newFakeMessenger()
	messenger.fail["+50255550003"] = true

	job := NewReminderJob(store, messenger, nil, time.Hour, 24*time.Hour)
	job.now = twoDaysLater

	sent, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Contains(t, messenger.texts["+50255550001"], "pendiente")
	assert.Contains(t, messenger.texts["+50255550001"], "hectáreas")
	assert.NotContains(t, messenger.texts, "+50255550002")

	// reminded sessions are skipped, failed deliveries are retried
	delete(messenger.fail, "+50255550003")
	sent, err = job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Contains(t, messenger.texts, "+50255550003")

	sent, err = job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestReminderSkipsRecentSessions(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(t, store, "+50255550001", models.StateCultivo)

	messenger := newFakeMessenger()
	job := NewReminderJob(store, messenger, nil, time.Hour, 24*time.Hour)

	sent, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, messenger.texts)
}

func TestReminderUsesTemplateWhenConfigured(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(t, store, "+50255550001", models.StateHectareas)

	messenger := newFakeMessenger()
	templates := services.NewTemplateService(messenger, "HXreminder")
	job := NewReminderJob(store, messenger, templates, time.Hour, 24*time.Hour)
	job.now = twoDaysLater

	sent, err := job.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Empty(t, messenger.texts)
	assert.Contains(t, messenger.templates["+50255550001"]["1"], "riego")
}

func TestReminderStartStopsWithContext(t *testing.T) {
	store := storage.NewMemoryStore()
	seed(t, store, "+50255550001", models.StateCultivo)

	messenger := newFakeMessenger()
	job := NewReminderJob(store, messenger, nil, 10*time.Millisecond, 0)
	job.now = twoDaysLater

	ctx, cancel := context.WithCancel(context.Background())
	job.Start(ctx)

	require.Eventually(t, func() bool {
		s, err := store.GetSession(context.Background(), "+50255550001")
		return err == nil && s.ReminderSentAt != nil
	}, time.Second, 10*time.Millisecond)
	cancel()
}
