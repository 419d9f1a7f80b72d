package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
	"github.com/agrocredito/agrocredito-backend/internal/market"
	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/normalize"
	"github.com/agrocredito/agrocredito-backend/internal/projection"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
	"github.com/agrocredito/agrocredito-backend/internal/scoring"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

const farmer = "+50255551234"

// flakyPrices fails every quote while down is set
type flakyPrices struct {
	down atomic.Bool
	next market.PriceSource
}

func (f *flakyPrices) Quote(ctx context.Context, crop string) (market.Quote, bool, error) {
	if f.down.Load() {
		return market.Quote{}, false, errors.New("market unavailable")
	}
	return f.next.Quote(ctx, crop)
}

// conflictStore loses every versioned write
type conflictStore struct {
	storage.Store
}

func (conflictStore) SaveSession(context.Context, *models.IntakeSession, int) error {
	return apperr.Conflict("session was modified concurrently")
}

func newTestWhatsApp(store storage.Store, prices market.PriceSource) *WhatsAppService {
	tables := reference.Default()
	resolver := normalize.NewResolver(tables)
	assessor := NewAssessor(scoring.NewEngine(tables), projection.NewProjector(tables, prices), store, resolver)
	return NewWhatsAppService(store, NewIntakeFlow(resolver), assessor)
}

func send(t *testing.T, svc *WhatsAppService, text string) string {
	t.Helper()
	reply, err := svc.ProcessMessage(context.Background(), "whatsapp:"+farmer, text)
	require.NoError(t, err, text)
	require.NotEmpty(t, reply)
	return reply
}

func TestProcessMessageFullIntake(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestWhatsApp(store, nil)

	assert.Equal(t, Welcome(), send(t, svc, "Hola"))

	session, err := store.GetSession(ctx, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.StateInicio, session.State)
	assert.Empty(t, session.Data.Data().Collected())

	send(t, svc, "Tomate")
	send(t, svc, "2")
	send(t, svc, "goteo")
	send(t, svc, "Exportación")
	summary := send(t, svc, "Huehuetenango")

	assert.Contains(t, summary, "PRE-APROBADO")
	assert.Contains(t, summary, "*860*")
	assert.Contains(t, summary, "SÍ")

	session, err = store.GetSession(ctx, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.StateFinalizado, session.State)

	sd := session.Data.Data().ScoreData
	require.NotNil(t, sd)
	assert.Equal(t, 860, sd.Score.Total)
	assert.Equal(t, scoring.TierApproved, sd.Score.Tier)
	assert.InDelta(t, 114000, sd.Projection.TotalCost, 1e-6)
	assert.InDelta(t, 5200, sd.Projection.ExpectedYieldQQ, 1e-6)

	audit, err := store.GetAssessment(ctx, sd.AssessmentID)
	require.NoError(t, err)
	assert.Equal(t, models.SourceWhatsApp, audit.Source)
	assert.Equal(t, 860, audit.Total)

	confirmation := send(t, svc, "sí")
	assert.Contains(t, confirmation, "Q 114,000")

	apps, err := store.ListLoanApplications(ctx, models.LoanStatusPendingReview)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, sd.AssessmentID, apps[0].AssessmentID)
	assert.InDelta(t, 114000, apps[0].RequestedAmount, 1e-6)

	// a repeated yes does not apply twice
	assert.Equal(t, msgLoanExists, send(t, svc, "si"))
	apps, err = store.ListLoanApplications(ctx, "")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestProcessMessageInvalidInputDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestWhatsApp(store, nil)

	send(t, svc, "hola")
	send(t, svc, "maiz")

	before, err := store.GetSession(ctx, farmer)
	require.NoError(t, err)

	assert.Equal(t, msgBadArea, send(t, svc, "cero"))

	after, err := store.GetSession(ctx, farmer)
	require.NoError(t, err)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, models.StateCultivo, after.State)
}

func TestProcessMessageComputationFailureStaysAtUbicacion(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	prices := &flakyPrices{next: market.NewStaticSource(reference.Default())}
	svc := newTestWhatsApp(store, prices)

	for _, text := range []string{"hola", "frijol", "0.5", "temporal", "mercado local"} {
		send(t, svc, text)
	}

	prices.down.Store(true)
	reply, err := svc.ProcessMessage(ctx, farmer, "Zacapa")
	assert.True(t, apperr.Is(err, apperr.KindComputation))
	assert.Equal(t, msgGenericRetry, reply)

	session, err := store.GetSession(ctx, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.StateUbicacion, session.State)
	assert.Equal(t, "zacapa", session.Data.Data().Location)
	assert.Nil(t, session.Data.Data().ScoreData)

	prices.down.Store(false)
	summary := send(t, svc, "hola?")
	assert.Contains(t, summary, "NO CALIFICA")

	session, err = store.GetSession(ctx, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.StateFinalizado, session.State)
	assert.Equal(t, scoring.TierRejected, session.Data.Data().ScoreData.Score.Tier)

	// rejected projects are not offered the loan
	assert.Equal(t, msgNotEligible, send(t, svc, "sí"))
	apps, err := store.ListLoanApplications(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestProcessMessageConflictAsksToRetry(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	_, err := mem.CreateSession(ctx, farmer)
	require.NoError(t, err)

	svc := newTestWhatsApp(conflictStore{mem}, nil)
	reply, err := svc.ProcessMessage(ctx, farmer, "maiz")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, msgGenericRetry, reply)

	session, err := mem.GetSession(ctx, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.StateInicio, session.State)
}

func TestProcessMessageRejectsMissingSender(t *testing.T) {
	svc := newTestWhatsApp(storage.NewMemoryStore(), nil)
	reply, err := svc.ProcessMessage(context.Background(), " ", "hola")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, msgGenericRetry, reply)
}

func TestResetSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestWhatsApp(store, nil)

	send(t, svc, "hola")
	send(t, svc, "cafe")
	send(t, svc, "3")

	session, err := svc.ResetSession(ctx, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.StateInicio, session.State)
	assert.Empty(t, session.Data.Data().Collected())

	_, err = svc.ResetSession(ctx, "+000")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestProcessInboundSkipsRedeliveredMessages(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestWhatsApp(store, nil)

	for i, text := range []string{"hola", "tomate", "2", "goteo", "exportacion", "huehuetenango", "si"} {
		sid := fmt.Sprintf("SM%03d", i)

		reply, duplicate, err := svc.ProcessInbound(ctx, sid, "whatsapp:"+farmer, text)
		require.NoError(t, err, text)
		require.False(t, duplicate, text)
		require.NotEmpty(t, reply, text)

		before, err := store.GetSession(ctx, farmer)
		require.NoError(t, err)

		reply, duplicate, err = svc.ProcessInbound(ctx, sid, "whatsapp:"+farmer, text)
		require.NoError(t, err, text)
		assert.True(t, duplicate, text)
		assert.Empty(t, reply, text)

		after, err := store.GetSession(ctx, farmer)
		require.NoError(t, err)
		assert.Equal(t, before.State, after.State, text)
		assert.Equal(t, before.Version, after.Version, text)
		assert.Equal(t, before.Data.Data().Collected(), after.Data.Data().Collected(), text)
	}

	apps, err := store.ListLoanApplications(ctx, "")
	require.NoError(t, err)
	assert.Len(t, apps, 1)
}

func TestProcessMessageRepeatedTextDoesNotAdvance(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestWhatsApp(store, nil)

	// the same text arriving again, with no MessageSid to recognise it by
	steps := []struct {
		text      string
		wantState models.IntakeState
	}{
		{"maiz", models.StateCultivo},
		{"2", models.StateHectareas},
		{"1", models.StateRiego},
		{"exportacion", models.StateComercializacion},
		{"Huehuetenango", models.StateFinalizado},
	}

	send(t, svc, "hola")
	for _, step := range steps {
		send(t, svc, step.text)

		before, err := store.GetSession(ctx, farmer)
		require.NoError(t, err)
		require.Equal(t, step.wantState, before.State, step.text)

		reply := send(t, svc, step.text)
		assert.Contains(t, reply, msgRepeated, step.text)

		after, err := store.GetSession(ctx, farmer)
		require.NoError(t, err)
		assert.Equal(t, before.State, after.State, step.text)
		assert.Equal(t, before.Version, after.Version, step.text)
		assert.Equal(t, before.Data.Data().Collected(), after.Data.Data().Collected(), step.text)
	}

	session, err := store.GetSession(ctx, farmer)
	require.NoError(t, err)
	assert.NotNil(t, session.Data.Data().ScoreData)
}

func TestProcessMessageExplicitOptionAfterSameNumber(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	svc := newTestWhatsApp(store, nil)

	for _, text := range []string{"hola", "maiz", "2"} {
		send(t, svc, text)
	}
	send(t, svc, "opción 2")

	session, err := store.GetSession(ctx, farmer)
	require.NoError(t, err)
	assert.Equal(t, models.StateRiego, session.State)
	assert.Equal(t, reference.IrrigationSprinkler, session.Data.Data().Irrigation)
}
