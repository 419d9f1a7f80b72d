package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/normalize"
	"github.com/agrocredito/agrocredito-backend/internal/projection"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
	"github.com/agrocredito/agrocredito-backend/internal/scoring"
)

func newTestFlow() *IntakeFlow {
	return NewIntakeFlow(normalize.NewResolver(reference.Default()))
}

func area(v float64) *float64 { return &v }

func TestFlowCollectsOneFieldPerMessage(t *testing.T) {
	flow := newTestFlow()

	steps := []struct {
		text      string
		wantState models.IntakeState
		collected int
	}{
		{"Tomate", models.StateCultivo, 1},
		{"2,5", models.StateHectareas, 2},
		{"Goteo", models.StateRiego, 3},
		{"exportación", models.StateComercializacion, 4},
		{"Huehuetenango", models.StateUbicacion, 5},
	}

	state := models.StateInicio
	data := models.SessionData{}
	for _, step := range steps {
		turn := flow.Handle(state, data, step.text)
		require.True(t, turn.Changed, step.text)
		assert.Equal(t, step.wantState, turn.State, step.text)
		assert.Len(t, turn.Data.Collected(), step.collected, step.text)
		state, data = turn.State, turn.Data
	}

	assert.Equal(t, "tomate", data.Crop)
	assert.Equal(t, 2.5, *data.Area)
	assert.Equal(t, reference.IrrigationDrip, data.Irrigation)
	assert.Equal(t, reference.ChannelExport, data.Commercialization)
	assert.Equal(t, "huehuetenango", data.Location)
}

func TestFlowLocationTriggersAssessment(t *testing.T) {
	flow := newTestFlow()
	data := models.SessionData{Crop: "tomate", Area: area(2), Irrigation: reference.IrrigationDrip, Commercialization: reference.ChannelExport}

	turn := flow.Handle(models.StateComercializacion, data, "Huehuetenango")
	assert.Equal(t, models.StateUbicacion, turn.State)
	assert.Equal(t, ActionAssess, turn.Action)
	assert.True(t, turn.Changed)

	retry := flow.Handle(models.StateUbicacion, turn.Data, "hola")
	assert.Equal(t, ActionAssess, retry.Action)
	assert.False(t, retry.Changed)
}

func TestFlowRejectsInvalidInputWithoutMutation(t *testing.T) {
	flow := newTestFlow()
	partial := models.SessionData{Crop: "tomate", Area: area(2)}

	tests := []struct {
		name      string
		state     models.IntakeState
		data      models.SessionData
		text      string
		wantReply string
	}{
		{"empty crop", models.StateInicio, models.SessionData{}, "   ", "cultivo"},
		{"zero area", models.StateCultivo, models.SessionData{Crop: "tomate"}, "0", "número mayor que cero"},
		{"negative area", models.StateCultivo, models.SessionData{Crop: "tomate"}, "-3", "número mayor que cero"},
		{"text area", models.StateCultivo, models.SessionData{Crop: "tomate"}, "muchas", "número mayor que cero"},
		{"unknown irrigation", models.StateHectareas, partial, "hidroponia", "Goteo"},
		{"unknown channel", models.StateRiego, partial, "trueque", "Exportación"},
		{"empty location", models.StateComercializacion, partial, "", "ubicación"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn := flow.Handle(tt.state, tt.data, tt.text)
			assert.False(t, turn.Changed)
			assert.Equal(t, ActionNone, turn.Action)
			assert.Equal(t, tt.state, turn.State)
			assert.Equal(t, tt.data.Collected(), turn.Data.Collected())
			assert.Contains(t, turn.Reply, tt.wantReply)
		})
	}
}

func TestFlowUnmatchedIrrigationEchoesAllOptions(t *testing.T) {
	turn := newTestFlow().Handle(models.StateHectareas, models.SessionData{Crop: "maiz", Area: area(1)}, "hidroponia")
	for _, irr := range reference.Irrigations {
		assert.Contains(t, turn.Reply, irr.Label())
	}
}

func TestFlowAcceptsAccentAndCaseVariants(t *testing.T) {
	flow := newTestFlow()
	data := models.SessionData{Crop: "maiz", Area: area(1)}

	for _, text := range []string{"ASPERSIÓN", "aspersion", " Aspersion "} {
		turn := flow.Handle(models.StateHectareas, data, text)
		assert.Equal(t, reference.IrrigationSprinkler, turn.Data.Irrigation, text)
	}

	turn := flow.Handle(models.StateCultivo, models.SessionData{Crop: "maiz"}, "3 manzanas")
	require.True(t, turn.Changed)
	assert.InDelta(t, 3*normalize.HectaresPerManzana, *turn.Data.Area, 1e-9)
}

func TestFlowUnknownCropPassesThrough(t *testing.T) {
	turn := newTestFlow().Handle(models.StateInicio, models.SessionData{}, "Pitahaya")
	assert.Equal(t, models.StateCultivo, turn.State)
	assert.Equal(t, "pitahaya", turn.Data.Crop)
	assert.Contains(t, turn.Reply, "pitahaya")
}

func TestFlowResetFromAnyState(t *testing.T) {
	flow := newTestFlow()
	full := models.SessionData{
		Crop: "tomate", Area: area(2), Irrigation: reference.IrrigationDrip,
		Commercialization: reference.ChannelExport, Location: "huehuetenango",
	}

	for _, state := range models.IntakeStates {
		for _, cmd := range []string{"reiniciar", "REINICIAR", "Reset"} {
			turn := flow.Handle(state, full, cmd)
			assert.Equal(t, models.StateInicio, turn.State, state)
			assert.Empty(t, turn.Data.Collected(), state)
			assert.True(t, turn.Changed)
			assert.Equal(t, ActionNone, turn.Action)
		}
	}
}

func TestFlowHelpRepeatsPrompt(t *testing.T) {
	turn := newTestFlow().Handle(models.StateRiego, models.SessionData{Crop: "maiz"}, "ayuda")
	assert.False(t, turn.Changed)
	assert.Equal(t, models.StateRiego, turn.State)
	assert.Contains(t, turn.Reply, "Cooperativa")
}

func TestFlowOfferAnswers(t *testing.T) {
	flow := newTestFlow()
	done := models.SessionData{
		Crop: "tomate", Area: area(2),
		ScoreData: &models.ScoreData{Score: scoring.Result{Total: 860, Tier: scoring.TierApproved}},
	}

	yes := flow.Handle(models.StateFinalizado, done, "Sí")
	assert.Equal(t, ActionApplyLoan, yes.Action)
	assert.False(t, yes.Changed)

	no := flow.Handle(models.StateFinalizado, done, "no")
	assert.Equal(t, ActionNone, no.Action)
	assert.Equal(t, models.StateFinalizado, no.State)
	assert.Equal(t, msgClosing, no.Reply)

	other := flow.Handle(models.StateFinalizado, done, "hola")
	assert.Equal(t, models.StateInicio, other.State)
	assert.True(t, other.Changed)
	assert.Empty(t, other.Data.Collected())
	assert.Nil(t, other.Data.ScoreData)
	assert.Equal(t, Welcome(), other.Reply)

	done.LoanApplicationID = "app-1"
	again := flow.Handle(models.StateFinalizado, done, "si")
	assert.Equal(t, ActionNone, again.Action)
	assert.Equal(t, msgLoanExists, again.Reply)
}

func TestFlowRejectedIntakeIsNotOfferedTheLoan(t *testing.T) {
	flow := newTestFlow()
	done := models.SessionData{
		Crop: "frijol", Area: area(0.5),
		ScoreData: &models.ScoreData{Score: scoring.Result{Total: 485, Tier: scoring.TierRejected}},
	}

	for _, text := range []string{"sí", "no"} {
		turn := flow.Handle(models.StateFinalizado, done, text)
		assert.Equal(t, ActionNone, turn.Action, text)
		assert.False(t, turn.Changed, text)
		assert.Equal(t, msgNotEligible, turn.Reply, text)
	}
}

func TestFlowIgnoresRepeatedAnswer(t *testing.T) {
	flow := newTestFlow()

	// an area of 2 delivered again must not pick irrigation option 2
	turn := flow.Handle(models.StateCultivo, models.SessionData{Crop: "maiz"}, "2")
	require.Equal(t, models.StateHectareas, turn.State)

	again := flow.Handle(turn.State, turn.Data, "2")
	assert.False(t, again.Changed)
	assert.Equal(t, models.StateHectareas, again.State)
	assert.Empty(t, again.Data.Irrigation)
	assert.Contains(t, again.Reply, msgOptionHint)

	explicit := flow.Handle(turn.State, turn.Data, "opción 2")
	assert.Equal(t, models.StateRiego, explicit.State)
	assert.Equal(t, reference.IrrigationSprinkler, explicit.Data.Irrigation)

	// a different number is an answer
	other := flow.Handle(turn.State, turn.Data, "1")
	assert.Equal(t, reference.IrrigationDrip, other.Data.Irrigation)

	// the location delivered again does not restart a finished intake
	done := models.SessionData{
		Crop: "tomate", Area: area(2), Irrigation: reference.IrrigationDrip,
		Commercialization: reference.ChannelExport, Location: "huehuetenango",
		ScoreData:  &models.ScoreData{Score: scoring.Result{Total: 860, Tier: scoring.TierApproved}},
		LastAnswer: "huehuetenango",
	}
	replay := flow.Handle(models.StateFinalizado, done, "Huehuetenango")
	assert.False(t, replay.Changed)
	assert.Equal(t, models.StateFinalizado, replay.State)
	assert.NotNil(t, replay.Data.ScoreData)
	assert.Contains(t, replay.Reply, msgOfferPrompt)
}

func TestFlowCompleteAttachesScoreData(t *testing.T) {
	data := models.SessionData{Crop: "tomate", Area: area(2)}
	result := &models.ScoreData{
		Score:      scoring.Result{Total: 860, Tier: scoring.TierApproved},
		Projection: projection.Projection{TotalCost: 114000},
		ComputedAt: time.Now(),
	}

	turn := newTestFlow().Complete(data, result)
	assert.Equal(t, models.StateFinalizado, turn.State)
	assert.Same(t, result, turn.Data.ScoreData)
	assert.Contains(t, turn.Reply, "PRE-APROBADO")
	assert.Contains(t, turn.Reply, "Q 114,000")

	app := models.NewLoanApplication("+50255550001", turn.Data)
	applied := newTestFlow().Applied(turn.Data, app)
	assert.Equal(t, app.ID, applied.Data.LoanApplicationID)
	assert.Contains(t, applied.Reply, "Q 114,000")
}
