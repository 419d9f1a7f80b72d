package services

import (
	"fmt"

	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/normalize"
)

// Action is work the turn boundary must do after a transition
type Action int

const (
	ActionNone Action = iota
	// ActionAssess runs scoring and projection for a session at UBICACION
	ActionAssess
	// ActionApplyLoan records the loan application of a finished intake
	ActionApplyLoan
)

// Turn is the outcome of one inbound message. When Changed is false the
// session must not be written.
type Turn struct {
	State   models.IntakeState
	Data    models.SessionData
	Reply   string
	Changed bool
	Action  Action
}

// IntakeFlow is the intake state machine. It never touches the store, so one
// message maps to one pure transition.
type IntakeFlow struct {
	resolver *normalize.Resolver
}

// NewIntakeFlow creates the state machine
func NewIntakeFlow(resolver *normalize.Resolver) *IntakeFlow {
	return &IntakeFlow{resolver: resolver}
}

// Handle applies text to a session at state with the collected data
func (f *IntakeFlow) Handle(state models.IntakeState, data models.SessionData, text string) Turn {
	if normalize.IsReset(text) {
		return Turn{
			State:   models.StateInicio,
			Data:    models.SessionData{},
			Reply:   msgReset + "\n\n" + msgAskCrop,
			Changed: true,
		}
	}
	if normalize.IsHelp(text) {
		return stay(state, data, Help(state, data))
	}

	// the previous message delivered again: answer the current question
	// without reading it as the answer to it
	if state != models.StateUbicacion && data.LastAnswer != "" && normalize.Fold(text) == data.LastAnswer {
		return stay(state, data, repeated(state, data))
	}

	switch state {
	case models.StateInicio:
		if normalize.Fold(text) == "" {
			return stay(state, data, msgEmptyCrop)
		}
		// unknown crops pass through, the engines substitute the default profile
		data.Crop, _ = f.resolver.ResolveCrop(text)
		return advance(state, data, text)

	case models.StateCultivo:
		area, ok := normalize.ParseArea(text)
		if !ok {
			return stay(state, data, msgBadArea)
		}
		data.Area = &area
		return advance(state, data, text)

	case models.StateHectareas:
		irrigation, ok := f.resolver.MatchIrrigation(text)
		if !ok {
			return stay(state, data, msgBadIrrigation+"\n"+irrigationOptions())
		}
		data.Irrigation = irrigation
		return advance(state, data, text)

	case models.StateRiego:
		channel, ok := f.resolver.MatchChannel(text)
		if !ok {
			return stay(state, data, msgBadChannel+"\n"+channelOptions())
		}
		data.Commercialization = channel
		return advance(state, data, text)

	case models.StateComercializacion:
		if normalize.Fold(text) == "" {
			return stay(state, data, msgEmptyLocation)
		}
		data.Location, _ = f.resolver.ResolveLocation(text)
		data.LastAnswer = normalize.Fold(text)
		return Turn{State: models.StateUbicacion, Data: data, Changed: true, Action: ActionAssess}

	case models.StateUbicacion:
		// a previous computation failed, any message retries it
		return Turn{State: state, Data: data, Action: ActionAssess}

	case models.StateFinalizado:
		return f.handleOffer(data, text)
	}

	// unknown state in storage, start over
	return Turn{State: models.StateInicio, Data: models.SessionData{}, Reply: Welcome(), Changed: true}
}

func (f *IntakeFlow) handleOffer(data models.SessionData, text string) Turn {
	answer := normalize.ParseAnswer(text)
	if answer != normalize.AnswerOther && !data.Eligible() {
		return stay(models.StateFinalizado, data, msgNotEligible)
	}

	switch answer {
	case normalize.AnswerYes:
		if data.LoanApplicationID != "" {
			return stay(models.StateFinalizado, data, msgLoanExists)
		}
		return Turn{State: models.StateFinalizado, Data: data, Action: ActionApplyLoan}
	case normalize.AnswerNo:
		return stay(models.StateFinalizado, data, msgClosing)
	}
	return Turn{State: models.StateInicio, Data: models.SessionData{}, Reply: Welcome(), Changed: true}
}

// Complete attaches the score data of a successful assessment and finishes the intake
func (f *IntakeFlow) Complete(data models.SessionData, result *models.ScoreData) Turn {
	data.ScoreData = result
	return Turn{
		State:   models.StateFinalizado,
		Data:    data,
		Reply:   Summary(result.Score, result.Projection),
		Changed: true,
	}
}

// Applied records the loan application id on a finished intake
func (f *IntakeFlow) Applied(data models.SessionData, app *models.LoanApplication) Turn {
	data.LoanApplicationID = app.ID
	return Turn{
		State:   models.StateFinalizado,
		Data:    data,
		Reply:   fmt.Sprintf(msgLoanCreated, FormatQuetzales(app.RequestedAmount)),
		Changed: true,
	}
}

func stay(state models.IntakeState, data models.SessionData, reply string) Turn {
	return Turn{State: state, Data: data, Reply: reply}
}

func advance(state models.IntakeState, data models.SessionData, answer string) Turn {
	data.LastAnswer = normalize.Fold(answer)
	next := state.Next()
	return Turn{State: next, Data: data, Reply: Prompt(next, data), Changed: true}
}
