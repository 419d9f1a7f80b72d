package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
	"github.com/agrocredito/agrocredito-backend/internal/projection"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
	"github.com/agrocredito/agrocredito-backend/internal/scoring"
)

// IntakeState is the step of the WhatsApp intake a session is waiting on
type IntakeState string

const (
	StateInicio           IntakeState = "INICIO"           // waiting for the crop
	StateCultivo          IntakeState = "CULTIVO"          // waiting for the area
	StateHectareas        IntakeState = "HECTAREAS"        // waiting for the irrigation
	StateRiego            IntakeState = "RIEGO"            // waiting for the channel
	StateComercializacion IntakeState = "COMERCIALIZACION" // waiting for the location
	StateUbicacion        IntakeState = "UBICACION"        // all fields in, scoring pending
	StateFinalizado       IntakeState = "FINALIZADO"
)

// IntakeStates lists the states in collection order
var IntakeStates = []IntakeState{
	StateInicio, StateCultivo, StateHectareas, StateRiego,
	StateComercializacion, StateUbicacion, StateFinalizado,
}

// Next returns the state that follows s, or s itself when s is terminal
func (s IntakeState) Next() IntakeState {
	for i, st := range IntakeStates {
		if st == s && i+1 < len(IntakeStates) {
			return IntakeStates[i+1]
		}
	}
	return s
}

// Terminal reports whether the intake is complete
func (s IntakeState) Terminal() bool {
	return s == StateFinalizado
}

// Session data field names, in collection order
const (
	FieldCrop              = "crop"
	FieldArea              = "area"
	FieldIrrigation        = "irrigation"
	FieldCommercialization = "commercialization"
	FieldLocation          = "location"
)

// IntakeSession stores the WhatsApp intake of one farmer
type IntakeSession struct {
	ID             uint                            `json:"-" gorm:"primaryKey"`
	Phone          string                          `json:"phone" gorm:"uniqueIndex;not null"`
	State          IntakeState                     `json:"state" gorm:"type:varchar(32);not null;index"`
	Data           datatypes.JSONType[SessionData] `json:"data"`
	Version        int                             `json:"version" gorm:"not null;default:0"`
	ReminderSentAt *time.Time                      `json:"reminder_sent_at,omitempty"`
	CreatedAt      time.Time                       `json:"created_at"`
	UpdatedAt      time.Time                       `json:"updated_at" gorm:"index"`
}

func (IntakeSession) TableName() string { return "intake_sessions" }

// NewIntakeSession returns a fresh session at INICIO
func NewIntakeSession(phone string) *IntakeSession {
	return &IntakeSession{
		Phone: phone,
		State: StateInicio,
		Data:  datatypes.NewJSONType(SessionData{}),
	}
}

// SessionData is the document collected during the intake. Fields are only
// set for states already passed.
type SessionData struct {
	Crop              string               `json:"crop,omitempty"`
	Area              *float64             `json:"area,omitempty"`
	Irrigation        reference.Irrigation `json:"irrigation,omitempty"`
	Commercialization reference.Channel    `json:"commercialization,omitempty"`
	Location          string               `json:"location,omitempty"`
	ScoreData         *ScoreData           `json:"score_data,omitempty"`
	// LoanApplicationID is set once the farmer accepts the offer
	LoanApplicationID string `json:"loan_application_id,omitempty"`
	// LastAnswer is the folded text of the last accepted answer. It is not a
	// collected field.
	LastAnswer string `json:"last_answer,omitempty"`
}

// Collected returns the names of the fields set so far, in collection order
func (d SessionData) Collected() []string {
	var fields []string
	if d.Crop != "" {
		fields = append(fields, FieldCrop)
	}
	if d.Area != nil {
		fields = append(fields, FieldArea)
	}
	if d.Irrigation != "" {
		fields = append(fields, FieldIrrigation)
	}
	if d.Commercialization != "" {
		fields = append(fields, FieldCommercialization)
	}
	if d.Location != "" {
		fields = append(fields, FieldLocation)
	}
	return fields
}

// Eligible reports whether a finished intake may apply for the loan.
// Rejected projects are not offered one.
func (d SessionData) Eligible() bool {
	return d.ScoreData != nil && d.ScoreData.Score.Tier != scoring.TierRejected
}

// Inputs builds the engine inputs from a complete document
func (d SessionData) Inputs() (reference.ProjectInputs, error) {
	if len(d.Collected()) < 5 {
		return reference.ProjectInputs{}, apperr.Validation("intake is incomplete")
	}
	in := reference.ProjectInputs{
		Crop:       d.Crop,
		AreaHa:     *d.Area,
		Irrigation: d.Irrigation,
		Channel:    d.Commercialization,
		Location:   d.Location,
	}
	return in, in.Validate()
}

// ScoreData is attached to the session when the intake completes. It is kept
// for audit and never read back as an input.
type ScoreData struct {
	Score        scoring.Result        `json:"score"`
	Projection   projection.Projection `json:"projection"`
	AssessmentID string                `json:"assessment_id,omitempty"`
	ComputedAt   time.Time             `json:"computed_at"`
}
