package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agrocredito/agrocredito-backend/internal/scoring"
)

// LoanApplication is recorded when a farmer accepts the offer at the end of the intake
type LoanApplication struct {
	ID           string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Phone        string `json:"phone" gorm:"index;not null"`
	AssessmentID string `json:"assessment_id" gorm:"type:varchar(36)"`

	// Project summary
	Crop   string  `json:"crop"`
	AreaHa float64 `json:"area_ha"`

	// Decision inputs
	Tier  scoring.Tier `json:"tier" gorm:"type:varchar(16)"`
	Total int          `json:"total"`

	// RequestedAmount is the projected total cost of the project, in quetzales
	RequestedAmount float64 `json:"requested_amount"`

	// Status tracking
	Status     string     `json:"status" gorm:"type:varchar(32);index"` // "pending_review", "approved", "declined"
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoanApplication status constants
const (
	LoanStatusPendingReview = "pending_review"
	LoanStatusApproved      = "approved"
	LoanStatusDeclined      = "declined"
)

// BeforeCreate assigns the id and initial status
func (l *LoanApplication) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.Status == "" {
		l.Status = LoanStatusPendingReview
	}
	return nil
}

// NewLoanApplication builds a pending application from the score data of a finished intake
func NewLoanApplication(phone string, data SessionData) *LoanApplication {
	app := &LoanApplication{
		ID:     uuid.NewString(),
		Phone:  phone,
		Crop:   data.Crop,
		Status: LoanStatusPendingReview,
	}
	if data.Area != nil {
		app.AreaHa = *data.Area
	}
	if sd := data.ScoreData; sd != nil {
		app.AssessmentID = sd.AssessmentID
		app.Tier = sd.Score.Tier
		app.Total = sd.Score.Total
		app.RequestedAmount = sd.Projection.TotalCost
	}
	return app
}
