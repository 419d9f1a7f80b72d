package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/agrocredito/agrocredito-backend/internal/projection"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
	"github.com/agrocredito/agrocredito-backend/internal/scoring"
)

// Assessment sources
const (
	SourceWhatsApp = "whatsapp"
	SourceAPI      = "api"
)

// Assessment is the audit record of one scoring and projection run
type Assessment struct {
	ID     string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Phone  string `json:"phone,omitempty" gorm:"index"`
	Source string `json:"source" gorm:"type:varchar(16)"`

	Crop       string               `json:"crop"`
	AreaHa     float64              `json:"area_ha"`
	Irrigation reference.Irrigation `json:"irrigation"`
	Channel    reference.Channel    `json:"channel"`
	Location   string               `json:"location"`

	Total    int          `json:"total"`
	Tier     scoring.Tier `json:"tier" gorm:"type:varchar(16);index"`
	Fallback bool         `json:"fallback"`

	Score      datatypes.JSONType[scoring.Result]        `json:"score"`
	Projection datatypes.JSONType[projection.Projection] `json:"projection"`

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns the id
func (a *Assessment) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// NewAssessment builds the audit record for a run
func NewAssessment(phone, source string, in reference.ProjectInputs, score scoring.Result, proj projection.Projection) *Assessment {
	return &Assessment{
		ID:         uuid.NewString(),
		Phone:      phone,
		Source:     source,
		Crop:       in.Crop,
		AreaHa:     in.AreaHa,
		Irrigation: in.Irrigation,
		Channel:    in.Channel,
		Location:   in.Location,
		Total:      score.Total,
		Tier:       score.Tier,
		Fallback:   score.Fallback,
		Score:      datatypes.NewJSONType(score),
		Projection: datatypes.NewJSONType(proj),
	}
}
