package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
	"github.com/agrocredito/agrocredito-backend/internal/logger"
	"github.com/agrocredito/agrocredito-backend/internal/models"
	"github.com/agrocredito/agrocredito-backend/internal/normalize"
	"github.com/agrocredito/agrocredito-backend/internal/projection"
	"github.com/agrocredito/agrocredito-backend/internal/reference"
	"github.com/agrocredito/agrocredito-backend/internal/scoring"
	"github.com/agrocredito/agrocredito-backend/internal/storage"
)

// Assessor runs scoring and projection for a set of inputs and records the
// audit row
type Assessor struct {
	scorer    *scoring.Engine
	projector *projection.Projector
	store     storage.Store
	resolver  *normalize.Resolver
	now       func() time.Time
}

// NewAssessor creates a new assessor
func NewAssessor(scorer *scoring.Engine, projector *projection.Projector, store storage.Store, resolver *normalize.Resolver) *Assessor {
	return &Assessor{
		scorer:    scorer,
		projector: projector,
		store:     store,
		resolver:  resolver,
		now:       time.Now,
	}
}

// Assess scores and projects in. Scoring falls back to the neutral result,
// a projection failure fails the whole call.
func (a *Assessor) Assess(ctx context.Context, phone, source string, in reference.ProjectInputs) (*models.ScoreData, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	score := a.scorer.ScoreWithFallback(in)

	proj, err := a.projector.Project(ctx, in)
	if err != nil {
		return nil, err
	}

	record := models.NewAssessment(phone, source, in, score, proj)
	if err := a.store.CreateAssessment(ctx, record); err != nil {
		return nil, err
	}

	log.Info().
		Str("assessment_id", record.ID).
		Str("phone", logger.MaskPhone(phone)).
		Str("source", source).
		Str("crop", in.Crop).
		Int("total", score.Total).
		Str("tier", string(score.Tier)).
		Bool("fallback", score.Fallback).
		Msg("Assessment completed")

	return &models.ScoreData{
		Score:        score,
		Projection:   proj,
		AssessmentID: record.ID,
		ComputedAt:   a.now(),
	}, nil
}

// AssessmentRequest is the free text of a project submitted over the API
type AssessmentRequest struct {
	Phone      string  `json:"phone,omitempty"`
	Crop       string  `json:"crop"`
	Area       float64 `json:"area"`
	Irrigation string  `json:"irrigation"`
	Channel    string  `json:"channel"`
	Location   string  `json:"location"`
}

// Inputs normalizes the request the same way the WhatsApp intake does
func (a *Assessor) Inputs(req AssessmentRequest) (reference.ProjectInputs, error) {
	irrigation, ok := a.resolver.MatchIrrigation(req.Irrigation)
	if !ok {
		return reference.ProjectInputs{}, apperr.Validation(fmt.Sprintf("unknown irrigation %q", req.Irrigation))
	}
	channel, ok := a.resolver.MatchChannel(req.Channel)
	if !ok {
		return reference.ProjectInputs{}, apperr.Validation(fmt.Sprintf("unknown channel %q", req.Channel))
	}
	if normalize.Fold(req.Location) == "" {
		return reference.ProjectInputs{}, apperr.Validation("location is required")
	}

	crop, _ := a.resolver.ResolveCrop(req.Crop)
	location, _ := a.resolver.ResolveLocation(req.Location)

	in := reference.ProjectInputs{
		Crop:       crop,
		AreaHa:     req.Area,
		Irrigation: irrigation,
		Channel:    channel,
		Location:   location,
	}
	return in, in.Validate()
}

// AssessRequest normalizes and assesses an API request
func (a *Assessor) AssessRequest(ctx context.Context, req AssessmentRequest) (reference.ProjectInputs, *models.ScoreData, error) {
	in, err := a.Inputs(req)
	if err != nil {
		return in, nil, err
	}
	result, err := a.Assess(ctx, req.Phone, models.SourceAPI, in)
	return in, result, err
}
