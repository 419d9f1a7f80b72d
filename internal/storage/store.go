package storage

import (
	"context"
	"time"

	"github.com/agrocredito/agrocredito-backend/internal/models"
)

// Store defines the interface for storage operations. Implementations return
// apperr NOT_FOUND, CONFLICT and PERSISTENCE errors.
type Store interface {
	// Intake session operations
	GetSession(ctx context.Context, phone string) (*models.IntakeSession, error)
	CreateSession(ctx context.Context, phone string) (*models.IntakeSession, error)
	// SaveSession writes state and data only if the stored version still equals
	// expectedVersion, then bumps the version on s.
	SaveSession(ctx context.Context, s *models.IntakeSession, expectedVersion int) error
	ListStaleSessions(ctx context.Context, idleSince time.Time) ([]*models.IntakeSession, error)
	MarkReminded(ctx context.Context, phone string, at time.Time) error

	// Assessment operations
	CreateAssessment(ctx context.Context, a *models.Assessment) error
	GetAssessment(ctx context.Context, id string) (*models.Assessment, error)

	// Loan application operations
	CreateLoanApplication(ctx context.Context, app *models.LoanApplication) error
	ListLoanApplications(ctx context.Context, status string) ([]*models.LoanApplication, error)

	// Inbound message operations
	// RecordInboundMessage claims a webhook delivery. A MessageSid that was
	// already recorded returns CONFLICT.
	RecordInboundMessage(ctx context.Context, msg *models.InboundMessage) error

	// Ping checks the backend is reachable
	Ping(ctx context.Context) error
}

// needsReminder is shared by both stores: the session is mid-intake, idle
// since before cutoff, and has not been reminded since it last changed.
func needsReminder(s *models.IntakeSession, cutoff time.Time) bool {
	if s.State.Terminal() || !s.UpdatedAt.Before(cutoff) {
		return false
	}
	return s.ReminderSentAt == nil || s.ReminderSentAt.Before(s.UpdatedAt)
}
