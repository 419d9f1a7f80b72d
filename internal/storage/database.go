package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
	"github.com/agrocredito/agrocredito-backend/internal/models"
)

// DatabaseStore persists through gorm (PostgreSQL in production, SQLite locally)
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore wraps an open gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) GetSession(ctx context.Context, phone string) (*models.IntakeSession, error) {
	var s models.IntakeSession
	err := d.db.WithContext(ctx).Where("phone = ?", phone).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("session not found")
	}
	if err != nil {
		return nil, apperr.Persistence("failed to load session", err)
	}
	return &s, nil
}

func (d *DatabaseStore) CreateSession(ctx context.Context, phone string) (*models.IntakeSession, error) {
	s := models.NewIntakeSession(phone)
	s.Version = 1

	if err := d.db.WithContext(ctx).Create(s).Error; err != nil {
		// a concurrent first message may have created it
		var count int64
		if cerr := d.db.WithContext(ctx).Model(&models.IntakeSession{}).Where("phone = ?", phone).Count(&count).Error; cerr == nil && count > 0 {
			return nil, apperr.Conflict("session already exists")
		}
		return nil, apperr.Persistence("failed to create session", err)
	}
	return s, nil
}

func (d *DatabaseStore) SaveSession(ctx context.Context, s *models.IntakeSession, expectedVersion int) error {
	now := time.Now()
	res := d.db.WithContext(ctx).
		Model(&models.IntakeSession{}).
		Where("phone = ? AND version = ?", s.Phone, expectedVersion).
		Updates(map[string]interface{}{
			"state":      s.State,
			"data":       s.Data,
			"version":    expectedVersion + 1,
			"updated_at": now,
		})
	if res.Error != nil {
		return apperr.Persistence("failed to save session", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("session was modified concurrently")
	}

	s.Version = expectedVersion + 1
	s.UpdatedAt = now
	return nil
}

func (d *DatabaseStore) ListStaleSessions(ctx context.Context, idleSince time.Time) ([]*models.IntakeSession, error) {
	var sessions []*models.IntakeSession
	err := d.db.WithContext(ctx).
		Where("state <> ? AND updated_at < ?", models.StateFinalizado, idleSince).
		Where("reminder_sent_at IS NULL OR reminder_sent_at < updated_at").
		Order("updated_at").
		Find(&sessions).Error
	if err != nil {
		return nil, apperr.Persistence("failed to list stale sessions", err)
	}
	return sessions, nil
}

// MarkReminded sets reminder_sent_at without touching updated_at or the version
func (d *DatabaseStore) MarkReminded(ctx context.Context, phone string, at time.Time) error {
	res := d.db.WithContext(ctx).
		Model(&models.IntakeSession{}).
		Where("phone = ?", phone).
		UpdateColumn("reminder_sent_at", at)
	if res.Error != nil {
		return apperr.Persistence("failed to mark reminder", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("session not found")
	}
	return nil
}

// Assessment operations
func (d *DatabaseStore) CreateAssessment(ctx context.Context, a *models.Assessment) error {
	if err := d.db.WithContext(ctx).Create(a).Error; err != nil {
		return apperr.Persistence("failed to save assessment", err)
	}
	return nil
}

func (d *DatabaseStore) GetAssessment(ctx context.Context, id string) (*models.Assessment, error) {
	var a models.Assessment
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("assessment not found")
	}
	if err != nil {
		return nil, apperr.Persistence("failed to load assessment", err)
	}
	return &a, nil
}

// Loan application operations
func (d *DatabaseStore) CreateLoanApplication(ctx context.Context, app *models.LoanApplication) error {
	if err := d.db.WithContext(ctx).Create(app).Error; err != nil {
		return apperr.Persistence("failed to save loan application", err)
	}
	return nil
}

func (d *DatabaseStore) ListLoanApplications(ctx context.Context, status string) ([]*models.LoanApplication, error) {
	var apps []*models.LoanApplication
	q := d.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&apps).Error; err != nil {
		return nil, apperr.Persistence("failed to list loan applications", err)
	}
	return apps, nil
}

// Inbound message operations
func (d *DatabaseStore) RecordInboundMessage(ctx context.Context, msg *models.InboundMessage) error {
	err := d.db.WithContext(ctx).Create(msg).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.Conflict("message already processed")
	}
	// drivers without error translation: check for the existing row
	var count int64
	if cerr := d.db.WithContext(ctx).Model(&models.InboundMessage{}).Where("message_sid = ?", msg.MessageSID).Count(&count).Error; cerr == nil && count > 0 {
		return apperr.Conflict("message already processed")
	}
	return apperr.Persistence("failed to record inbound message", err)
}

// Ping checks the database connection
func (d *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return apperr.Persistence("failed to get database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return apperr.Persistence("database unreachable", err)
	}
	return nil
}
