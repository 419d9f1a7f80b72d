package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agrocredito/agrocredito-backend/internal/apperr"
	"github.com/agrocredito/agrocredito-backend/internal/models"
)

// MemoryStore holds all data in memory for development and tests
type MemoryStore struct {
	sessions     map[string]*models.IntakeSession
	assessments  map[string]*models.Assessment
	applications []*models.LoanApplication
	inbound      map[string]*models.InboundMessage

	// Mutexes for thread safety
	sessionMu    sync.RWMutex
	assessmentMu sync.RWMutex
	loanMu       sync.RWMutex
	inboundMu    sync.Mutex

	sessionCounter uint
	now            func() time.Time
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]*models.IntakeSession),
		assessments: make(map[string]*models.Assessment),
		inbound:     make(map[string]*models.InboundMessage),
		now:         time.Now,
	}
}

// Sessions are copied in and out so callers never share state with the store

func (m *MemoryStore) GetSession(_ context.Context, phone string) (*models.IntakeSession, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	s, exists := m.sessions[phone]
	if !exists {
		return nil, apperr.NotFound("session not found")
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) CreateSession(_ context.Context, phone string) (*models.IntakeSession, error) {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	if _, exists := m.sessions[phone]; exists {
		return nil, apperr.Conflict("session already exists")
	}

	m.sessionCounter++
	s := models.NewIntakeSession(phone)
	s.ID = m.sessionCounter
	s.Version = 1
	s.CreatedAt = m.now()
	s.UpdatedAt = s.CreatedAt

	cp := *s
	m.sessions[phone] = &cp
	return s, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, s *models.IntakeSession, expectedVersion int) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	stored, exists := m.sessions[s.Phone]
	if !exists {
		return apperr.NotFound("session not found")
	}
	if stored.Version != expectedVersion {
		return apperr.Conflict("session was modified concurrently")
	}

	stored.State = s.State
	stored.Data = s.Data
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = m.now()

	s.Version = stored.Version
	s.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MemoryStore) ListStaleSessions(_ context.Context, idleSince time.Time) ([]*models.IntakeSession, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	var stale []*models.IntakeSession
	for _, s := range m.sessions {
		if needsReminder(s, idleSince) {
			cp := *s
			stale = append(stale, &cp)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].UpdatedAt.Before(stale[j].UpdatedAt) })
	return stale, nil
}

func (m *MemoryStore) MarkReminded(_ context.Context, phone string, at time.Time) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	s, exists := m.sessions[phone]
	if !exists {
		return apperr.NotFound("session not found")
	}
	s.ReminderSentAt = &at
	return nil
}

// Assessment operations
func (m *MemoryStore) CreateAssessment(_ context.Context, a *models.Assessment) error {
	m.assessmentMu.Lock()
	defer m.assessmentMu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.CreatedAt = m.now()
	cp := *a
	m.assessments[a.ID] = &cp
	return nil
}

func (m *MemoryStore) GetAssessment(_ context.Context, id string) (*models.Assessment, error) {
	m.assessmentMu.RLock()
	defer m.assessmentMu.RUnlock()

	a, exists := m.assessments[id]
	if !exists {
		return nil, apperr.NotFound("assessment not found")
	}
	cp := *a
	return &cp, nil
}

// Loan application operations
func (m *MemoryStore) CreateLoanApplication(_ context.Context, app *models.LoanApplication) error {
	m.loanMu.Lock()
	defer m.loanMu.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.Status == "" {
		app.Status = models.LoanStatusPendingReview
	}
	app.CreatedAt = m.now()
	app.UpdatedAt = app.CreatedAt
	cp := *app
	m.applications = append(m.applications, &cp)
	return nil
}

func (m *MemoryStore) ListLoanApplications(_ context.Context, status string) ([]*models.LoanApplication, error) {
	m.loanMu.RLock()
	defer m.loanMu.RUnlock()

	var apps []*models.LoanApplication
	for i := len(m.applications) - 1; i >= 0; i-- {
		app := m.applications[i]
		if status == "" || app.Status == status {
			cp := *app
			apps = append(apps, &cp)
		}
	}
	return apps, nil
}

// Inbound message operations
func (m *MemoryStore) RecordInboundMessage(_ context.Context, msg *models.InboundMessage) error {
	m.inboundMu.Lock()
	defer m.inboundMu.Unlock()

	if _, exists := m.inbound[msg.MessageSID]; exists {
		return apperr.Conflict("message already processed")
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = m.now()
	cp := *msg
	m.inbound[msg.MessageSID] = &cp
	return nil
}

// Ping always succeeds
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}
