package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/hearthline/leadline/internal/leadservice/domain"
)

// --- Mocks ---

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) ListRecent(ctx context.Context, window time.Duration) ([]*domain.Lead, error) {
	args := m.Called(ctx, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (bool, error) {
	args := m.Called(ctx, id, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) AppendNote(ctx context.Context, id uuid.UUID, text string) (bool, error) {
	args := m.Called(ctx, id, text)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) SetTranscription(ctx context.Context, id uuid.UUID, text string) (bool, error) {
	args := m.Called(ctx, id, text)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) StatsForDay(ctx context.Context, now time.Time) (domain.DayStats, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(domain.DayStats), args.Error(1)
}

func (m *MockLeadRepository) FindRecentVoicemailLead(ctx context.Context, phone string, lookback time.Duration) (*domain.Lead, error) {
	args := m.Called(ctx, phone, lookback)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lead), args.Error(1)
}

type MockNotificationLogRepository struct {
	mock.Mock
}

func (m *MockNotificationLogRepository) WasRecentlyNotified(ctx context.Context, phone string, window time.Duration) (bool, error) {
	args := m.Called(ctx, phone, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationLogRepository) Record(ctx context.Context, phone string) error {
	args := m.Called(ctx, phone)
	return args.Error(0)
}

// memNotificationLog is a real in-memory notification log, for tests that
// drive a sequence of events where the stored state matters.
type memNotificationLog struct {
	texted map[string]time.Time
}

func newMemNotificationLog() *memNotificationLog {
	return &memNotificationLog{texted: make(map[string]time.Time)}
}

func (l *memNotificationLog) WasRecentlyNotified(_ context.Context, phone string, window time.Duration) (bool, error) {
	at, ok := l.texted[phone]
	return ok && time.Since(at) < window, nil
}

func (l *memNotificationLog) Record(_ context.Context, phone string) error {
	l.texted[phone] = time.Now().UTC()
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
