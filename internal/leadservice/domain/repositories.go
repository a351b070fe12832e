package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LeadRepository is the persistence contract for leads. Storage I/O failures
// propagate as errors; a missing id is reported through the boolean result
// (or ErrNotFound for GetByID), never as a panic.
type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	// ListRecent returns leads created inside the window, most recent first.
	ListRecent(ctx context.Context, window time.Duration) ([]*Lead, error)
	// UpdateStatus overwrites status unconditionally; any status may follow
	// any other. Returns false when the id does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status LeadStatus) (bool, error)
	// AppendNote concatenates text onto the existing notes with a newline
	// separator. Last-writer-wins under concurrent calls; acceptable for a
	// single operator.
	AppendNote(ctx context.Context, id uuid.UUID, text string) (bool, error)
	// SetTranscription sets original_message once the provider's async
	// transcription arrives.
	SetTranscription(ctx context.Context, id uuid.UUID, text string) (bool, error)
	// StatsForDay counts leads created on the calendar day of now, total and
	// per status, zero-filled.
	StatsForDay(ctx context.Context, now time.Time) (DayStats, error)
	// FindRecentVoicemailLead returns the most recent voicemail lead from
	// phone inside the lookback window, or ErrNotFound. Correlation by
	// phone + recency is ambiguous when the same number calls twice in the
	// window; the first (newest) match wins, matching the original intake
	// behaviour.
	FindRecentVoicemailLead(ctx context.Context, phone string, lookback time.Duration) (*Lead, error)
}

// NotificationLogRepository is the dedup log. Entries are append-only.
type NotificationLogRepository interface {
	WasRecentlyNotified(ctx context.Context, phone string, window time.Duration) (bool, error)
	Record(ctx context.Context, phone string) error
}
