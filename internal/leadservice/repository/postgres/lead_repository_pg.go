package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hearthline/leadline/internal/leadservice/domain"
)

const leadColumns = `id, customer_phone, name, address, service, has_voicemail, voicemail_url, original_message, status, notes, created_at`

type PgLeadRepository struct {
	db     PgxIface
	logger *slog.Logger
}

func NewPgLeadRepository(db PgxIface, logger *slog.Logger) domain.LeadRepository {
	return &PgLeadRepository{db: db, logger: logger.With("component", "lead_repository_pg")}
}

// scanLead scans one row in leadColumns order.
func scanLead(row pgx.Row) (*domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(
		&l.ID,
		&l.CustomerPhone,
		&l.Name,
		&l.Address,
		&l.Service,
		&l.HasVoicemail,
		&l.VoicemailURL,
		&l.OriginalMessage,
		&l.Status,
		&l.Notes,
		&l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *PgLeadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	query := `
		INSERT INTO leads (id, customer_phone, name, address, service, has_voicemail, voicemail_url, original_message, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.Exec(ctx, query,
		lead.ID,
		lead.CustomerPhone,
		lead.Name,
		lead.Address,
		lead.Service,
		lead.HasVoicemail,
		lead.VoicemailURL,
		lead.OriginalMessage,
		lead.Status,
		lead.Notes,
		lead.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error inserting lead", "error", err, "lead_id", lead.ID)
		return fmt.Errorf("inserting lead %s: %w", lead.ID, err)
	}
	r.logger.InfoContext(ctx, "Lead created", "lead_id", lead.ID, "customer_phone", lead.CustomerPhone, "has_voicemail", lead.HasVoicemail)
	return nil
}

func (r *PgLeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error getting lead by ID", "error", err, "lead_id", id)
		return nil, fmt.Errorf("getting lead %s: %w", id, err)
	}
	return lead, nil
}

func (r *PgLeadRepository) ListRecent(ctx context.Context, window time.Duration) ([]*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE created_at >= $1 ORDER BY created_at DESC`
	cutoff := time.Now().UTC().Add(-window)

	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error listing recent leads", "error", err, "window", window)
		return nil, fmt.Errorf("listing recent leads: %w", err)
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning recent lead: %w", err)
		}
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recent leads: %w", err)
	}
	return leads, nil
}

func (r *PgLeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LeadStatus) (bool, error) {
	if !status.Valid() {
		return false, domain.ErrInvalidStatus
	}
	// No transition validation: any status may follow any other.
	tag, err := r.db.Exec(ctx, `UPDATE leads SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error updating lead status", "error", err, "lead_id", id, "status", status)
		return false, fmt.Errorf("updating status of lead %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Status update for unknown lead", "lead_id", id)
		return false, nil
	}
	r.logger.InfoContext(ctx, "Lead status updated", "lead_id", id, "status", status)
	return true, nil
}

func (r *PgLeadRepository) AppendNote(ctx context.Context, id uuid.UUID, text string) (bool, error) {
	// Single-statement append keeps existing notes intact; notes only ever
	// grow, there is no way to delete them.
	query := `
		UPDATE leads
		SET notes = CASE WHEN notes IS NULL OR notes = '' THEN $2 ELSE notes || E'\n' || $2 END
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, id, text)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error appending lead note", "error", err, "lead_id", id)
		return false, fmt.Errorf("appending note to lead %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgLeadRepository) SetTranscription(ctx context.Context, id uuid.UUID, text string) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE leads SET original_message = $2 WHERE id = $1`, id, text)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error setting lead transcription", "error", err, "lead_id", id)
		return false, fmt.Errorf("setting transcription on lead %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgLeadRepository) StatsForDay(ctx context.Context, now time.Time) (domain.DayStats, error) {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `SELECT status, COUNT(*) FROM leads WHERE created_at >= $1 AND created_at < $2 GROUP BY status`
	rows, err := r.db.Query(ctx, query, dayStart, dayEnd)
	if err != nil {
		r.logger.ErrorContext(ctx, "Error querying day stats", "error", err)
		return domain.DayStats{}, fmt.Errorf("querying day stats: %w", err)
	}
	defer rows.Close()

	stats := domain.NewDayStats()
	for rows.Next() {
		var status domain.LeadStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.DayStats{}, fmt.Errorf("scanning day stats row: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return domain.DayStats{}, fmt.Errorf("iterating day stats: %w", err)
	}
	return stats, nil
}

func (r *PgLeadRepository) FindRecentVoicemailLead(ctx context.Context, phone string, lookback time.Duration) (*domain.Lead, error) {
	// Newest match wins. Two voicemails from the same number inside the
	// lookback window are indistinguishable here; see the repository
	// interface doc.
	query := `SELECT ` + leadColumns + ` FROM leads
		WHERE customer_phone = $1 AND has_voicemail AND created_at >= $2
		ORDER BY created_at DESC LIMIT 1`
	cutoff := time.Now().UTC().Add(-lookback)

	lead, err := scanLead(r.db.QueryRow(ctx, query, phone, cutoff))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Error finding recent voicemail lead", "error", err, "customer_phone", phone)
		return nil, fmt.Errorf("finding recent voicemail lead for %s: %w", phone, err)
	}
	return lead, nil
}
