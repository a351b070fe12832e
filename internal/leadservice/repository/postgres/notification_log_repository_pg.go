package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hearthline/leadline/internal/leadservice/domain"
)

type PgNotificationLogRepository struct {
	db     PgxIface
	logger *slog.Logger
}

func NewPgNotificationLogRepository(db PgxIface, logger *slog.Logger) domain.NotificationLogRepository {
	return &PgNotificationLogRepository{db: db, logger: logger.With("component", "notification_log_repository_pg")}
}

func (r *PgNotificationLogRepository) WasRecentlyNotified(ctx context.Context, phone string, window time.Duration) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM notification_log WHERE phone_number = $1 AND texted_at >= $2)`
	cutoff := time.Now().UTC().Add(-window)

	var exists bool
	if err := r.db.QueryRow(ctx, query, phone, cutoff).Scan(&exists); err != nil {
		r.logger.ErrorContext(ctx, "Error checking notification log", "error", err, "phone_number", phone)
		return false, fmt.Errorf("checking notification log for %s: %w", phone, err)
	}
	return exists, nil
}

func (r *PgNotificationLogRepository) Record(ctx context.Context, phone string) error {
	query := `INSERT INTO notification_log (phone_number, texted_at) VALUES ($1, $2)`
	if _, err := r.db.Exec(ctx, query, phone, time.Now().UTC()); err != nil {
		r.logger.ErrorContext(ctx, "Error recording notification", "error", err, "phone_number", phone)
		return fmt.Errorf("recording notification for %s: %w", phone, err)
	}
	return nil
}
