package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"leadbot/core/logger"
	"log/slog"
)

// Repository persists leads in postgres.
type Repository struct {
	db *sqlx.DB
}

// NewRepository wraps an established database connection.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Record inserts the lead. Satisfies Recorder.
func (r *Repository) Record(ctx context.Context, lead Lead) error {
	start := time.Now()
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO leads (id, user_id, name, phone, email, created_at)
		VALUES (:id, :user_id, :name, :phone, :email, :created_at)`,
		lead,
	)
	if err != nil {
		logger.Error(ctx, "service.leads", "lead.insert",
			slog.String("status", "fail"),
			slog.String("lead_id", lead.ID.String()),
			slog.Int64("user_id", lead.UserID),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("leads: insert: %w", err)
	}
	logger.Info(ctx, "service.leads", "lead.insert",
		slog.String("status", "ok"),
		slog.String("lead_id", lead.ID.String()),
		slog.Int64("user_id", lead.UserID),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// Recent returns the newest leads, most recent first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 10
	}
	var out []Lead
	err := r.db.SelectContext(ctx, &out, `
		SELECT id, user_id, name, phone, email, created_at
		FROM leads
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("leads: recent: %w", err)
	}
	return out, nil
}
