package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/andres10976/poop-monitor/internal/model"
)

// execer is the subset of pgxpool.Pool the repository needs.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AlertRepository appends alert attempts to the alert_events journal.
// Nothing reads the journal back at startup.
type AlertRepository struct {
	db execer
}

func NewAlertRepository(db execer) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Record(ctx context.Context, evt *model.AlertEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO alert_events (id, attempted_at, elapsed_ms, delivered, status_code, error)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		evt.ID, evt.AttemptedAt, evt.Elapsed.Milliseconds(),
		evt.Delivered, evt.StatusCode, evt.Error,
	)
	return err
}
