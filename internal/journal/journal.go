package journal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Delivery kinds and statuses.
const (
	KindText = "text"
	KindPoll = "poll"

	StatusSent   = "sent"
	StatusFailed = "failed"
)

// Delivery records one delivery attempt to the bound destination.
type Delivery struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	Kind      string `db:"kind"`
	ChatID    int64  `db:"chat_id"`
	ThreadID  int64  `db:"thread_id"`
	Parts     int    `db:"parts"`
	TaskCount int    `db:"task_count"`
	Status    string `db:"status"`
	Detail    string `db:"detail"`
}

// Store defines the journal's data access interface.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// RecordDelivery inserts a delivery attempt record.
	RecordDelivery(ctx context.Context, d *Delivery) error

	// RecentDeliveries retrieves the most recent 'limit' delivery records,
	// newest first.
	RecentDeliveries(ctx context.Context, limit int) ([]Delivery, error)
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "journal"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) RecordDelivery(ctx context.Context, d *Delivery) error {
	if d == nil {
		return fmt.Errorf("cannot record nil delivery")
	}
	if d.Kind != KindText && d.Kind != KindPoll {
		return fmt.Errorf("invalid delivery kind %q", d.Kind)
	}
	if d.Status != StatusSent && d.Status != StatusFailed {
		return fmt.Errorf("invalid delivery status %q", d.Status)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO deliveries (created_at, kind, chat_id, thread_id, parts, task_count, status, detail)
        VALUES (:created_at, :kind, :chat_id, :thread_id, :parts, :task_count, :status, :detail);
    `

	result, err := s.db.NamedExecContext(ctx, query, d)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error recording delivery", "chat_id", d.ChatID, "kind", d.Kind, "error", err)
		return fmt.Errorf("failed to record delivery: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		d.ID = uint(id) //nolint:gosec // journal ids stay far below overflow
	}

	return nil
}

func (s *sqlxStore) RecentDeliveries(ctx context.Context, limit int) ([]Delivery, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var deliveries []Delivery
	query := `SELECT * FROM deliveries ORDER BY created_at DESC, id DESC LIMIT ?;`
	if err := s.db.SelectContext(ctx, &deliveries, query, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error fetching recent deliveries", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to fetch recent deliveries: %w", err)
	}

	return deliveries, nil
}
