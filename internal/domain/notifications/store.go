package notifications

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"peopledesk/internal/apperror"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// CreateWithEvent writes the in-app notification and its outbox event in one
// transaction, so a notification can never exist without a deliverable event.
func (s *Store) CreateWithEvent(ctx context.Context, n Notification, e OutboxEvent) error {
	return pgx.BeginFunc(ctx, s.DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
      INSERT INTO notifications (id, employee_id, type, subject, body, created_at)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, n.ID, n.EmployeeID, n.Type, n.Subject, n.Body, n.CreatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
      INSERT INTO outbox_events (id, employee_id, event_type, payload, status, created_at)
      VALUES ($1,$2,$3,$4,$5,$6)
    `, e.ID, e.EmployeeID, e.EventType, e.Payload, e.Status, e.CreatedAt)
		return err
	})
}

func (s *Store) ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, type, subject, body, read, created_at
    FROM notifications
    WHERE employee_id = $1
    ORDER BY created_at DESC
    LIMIT $2 OFFSET $3
  `, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Subject, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, employeeID, notificationID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read = TRUE
    WHERE id = $1 AND employee_id = $2
  `, notificationID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrNotFound
	}
	return nil
}

func (s *Store) EmployeeEmail(ctx context.Context, employeeID string) (string, error) {
	var email string
	err := s.DB.QueryRow(ctx, `SELECT email FROM employees WHERE id = $1`, employeeID).Scan(&email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return email, err
}

func (s *Store) ListPendingOutbox(ctx context.Context, limit int) ([]OutboxEvent, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, event_type, payload, status, retry_count, COALESCE(next_retry_at, created_at), created_at
    FROM outbox_events
    WHERE status IN ($1, $2)
      AND (next_retry_at IS NULL OR next_retry_at <= now())
    ORDER BY created_at
    LIMIT $3
  `, OutboxStatusPending, OutboxStatusFailed, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]OutboxEvent, 0, limit)
	for rows.Next() {
		var e OutboxEvent
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.EventType, &e.Payload, &e.Status, &e.RetryCount, &e.NextRetryAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *Store) MarkOutboxSent(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE outbox_events
    SET status = $2, processed_at = now(), error_message = NULL, updated_at = now()
    WHERE id = $1
  `, id, OutboxStatusSent)
	return err
}

func (s *Store) MarkOutboxFailed(ctx context.Context, id, reason string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE outbox_events
    SET status = $2,
        retry_count = retry_count + 1,
        error_message = LEFT($3, 500),
        next_retry_at = now() + (LEAST(retry_count + 1, 10) * INTERVAL '15 seconds'),
        updated_at = now()
    WHERE id = $1
  `, id, OutboxStatusFailed, reason)
	return err
}

// PurgeSentOutbox removes delivered events older than the cutoff.
func (s *Store) PurgeSentOutbox(ctx context.Context, cutoffDays int) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM outbox_events
    WHERE status = $1 AND processed_at < now() - $2 * INTERVAL '1 day'
  `, OutboxStatusSent, cutoffDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
