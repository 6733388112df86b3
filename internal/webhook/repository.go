package webhook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgerrors "formgate/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, w *Webhook) error
	Get(ctx context.Context, id string) (*Webhook, error)
	List(ctx context.Context, siteID string) ([]Webhook, error)
	ListEnabled(ctx context.Context, siteID string) ([]Webhook, error)
	Update(ctx context.Context, w *Webhook) error
	Delete(ctx context.Context, id string) error
	RecordDelivery(ctx context.Context, id string, success bool, deliveryErr string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

const webhookColumns = `id, site_id, url, enabled, last_triggered_at, last_success, last_error, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, w *Webhook) error {
	if w.ID == "" {
		w.ID = uuid.New().String()
	}
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	query := `
		INSERT INTO webhooks (id, site_id, url, enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.SiteID, w.URL, w.Enabled, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = $1`

	w, err := scanWebhook(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("webhook '%s' not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}

	return w, nil
}

func (r *PostgresRepository) List(ctx context.Context, siteID string) ([]Webhook, error) {
	query := `
		SELECT ` + webhookColumns + `
		FROM webhooks
		WHERE ($1 = '' OR site_id = $1)
		ORDER BY created_at DESC
	`
	return r.queryWebhooks(ctx, query, siteID)
}

func (r *PostgresRepository) ListEnabled(ctx context.Context, siteID string) ([]Webhook, error) {
	query := `
		SELECT ` + webhookColumns + `
		FROM webhooks
		WHERE site_id = $1 AND enabled
		ORDER BY created_at
	`
	return r.queryWebhooks(ctx, query, siteID)
}

func (r *PostgresRepository) queryWebhooks(ctx context.Context, query, siteID string) ([]Webhook, error) {
	rows, err := r.db.QueryContext(ctx, query, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan webhook: %w", err)
		}
		webhooks = append(webhooks, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhooks: %w", err)
	}

	return webhooks, nil
}

func (r *PostgresRepository) Update(ctx context.Context, w *Webhook) error {
	w.UpdatedAt = time.Now()

	query := `
		UPDATE webhooks
		SET url = $2, enabled = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, w.ID, w.URL, w.Enabled, w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update webhook: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("webhook '%s' not found", w.ID))
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("webhook '%s' not found", id))
	}

	return nil
}

func (r *PostgresRepository) RecordDelivery(ctx context.Context, id string, success bool, deliveryErr string) error {
	query := `
		UPDATE webhooks
		SET last_triggered_at = $2, last_success = $3, last_error = $4
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, id, time.Now(), success, deliveryErr)
	if err != nil {
		return fmt.Errorf("failed to record webhook delivery: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWebhook(row rowScanner) (*Webhook, error) {
	var w Webhook
	var triggeredAt sql.NullTime
	var lastSuccess sql.NullBool
	var lastError sql.NullString

	err := row.Scan(
		&w.ID, &w.SiteID, &w.URL, &w.Enabled,
		&triggeredAt, &lastSuccess, &lastError,
		&w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if triggeredAt.Valid {
		w.LastTriggeredAt = &triggeredAt.Time
	}
	if lastSuccess.Valid {
		w.LastSuccess = &lastSuccess.Bool
	}
	w.LastError = lastError.String

	return &w, nil
}
