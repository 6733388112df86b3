package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"formgate/internal/constants"
	pkgerrors "formgate/pkg/errors"
	"formgate/pkg/metrics"
)

type Repository interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) ([]SiteStats, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.CreatedAt = time.Now()

	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO contact_submissions (id, site_id, name, email, message, client_ip, metadata, submitted_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.ExecContext(ctx, query,
		rec.ID, rec.SiteID, rec.Name, rec.Email, rec.Message,
		rec.ClientIP, metadata, rec.SubmittedAt, rec.CreatedAt,
	)
	if err != nil {
		metrics.SubmissionsStoredTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to save submission: %w", err)
	}

	metrics.SubmissionsStoredTotal.WithLabelValues("success").Inc()
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Record, error) {
	query := `
		SELECT id, site_id, name, email, message, client_ip, metadata, submitted_at, created_at
		FROM contact_submissions
		WHERE id = $1
	`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("submission '%s' not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	return rec, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = constants.DefaultLimit
	}
	if limit > constants.MaxLimit {
		limit = constants.MaxLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT id, site_id, name, email, message, client_ip, metadata, submitted_at, created_at
		FROM contact_submissions
		WHERE ($1 = '' OR site_id = $1)
		ORDER BY submitted_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, filter.SiteID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return records, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contact_submissions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("submission '%s' not found", id))
	}

	return nil
}

func (r *PostgresRepository) Stats(ctx context.Context) ([]SiteStats, error) {
	query := `
		SELECT site_id,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE submitted_at > NOW() - INTERVAL '7 days') AS last7d
		FROM contact_submissions
		GROUP BY site_id
		ORDER BY total DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission stats: %w", err)
	}
	defer rows.Close()

	var stats []SiteStats
	for rows.Next() {
		var s SiteStats
		if err := rows.Scan(&s.SiteID, &s.Total, &s.Last7d); err != nil {
			return nil, fmt.Errorf("failed to scan submission stats: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submission stats: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var clientIP sql.NullString
	var metadata []byte

	err := row.Scan(
		&rec.ID, &rec.SiteID, &rec.Name, &rec.Email, &rec.Message,
		&clientIP, &metadata, &rec.SubmittedAt, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.ClientIP = clientIP.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &rec.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &rec, nil
}
