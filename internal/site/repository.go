package site

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	pkgerrors "formgate/pkg/errors"
)

type Repository interface {
	Create(ctx context.Context, s *Site) error
	Get(ctx context.Context, id string) (*Site, error)
	List(ctx context.Context) ([]Site, error)
	Update(ctx context.Context, s *Site) error
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

const siteColumns = `id, name, secret, recipient_email, from_email, allowed_origins,
		redirect_url, enabled, created_at, updated_at`

func (r *PostgresRepository) Create(ctx context.Context, s *Site) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO sites (` + siteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Secret, s.RecipientEmail, s.FromEmail,
		pq.Array(s.AllowedOrigins), s.RedirectURL,
		s.Enabled, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("site '%s' already exists", s.ID))
		}
		return fmt.Errorf("failed to create site: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanSite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("site '%s' not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site: %w", err)
	}

	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sites: %w", err)
	}

	return sites, nil
}

func (r *PostgresRepository) Update(ctx context.Context, s *Site) error {
	s.UpdatedAt = time.Now()

	query := `
		UPDATE sites
		SET name = $2, secret = $3, recipient_email = $4, from_email = $5,
			allowed_origins = $6, redirect_url = $7, enabled = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Secret, s.RecipientEmail, s.FromEmail,
		pq.Array(s.AllowedOrigins), s.RedirectURL, s.Enabled, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update site: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("site '%s' not found", s.ID))
	}

	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete site: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("site '%s' not found", id))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSite(row rowScanner) (*Site, error) {
	var s Site
	var redirect sql.NullString
	err := row.Scan(
		&s.ID, &s.Name, &s.Secret, &s.RecipientEmail, &s.FromEmail,
		pq.Array(&s.AllowedOrigins), &redirect,
		&s.Enabled, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.RedirectURL = redirect.String
	return &s, nil
}
