package apikey

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
	Create(ctx context.Context, k *Key) error
	GetByHash(ctx context.Context, hash string) (*Key, error)
	List(ctx context.Context) ([]Key, error)
	Delete(ctx context.Context, id string) error
	TouchLastUsed(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

const keyColumns = `id, name, prefix, key_hash, enabled, expires_at, last_used_at, created_at`

func (r *PostgresRepository) Create(ctx context.Context, k *Key) error {
	if k.ID == "" {
		k.ID = uuid.New().String()
	}
	k.CreatedAt = time.Now()

	query := `
		INSERT INTO api_keys (id, name, prefix, key_hash, enabled, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		k.ID, k.Name, k.Prefix, k.KeyHash, k.Enabled, k.ExpiresAt, k.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByHash(ctx context.Context, hash string) (*Key, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE key_hash = $1`

	k, err := scanKey(r.db.QueryRowContext(ctx, query, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrNotFound.WithDetail("message", "api key not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}

	return k, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Key, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list api keys: %w", err)
	}
	defer rows.Close()

	var keys []Key
	for rows.Next() {
		k, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		keys = append(keys, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate api keys: %w", err)
	}

	return keys, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return pkgerrors.ErrNotFound.WithDetail("message", fmt.Sprintf("api key '%s' not found", id))
	}

	return nil
}

func (r *PostgresRepository) TouchLastUsed(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update api key last use: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanKey(row rowScanner) (*Key, error) {
	var k Key
	var expiresAt, lastUsedAt sql.NullTime

	err := row.Scan(
		&k.ID, &k.Name, &k.Prefix, &k.KeyHash, &k.Enabled,
		&expiresAt, &lastUsedAt, &k.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expiresAt.Valid {
		k.ExpiresAt = &expiresAt.Time
	}
	if lastUsedAt.Valid {
		k.LastUsedAt = &lastUsedAt.Time
	}

	return &k, nil
}
