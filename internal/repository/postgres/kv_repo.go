package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"sidevault/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS vault_kv (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type kvRepository struct {
	DB    *sql.DB
	quota int64
}

// NewKVRepository returns a domain.KVStore implemented with a single
// Postgres table holding one JSONB document per key. quota is the advertised
// storage quota for usage reporting.
func NewKVRepository(db *sql.DB, quota int64) domain.KVStore {
	return &kvRepository{DB: db, quota: quota}
}

// EnsureSchema creates the vault_kv table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure vault_kv schema: %w", err)
	}
	return nil
}

func (r *kvRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM vault_kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (r *kvRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO vault_kv (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value)
	return err
}

func (r *kvRepository) Remove(ctx context.Context, key string) error {
	// Removing an absent key is not an error; the caller only cares that the
	// key is gone afterwards.
	_, err := r.DB.ExecContext(ctx, `DELETE FROM vault_kv WHERE key = $1`, key)
	return err
}

func (r *kvRepository) Clear(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM vault_kv`)
	return err
}

func (r *kvRepository) Usage(ctx context.Context) (domain.StorageUsage, error) {
	var used int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(pg_column_size(value)), 0) FROM vault_kv`).Scan(&used)
	if err != nil {
		return domain.StorageUsage{}, err
	}
	return domain.StorageUsage{BytesUsed: used, Quota: r.quota}, nil
}
