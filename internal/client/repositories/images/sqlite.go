package images

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docarchive/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx, `SELECT data FROM images WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get image[%s]: %w", key, err)
	}
	return data, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, data []byte) error {
	query := `INSERT INTO images (key, data, size) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET data = excluded.data, size = excluded.size`

	_, err := r.db.ExecContext(ctx, query, key, data, len(data))
	if err != nil {
		return fmt.Errorf("failed to upsert image[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete image[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM images`); err != nil {
		return fmt.Errorf("failed to clear images: %w", err)
	}
	return nil
}

// TotalSize reports the number of payload bytes currently stored.
func (r *SQLiteRepository) TotalSize(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size), 0) FROM images`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to sum image sizes: %w", err)
	}
	return n, nil
}
