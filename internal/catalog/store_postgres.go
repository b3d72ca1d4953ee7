package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"passgate/pkg/platform/sentinel"
)

// PostgresStore persists catalog items in PostgreSQL for deployments where
// several instances share one catalog.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed catalog store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the backing table. Idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS catalog_items (
			name        TEXT PRIMARY KEY,
			gamepass_id TEXT NOT NULL,
			file_url    TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("migrate catalog_items: %w", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, gamepass_id, file_url FROM catalog_items ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.Name, &item.GamePassID, &item.FileURL); err != nil {
			return nil, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog items: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) Get(ctx context.Context, name string) (Item, error) {
	var item Item
	err := s.db.QueryRowContext(ctx,
		`SELECT name, gamepass_id, file_url FROM catalog_items WHERE name = $1`, name).
		Scan(&item.Name, &item.GamePassID, &item.FileURL)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("get catalog item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) Put(ctx context.Context, item Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO catalog_items (name, gamepass_id, file_url) VALUES ($1, $2, $3)`,
		item.Name, item.GamePassID, item.FileURL)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("put catalog item: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, name string, upd Update) (Item, error) {
	var item Item
	err := s.db.QueryRowContext(ctx, `
		UPDATE catalog_items
		SET gamepass_id = COALESCE($2, gamepass_id),
		    file_url    = COALESCE($3, file_url)
		WHERE name = $1
		RETURNING name, gamepass_id, file_url`,
		name, nullString(upd.GamePassID), nullString(upd.FileURL)).
		Scan(&item.Name, &item.GamePassID, &item.FileURL)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("update catalog item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) Remove(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM catalog_items WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("remove catalog item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove catalog item: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
