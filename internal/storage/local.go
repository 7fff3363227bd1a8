package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const localSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	device_id  TEXT NOT NULL,
	data       BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (collection, device_id)
);
`

// Local is the sqlite-backed fallback store, used when no remote database is
// configured.
type Local struct {
	db *sqlx.DB
}

// OpenLocal opens (creating if needed) the sqlite database at path.
func OpenLocal(path string) (*Local, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	return &Local{db: db}, nil
}

func (s *Local) Load(ctx context.Context, collection, deviceID string) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data,
		`SELECT data FROM documents WHERE collection = ? AND device_id = ?`,
		collection, deviceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	return data, nil
}

func (s *Local) Save(ctx context.Context, collection, deviceID string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, device_id, data, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (collection, device_id)
		 DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		collection, deviceID, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (s *Local) Delete(ctx context.Context, collection, deviceID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = ? AND device_id = ?`,
		collection, deviceID,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	return nil
}

func (s *Local) Keys(ctx context.Context, collection string) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		`SELECT device_id FROM documents WHERE collection = ? ORDER BY device_id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s keys: %w", collection, err)
	}
	return keys, nil
}

func (s *Local) Close() error {
	return s.db.Close()
}
