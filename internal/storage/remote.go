package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Remote is the hosted-table store, selected when DATABASE_URL is configured.
type Remote struct {
	db *sqlx.DB
}

// OpenRemote connects to Postgres and applies pending migrations.
func OpenRemote(databaseURL string) (*Remote, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	if err := migrateUp(db.DB); err != nil {
		db.Close()
		return nil, err
	}

	return &Remote{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *Remote) Load(ctx context.Context, collection, deviceID string) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data,
		`SELECT data FROM documents WHERE collection = $1 AND device_id = $2`,
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

func (s *Remote) Save(ctx context.Context, collection, deviceID string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, device_id, data, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (collection, device_id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		collection, deviceID, string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", collection, err)
	}
	return nil
}

func (s *Remote) Delete(ctx context.Context, collection, deviceID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND device_id = $2`,
		collection, deviceID,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	return nil
}

func (s *Remote) Keys(ctx context.Context, collection string) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		`SELECT device_id FROM documents WHERE collection = $1 ORDER BY device_id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s keys: %w", collection, err)
	}
	return keys, nil
}

func (s *Remote) Close() error {
	return s.db.Close()
}
