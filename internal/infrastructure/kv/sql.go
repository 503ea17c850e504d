package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"FilmCatalog/internal/ports"
)

const (
	kvTable  = "catalog_kv"
	kvSchema = `CREATE TABLE IF NOT EXISTS catalog_kv (
        name    TEXT PRIMARY KEY,
        payload TEXT NOT NULL
    )`
	upsertSuffix = "ON CONFLICT (name) DO UPDATE SET payload = excluded.payload"
)

// SQLStore keeps keys in a two-column table of a relational database.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.KeyValueStore = (*SQLStore)(nil)

// OpenSQLite opens the database file at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	return newSQLStore(ctx, db, sq.Question)
}

// OpenPostgres connects with dsn and applies the schema.
func OpenPostgres(ctx context.Context, dsn string) (*SQLStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLStore(ctx, db, sq.Dollar)
}

func newSQLStore(ctx context.Context, db *sql.DB, format sq.PlaceholderFormat) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
	}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	query, args, err := s.selectQuery(key)
	if err != nil {
		return "", false, err
	}

	var value string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

// SetMany upserts every entry inside one transaction.
func (s *SQLStore) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		query, args, err := s.upsertQuery(k, entries[k])
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) selectQuery(key string) (string, []interface{}, error) {
	query, args, err := s.builder.Select("payload").From(kvTable).Where(sq.Eq{"name": key}).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build select: %w", err)
	}
	return query, args, nil
}

func (s *SQLStore) upsertQuery(key, value string) (string, []interface{}, error) {
	query, args, err := s.builder.Insert(kvTable).
		Columns("name", "payload").
		Values(key, value).
		Suffix(upsertSuffix).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build upsert: %w", err)
	}
	return query, args, nil
}
