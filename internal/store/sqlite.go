package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/serroba/url-shortener/internal/shortener"
)

const sqliteSchemaStmt = `
	CREATE TABLE IF NOT EXISTS short_urls (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		code       TEXT NOT NULL UNIQUE,
		long_url   TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS short_urls_long_url_idx ON short_urls (long_url);
`

// SQLiteStore is a SQLite implementation of shortener.Repository for single-node deployments.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the SQLite database at path. Use ":memory:" for an ephemeral database.
func OpenSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	return db, nil
}

// NewSQLiteStore creates a new SQLite-backed URL store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Migrate creates the short_urls table and its indexes if missing.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteSchemaStmt)

	return err
}

func (s *SQLiteStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	createdAt := s.now().UTC()

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO short_urls (code, long_url, created_at) VALUES (?, ?, ?)",
		string(shortURL.Code), shortURL.LongURL, createdAt.UnixMicro(),
	)
	if err != nil {
		if isSQLiteCodeConflict(err) {
			return shortener.ErrCodeConflict
		}

		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	shortURL.ID = id
	shortURL.CreatedAt = time.UnixMicro(createdAt.UnixMicro()).UTC()

	return nil
}

func (s *SQLiteStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return s.queryOne(ctx,
		"SELECT id, code, long_url, created_at FROM short_urls WHERE code = ?",
		string(code),
	)
}

func (s *SQLiteStore) GetByLongURL(ctx context.Context, longURL string) (*shortener.ShortURL, error) {
	return s.queryOne(ctx,
		"SELECT id, code, long_url, created_at FROM short_urls WHERE long_url = ? ORDER BY id LIMIT 1",
		longURL,
	)
}

func (s *SQLiteStore) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	var exists bool

	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM short_urls WHERE code = ?)", string(code),
	).Scan(&exists)

	return exists, err
}

func (s *SQLiteStore) queryOne(ctx context.Context, query string, arg string) (*shortener.ShortURL, error) {
	var (
		url       shortener.ShortURL
		code      string
		createdAt int64
	)

	err := s.db.QueryRowContext(ctx, query, arg).Scan(&url.ID, &code, &url.LongURL, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	url.Code = shortener.Code(code)
	url.CreatedAt = time.UnixMicro(createdAt).UTC()

	return &url, nil
}

func isSQLiteCodeConflict(err error) bool {
	var sqliteErr sqlite3.Error

	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

var _ shortener.Repository = (*SQLiteStore)(nil)
