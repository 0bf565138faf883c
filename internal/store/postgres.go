package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

const (
	pgUniqueViolation  = "23505"
	pgCodeUniqueIndex  = "short_urls_code_key"
	postgresSchemaStmt = `
		CREATE TABLE IF NOT EXISTS short_urls (
			id         BIGSERIAL PRIMARY KEY,
			code       VARCHAR(7) NOT NULL,
			long_url   VARCHAR(2048) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT short_urls_code_key UNIQUE (code)
		);
		CREATE INDEX IF NOT EXISTS short_urls_long_url_idx ON short_urls USING HASH (long_url);
	`
)

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the short_urls table and its indexes if missing.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresSchemaStmt)

	return err
}

// Save inserts shortURL and fills in the database-assigned ID and CreatedAt.
func (p *PostgresStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO short_urls (code, long_url)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := p.pool.QueryRow(ctx, query, string(shortURL.Code), shortURL.LongURL).
		Scan(&shortURL.ID, &shortURL.CreatedAt)
	if err != nil {
		if isPostgresCodeConflict(err) {
			return shortener.ErrCodeConflict
		}

		return err
	}

	return nil
}

func (p *PostgresStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	query := `
		SELECT id, code, long_url, created_at
		FROM short_urls
		WHERE code = $1
	`

	return p.queryOne(ctx, query, string(code))
}

func (p *PostgresStore) GetByLongURL(ctx context.Context, longURL string) (*shortener.ShortURL, error) {
	query := `
		SELECT id, code, long_url, created_at
		FROM short_urls
		WHERE long_url = $1
		ORDER BY id
		LIMIT 1
	`

	return p.queryOne(ctx, query, longURL)
}

func (p *PostgresStore) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	var exists bool

	err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM short_urls WHERE code = $1)`, string(code)).
		Scan(&exists)

	return exists, err
}

func (p *PostgresStore) queryOne(ctx context.Context, query string, arg string) (*shortener.ShortURL, error) {
	var url shortener.ShortURL

	var code string

	err := p.pool.QueryRow(ctx, query, arg).Scan(&url.ID, &code, &url.LongURL, &url.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	url.Code = shortener.Code(code)

	return &url, nil
}

func isPostgresCodeConflict(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == pgCodeUniqueIndex
}

var _ shortener.Repository = (*PostgresStore)(nil)
