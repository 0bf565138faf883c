package shortener

import "context"

// Repository defines the persistence operations the service relies on.
// Implementations enforce short code uniqueness themselves.
type Repository interface {
	// Save stores a new mapping and fills in its ID and CreatedAt.
	// Returns ErrCodeConflict if the code is already taken.
	Save(ctx context.Context, shortURL *ShortURL) error

	// GetByCode returns the mapping for code, or ErrNotFound.
	GetByCode(ctx context.Context, code Code) (*ShortURL, error)

	// GetByLongURL returns a mapping whose long URL matches exactly, or ErrNotFound.
	GetByLongURL(ctx context.Context, longURL string) (*ShortURL, error)

	// ExistsByCode reports whether code is taken.
	ExistsByCode(ctx context.Context, code Code) (bool, error)
}
