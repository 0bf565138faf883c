package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxCollisionRetries is the number of codes tried before giving up.
const MaxCollisionRetries = 5

// CreateResult is returned after a long URL has been shortened.
type CreateResult struct {
	Code     Code
	ShortURL string
	LongURL  string
}

// LookupResult is returned when a short code is resolved.
type LookupResult struct {
	Code      Code
	LongURL   string
	CreatedAt time.Time
}

// Service creates and resolves short URLs.
type Service struct {
	store     Repository
	generator CodeGenerator
	baseURL   string
}

// NewService creates a new shortening service. baseURL prefixes every short URL.
func NewService(store Repository, generator CodeGenerator, baseURL string) *Service {
	return &Service{
		store:     store,
		generator: generator,
		baseURL:   strings.TrimRight(baseURL, "/"),
	}
}

// Create shortens rawURL, reusing an existing mapping for the same long URL when one exists.
func (s *Service) Create(ctx context.Context, rawURL string) (*CreateResult, error) {
	longURL := SanitizeURL(rawURL)
	if err := ValidateURL(longURL); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByLongURL(ctx, longURL)
	if err == nil {
		return s.createResult(existing), nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, &PersistenceError{Op: "find by long url", Err: err}
	}

	for attempt := range MaxCollisionRetries {
		code, err := s.generator.Generate(longURL, attempt)
		if err != nil {
			return nil, fmt.Errorf("generate short code: %w", err)
		}

		shortURL := &ShortURL{
			Code:    code,
			LongURL: longURL,
		}

		err = s.store.Save(ctx, shortURL)
		if err == nil {
			return s.createResult(shortURL), nil
		}

		if !errors.Is(err, ErrCodeConflict) {
			return nil, &PersistenceError{Op: "save short url", Err: err}
		}
	}

	return nil, ErrRetryExhausted
}

// Get resolves code to its stored mapping.
func (s *Service) Get(ctx context.Context, code string) (*LookupResult, error) {
	if !IsValidCode(code) {
		return nil, &InvalidInputError{Reason: "invalid short code format"}
	}

	shortURL, err := s.store.GetByCode(ctx, Code(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Code: Code(code)}
		}

		return nil, &PersistenceError{Op: "find by code", Err: err}
	}

	return &LookupResult{
		Code:      shortURL.Code,
		LongURL:   shortURL.LongURL,
		CreatedAt: shortURL.CreatedAt,
	}, nil
}

// GetLongURL resolves code to the long URL only, for redirects.
func (s *Service) GetLongURL(ctx context.Context, code string) (string, error) {
	result, err := s.Get(ctx, code)
	if err != nil {
		return "", err
	}

	return result.LongURL, nil
}

// Exists reports whether code is mapped to a long URL.
func (s *Service) Exists(ctx context.Context, code string) (bool, error) {
	if !IsValidCode(code) {
		return false, &InvalidInputError{Reason: "invalid short code format"}
	}

	exists, err := s.store.ExistsByCode(ctx, Code(code))
	if err != nil {
		return false, &PersistenceError{Op: "exists by code", Err: err}
	}

	return exists, nil
}

func (s *Service) createResult(shortURL *ShortURL) *CreateResult {
	return &CreateResult{
		Code:     shortURL.Code,
		ShortURL: fmt.Sprintf("%s/%s", s.baseURL, shortURL.Code),
		LongURL:  shortURL.LongURL,
	}
}
