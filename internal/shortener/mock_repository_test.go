package shortener_test

import (
	"context"
	"errors"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/mock"
)

var errMock = errors.New("mock error")

const (
	testURL     = "https://example.com"
	testBaseURL = "http://localhost:8888"
)

// mockRepository is a testify mock of shortener.Repository.
type mockRepository struct {
	mock.Mock
}

var _ shortener.Repository = (*mockRepository)(nil)

func (m *mockRepository) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	args := m.Called(ctx, shortURL)

	return args.Error(0)
}

func (m *mockRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*shortener.ShortURL), args.Error(1)
}

func (m *mockRepository) GetByLongURL(ctx context.Context, longURL string) (*shortener.ShortURL, error) {
	args := m.Called(ctx, longURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*shortener.ShortURL), args.Error(1)
}

func (m *mockRepository) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	args := m.Called(ctx, code)

	return args.Bool(0), args.Error(1)
}

// sequenceGenerator hands out codes in order and records the attempts it was asked for.
type sequenceGenerator struct {
	codes    []shortener.Code
	attempts []int
	err      error
}

func (g *sequenceGenerator) Generate(_ string, attempt int) (shortener.Code, error) {
	if g.err != nil {
		return "", g.err
	}

	g.attempts = append(g.attempts, attempt)

	return g.codes[(len(g.attempts)-1)%len(g.codes)], nil
}
