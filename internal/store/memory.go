package store

import (
	"context"
	"sync"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byCode map[shortener.Code]*shortener.ShortURL
	byURL  map[string]shortener.Code // long url -> first code saved for it
	now    func() time.Time
}

// NewMemoryStore creates a new in-memory URL store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCode: make(map[shortener.Code]*shortener.ShortURL),
		byURL:  make(map[string]shortener.Code),
		now:    time.Now,
	}
}

// Save stores shortURL, assigning its ID and CreatedAt. Returns
// shortener.ErrCodeConflict if the code is already taken.
func (m *MemoryStore) Save(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byCode[shortURL.Code]; ok {
		return shortener.ErrCodeConflict
	}

	m.nextID++
	shortURL.ID = m.nextID
	shortURL.CreatedAt = m.now().UTC()

	stored := *shortURL
	m.byCode[shortURL.Code] = &stored

	if _, ok := m.byURL[shortURL.LongURL]; !ok {
		m.byURL[shortURL.LongURL] = shortURL.Code
	}

	return nil
}

func (m *MemoryStore) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored, ok := m.byCode[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *stored

	return &found, nil
}

func (m *MemoryStore) GetByLongURL(_ context.Context, longURL string) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.byURL[longURL]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *m.byCode[code]

	return &found, nil
}

func (m *MemoryStore) ExistsByCode(_ context.Context, code shortener.Code) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byCode[code]

	return ok, nil
}

// Len returns the number of stored mappings.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.byCode)
}

var _ shortener.Repository = (*MemoryStore)(nil)
