package store

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// RedisCacheRepository wraps a Repository with Redis caching for reads.
// Cache failures are never surfaced; the wrapped store stays authoritative.
type RedisCacheRepository struct {
	store   shortener.Repository
	client  *redis.Client
	prefix  string
	longKey string
	ttl     time.Duration
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:   store,
		client:  client,
		prefix:  "cache:url:",
		longKey: "cache:long:",
		ttl:     ttl,
	}
}

// Save stores a short URL in the underlying store and caches it by code.
// A new mapping is not necessarily the earliest for its long URL, so the long
// URL index is left to GetByLongURL.
func (r *RedisCacheRepository) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if err := r.store.Save(ctx, shortURL); err != nil {
		return err
	}

	r.cacheURL(ctx, shortURL, false)

	return nil
}

// GetByCode retrieves a short URL by its code, checking cache first.
func (r *RedisCacheRepository) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if url, err := r.getFromCache(ctx, code); err == nil {
		return url, nil
	}

	url, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url, false)

	return url, nil
}

// GetByLongURL retrieves the earliest mapping for longURL, checking the cached index first.
func (r *RedisCacheRepository) GetByLongURL(ctx context.Context, longURL string) (*shortener.ShortURL, error) {
	code, err := r.client.Get(ctx, r.longKey+longURL).Result()
	if err == nil {
		if url, err := r.getFromCache(ctx, shortener.Code(code)); err == nil {
			return url, nil
		}
	}

	url, err := r.store.GetByLongURL(ctx, longURL)
	if err != nil {
		return nil, err
	}

	r.cacheURL(ctx, url, true)

	return url, nil
}

// ExistsByCode answers from the cache when the code is cached, otherwise from the store.
func (r *RedisCacheRepository) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	if n, err := r.client.Exists(ctx, r.prefix+string(code)).Result(); err == nil && n > 0 {
		return true, nil
	}

	return r.store.ExistsByCode(ctx, code)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return decodeShortURL(result)
}

// cacheURL stores url under its code. indexLong also records it as the answer
// for its long URL, which only lookups that know the earliest mapping may do.
func (r *RedisCacheRepository) cacheURL(ctx context.Context, url *shortener.ShortURL, indexLong bool) {
	pipe := r.client.Pipeline()
	key := r.prefix + string(url.Code)

	pipe.HSet(ctx, key, encodeShortURL(url))

	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}

	if indexLong {
		pipe.SetNX(ctx, r.longKey+url.LongURL, string(url.Code), r.ttl)
	}

	_, _ = pipe.Exec(ctx)
}

var _ shortener.Repository = (*RedisCacheRepository)(nil)
