package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/url-shortener/internal/shortener"
)

// saveScript creates the code record and the long-url index entry in one step.
// KEYS: code key, sequence key, long-url index. ARGV: code, long url, created_at.
// Returns the new id, or 0 when the code is taken.
var saveScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
local id = redis.call("INCR", KEYS[2])
redis.call("HSET", KEYS[1], "id", id, "code", ARGV[1], "long_url", ARGV[2], "created_at", ARGV[3])
redis.call("HSETNX", KEYS[3], ARGV[2], ARGV[1])
return id
`)

// RedisStore is a Redis implementation of shortener.Repository.
type RedisStore struct {
	client  *redis.Client
	prefix  string // "shorturl:code:" for code -> record (hash)
	seqKey  string // "shorturl:seq" for id allocation
	longKey string // "shorturl:long" for long url -> first code (hash)
	now     func() time.Time
}

// NewRedisStore creates a new Redis-backed URL store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		prefix:  "shorturl:code:",
		seqKey:  "shorturl:seq",
		longKey: "shorturl:long",
		now:     time.Now,
	}
}

func (r *RedisStore) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	createdAt := time.UnixMicro(r.now().UnixMicro()).UTC()

	id, err := saveScript.Run(ctx, r.client,
		[]string{r.prefix + string(shortURL.Code), r.seqKey, r.longKey},
		string(shortURL.Code), shortURL.LongURL, createdAt.UnixMicro(),
	).Int64()
	if err != nil {
		return err
	}

	if id == 0 {
		return shortener.ErrCodeConflict
	}

	shortURL.ID = id
	shortURL.CreatedAt = createdAt

	return nil
}

func (r *RedisStore) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	return decodeShortURL(result)
}

func (r *RedisStore) GetByLongURL(ctx context.Context, longURL string) (*shortener.ShortURL, error) {
	code, err := r.client.HGet(ctx, r.longKey, longURL).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return r.GetByCode(ctx, shortener.Code(code))
}

func (r *RedisStore) ExistsByCode(ctx context.Context, code shortener.Code) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}

// decodeShortURL turns a stored hash back into a ShortURL.
func decodeShortURL(fields map[string]string) (*shortener.ShortURL, error) {
	url := &shortener.ShortURL{
		Code:    shortener.Code(fields["code"]),
		LongURL: fields["long_url"],
	}

	if raw, ok := fields["id"]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}

		url.ID = id
	}

	if raw, ok := fields["created_at"]; ok {
		micros, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}

		url.CreatedAt = time.UnixMicro(micros).UTC()
	}

	return url, nil
}

func encodeShortURL(url *shortener.ShortURL) map[string]any {
	return map[string]any{
		"id":         url.ID,
		"code":       string(url.Code),
		"long_url":   url.LongURL,
		"created_at": url.CreatedAt.UnixMicro(),
	}
}

var _ shortener.Repository = (*RedisStore)(nil)
