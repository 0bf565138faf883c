package container

import (
	"context"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/health"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/ratelimit"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

const connectTimeout = 10 * time.Second

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client used by the redis store, cache and rate limiter.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*RedisClient, error) {
		options := do.MustInvoke[*Options](i)

		client := redis.NewClient(&redis.Options{Addr: options.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("connect to redis at %s: %w", options.RedisAddr, err)
		}

		return &RedisClient{Client: client}, nil
	})
}

// PostgresPackage provides the PostgreSQL connection pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Database, error) {
		options := do.MustInvoke[*Options](i)

		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, options.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres pool: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("connect to postgres: %w", err)
		}

		return &Database{Pool: pool}, nil
	})
}

// SQLitePackage provides the SQLite database handle.
func SQLitePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*SQLite, error) {
		options := do.MustInvoke[*Options](i)

		db, err := store.OpenSQLite(options.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", options.SQLitePath, err)
		}

		return &SQLite{DB: db}, nil
	})
}

// RepositoryPackage provides the shortener.Repository for the configured backend,
// wrapped in the Redis cache when enabled.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := newRepository(i, options)
		if err != nil {
			return nil, err
		}

		if options.Cache {
			client, err := do.Invoke[*RedisClient](i)
			if err != nil {
				return nil, err
			}

			ttl := time.Duration(options.CacheTTL) * time.Second
			repo = store.NewRedisCacheRepository(repo, client.Client, ttl)

			logger.Info("redis cache enabled", zap.Duration("ttl", ttl))
		}

		logger.Info("url store ready", zap.String("backend", options.Store))

		return repo, nil
	})
}

func newRepository(i *do.Injector, options *Options) (shortener.Repository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch options.Store {
	case StoreMemory:
		return store.NewMemoryStore(), nil
	case StoreSQLite:
		db, err := do.Invoke[*SQLite](i)
		if err != nil {
			return nil, err
		}

		s := store.NewSQLiteStore(db.DB)
		if err := s.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}

		return s, nil
	case StorePostgres:
		db, err := do.Invoke[*Database](i)
		if err != nil {
			return nil, err
		}

		s := store.NewPostgresStore(db.Pool)
		if err := s.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}

		return s, nil
	case StoreRedis:
		client, err := do.Invoke[*RedisClient](i)
		if err != nil {
			return nil, err
		}

		return store.NewRedisStore(client.Client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", options.Store)
	}
}

// ShortenerPackage provides the shortening service.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		repo, err := do.Invoke[shortener.Repository](i)
		if err != nil {
			return nil, err
		}

		if options.HashSalt == "" && options.Store != StoreMemory {
			logger.Warn("no hash salt configured; using a random per-process salt, set --hash-salt for a stable deployment")
		}

		generator, err := shortener.NewGenerator(shortener.WithSalt(options.HashSalt))
		if err != nil {
			return nil, fmt.Errorf("create code generator: %w", err)
		}

		return shortener.NewService(repo, generator, options.ShortURLBase()), nil
	})
}

// RateLimitPackage provides the policy limiter backed by the configured counter store.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		options := do.MustInvoke[*Options](i)

		var counters ratelimit.Store = store.NewRateLimitMemoryStore()

		if options.RateLimitStore == StoreRedis {
			client, err := do.Invoke[*RedisClient](i)
			if err != nil {
				return nil, err
			}

			counters = store.NewRateLimitRedisStore(client.Client)
		}

		return ratelimit.NewPolicyLimiter(counters, ratelimit.DefaultPolicy()), nil
	})
}

// HealthPackage provides the health handler with a checker per configured backend.
func HealthPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*health.Handler, error) {
		options := do.MustInvoke[*Options](i)
		checkers := make(map[string]health.Checker)

		switch options.Store {
		case StorePostgres:
			db, err := do.Invoke[*Database](i)
			if err != nil {
				return nil, err
			}

			checkers["postgres"] = health.NewPostgresChecker(db.Pool)
		case StoreSQLite:
			db, err := do.Invoke[*SQLite](i)
			if err != nil {
				return nil, err
			}

			checkers["sqlite"] = health.NewSQLChecker(db.DB)
		}

		if options.usesRedis() {
			client, err := do.Invoke[*RedisClient](i)
			if err != nil {
				return nil, err
			}

			checkers["redis"] = health.NewRedisChecker(client.Client)
		}

		return health.NewHandler(checkers), nil
	})
}

// HTTPPackage provides the router and the huma API with all routes registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(chimiddleware.Recoverer)

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		service, err := do.Invoke[*shortener.Service](i)
		if err != nil {
			return nil, err
		}

		healthHandler, err := do.Invoke[*health.Handler](i)
		if err != nil {
			return nil, err
		}

		api := humachi.New(router, huma.DefaultConfig("URL Shortener", "1.0.0"))
		api.UseMiddleware(middleware.RequestLogger(logger))

		if options.RateLimit {
			limiter, err := do.Invoke[*ratelimit.PolicyLimiter](i)
			if err != nil {
				return nil, err
			}

			api.UseMiddleware(middleware.PolicyRateLimiter(
				api, limiter, ratelimit.NewOperationScopeResolver(), logger,
			))
		}

		health.RegisterRoutes(api, healthHandler)
		handlers.RegisterRoutes(api, handlers.NewURLHandler(service, logger))

		return api, nil
	})
}
