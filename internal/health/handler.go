package health

import (
	"context"
	"database/sql"
	"maps"
	"net/http"
	"slices"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
	healthy        = "healthy"
	unhealthy      = "unhealthy"

	checkTimeout = 2 * time.Second
)

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// PostgresChecker adapts pgxpool.Pool to Checker interface.
type PostgresChecker struct {
	pool *pgxpool.Pool
}

// NewPostgresChecker creates a new PostgreSQL health checker.
func NewPostgresChecker(pool *pgxpool.Pool) *PostgresChecker {
	return &PostgresChecker{pool: pool}
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresChecker) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// SQLChecker adapts a database/sql handle, such as SQLite, to Checker interface.
type SQLChecker struct {
	db *sql.DB
}

// NewSQLChecker creates a new database/sql health checker.
func NewSQLChecker(db *sql.DB) *SQLChecker {
	return &SQLChecker{db: db}
}

// Ping checks database connectivity.
func (s *SQLChecker) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Handler reports the health of the service and each named dependency.
type Handler struct {
	checkers map[string]Checker
	now      func() time.Time
}

// NewHandler creates a new health handler. checkers may be empty when the
// service runs without external dependencies.
func NewHandler(checkers map[string]Checker) *Handler {
	return &Handler{checkers: checkers, now: time.Now}
}

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status    string            `doc:"ok, or degraded when a dependency is unhealthy" json:"status"`
		Timestamp time.Time         `doc:"Time of the check"                              json:"timestamp"`
		Checks    map[string]string `doc:"Health of each dependency"                      json:"checks,omitempty"`
	}
}

// Check performs a health check of the application and its dependencies.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = statusOK
	resp.Body.Timestamp = h.now().UTC()

	if len(h.checkers) == 0 {
		return resp, nil
	}

	resp.Body.Checks = make(map[string]string, len(h.checkers))

	for _, name := range slices.Sorted(maps.Keys(h.checkers)) {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := h.checkers[name].Ping(checkCtx)

		cancel()

		if err != nil {
			resp.Body.Checks[name] = unhealthy
			resp.Body.Status = statusDegraded

			continue
		}

		resp.Body.Checks[name] = healthy
	}

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, h.Check)
}
