package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/url-shortener/internal/handlers"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testURL     = "https://example.com/very/long/path"
	testBaseURL = "http://localhost:8888"
)

var errMock = errors.New("mock error")

// mockShortener is a test double for handlers.Shortener that returns configured errors.
type mockShortener struct {
	createErr error
	getErr    error
	existsErr error
	exists    bool
}

func (m *mockShortener) Create(_ context.Context, _ string) (*shortener.CreateResult, error) {
	return nil, m.createErr
}

func (m *mockShortener) Get(_ context.Context, _ string) (*shortener.LookupResult, error) {
	return nil, m.getErr
}

func (m *mockShortener) GetLongURL(_ context.Context, _ string) (string, error) {
	return "", m.getErr
}

func (m *mockShortener) Exists(_ context.Context, _ string) (bool, error) {
	return m.exists, m.existsErr
}

type createBody struct {
	Code     string `json:"code"`
	ShortURL string `json:"shortUrl"`
	LongURL  string `json:"longUrl"`
}

func newRouter(t *testing.T, service handlers.Shortener) *chi.Mux {
	t.Helper()

	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	handlers.RegisterRoutes(api, handlers.NewURLHandler(service, zap.NewNop()))

	return router
}

func newMemoryRouter(t *testing.T) *chi.Mux {
	t.Helper()

	gen, err := shortener.NewGenerator(shortener.WithSalt("test"))
	require.NoError(t, err)

	return newRouter(t, shortener.NewService(store.NewMemoryStore(), gen, testBaseURL))
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func shorten(t *testing.T, router http.Handler, url string) createBody {
	t.Helper()

	w := do(router, http.MethodPost, "/shorten", `{"url":"`+url+`"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var body createBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func TestCreateShortURL(t *testing.T) {
	t.Run("creates short url", func(t *testing.T) {
		router := newMemoryRouter(t)

		w := do(router, http.MethodPost, "/shorten", `{"url":"`+testURL+`"}`)

		require.Equal(t, http.StatusCreated, w.Code)

		var body createBody
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

		assert.True(t, shortener.IsValidCode(body.Code))
		assert.Equal(t, testBaseURL+"/"+body.Code, body.ShortURL)
		assert.Equal(t, testURL, body.LongURL)
		assert.Equal(t, body.ShortURL, w.Header().Get("Location"))
	})

	t.Run("same url returns same code", func(t *testing.T) {
		router := newMemoryRouter(t)

		first := shorten(t, router, testURL)
		second := shorten(t, router, "  "+testURL+"  ")

		assert.Equal(t, first.Code, second.Code)
	})

	t.Run("rejects invalid urls with 400", func(t *testing.T) {
		router := newMemoryRouter(t)

		for _, url := range []string{"", "not-a-url", "javascript:alert(1)", "ftp://example.com/file"} {
			w := do(router, http.MethodPost, "/shorten", `{"url":"`+url+`"}`)

			assert.Equal(t, http.StatusBadRequest, w.Code, "url %q", url)
		}
	})

	t.Run("missing url field is a 400 from url validation", func(t *testing.T) {
		router := newMemoryRouter(t)

		w := do(router, http.MethodPost, "/shorten", `{}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "url is required")
	})

	t.Run("malformed body is still rejected by the schema", func(t *testing.T) {
		router := newMemoryRouter(t)

		w := do(router, http.MethodPost, "/shorten", `{"url":42}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects a port without a hostname", func(t *testing.T) {
		router := newMemoryRouter(t)

		w := do(router, http.MethodPost, "/shorten", `{"url":"https://:80"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("retry exhaustion returns 503", func(t *testing.T) {
		router := newRouter(t, &mockShortener{createErr: shortener.ErrRetryExhausted})

		w := do(router, http.MethodPost, "/shorten", `{"url":"`+testURL+`"}`)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("store failure returns 500 without details", func(t *testing.T) {
		router := newRouter(t, &mockShortener{
			createErr: &shortener.PersistenceError{Op: "save short url", Err: errMock},
		})

		w := do(router, http.MethodPost, "/shorten", `{"url":"`+testURL+`"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), errMock.Error())
	})
}

func TestRedirectToURL(t *testing.T) {
	t.Run("redirects with 301", func(t *testing.T) {
		router := newMemoryRouter(t)
		created := shorten(t, router, testURL)

		w := do(router, http.MethodGet, "/"+created.Code, "")

		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, testURL, w.Header().Get("Location"))
	})

	t.Run("unknown code returns 404", func(t *testing.T) {
		router := newMemoryRouter(t)

		w := do(router, http.MethodGet, "/zzzzzzz", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed code returns 400", func(t *testing.T) {
		router := newMemoryRouter(t)

		for _, code := range []string{"abc", "abcdefgh", "abc-123"} {
			w := do(router, http.MethodGet, "/"+code, "")

			assert.Equal(t, http.StatusBadRequest, w.Code, "code %q", code)
		}
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		router := newRouter(t, &mockShortener{getErr: &shortener.PersistenceError{Op: "find by code", Err: errMock}})

		w := do(router, http.MethodGet, "/abc1234", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetURLInfo(t *testing.T) {
	t.Run("returns stored mapping", func(t *testing.T) {
		router := newMemoryRouter(t)
		created := shorten(t, router, testURL)

		w := do(router, http.MethodGet, "/api/"+created.Code, "")

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Code      string `json:"code"`
			LongURL   string `json:"longUrl"`
			CreatedAt string `json:"createdAt"`
		}

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, created.Code, body.Code)
		assert.Equal(t, testURL, body.LongURL)
		assert.NotEmpty(t, body.CreatedAt)
	})

	t.Run("unknown code returns 404", func(t *testing.T) {
		router := newMemoryRouter(t)

		w := do(router, http.MethodGet, "/api/zzzzzzz", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCheckURL(t *testing.T) {
	t.Run("existing code returns 204", func(t *testing.T) {
		router := newMemoryRouter(t)
		created := shorten(t, router, testURL)

		w := do(router, http.MethodHead, "/api/"+created.Code, "")

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("unknown code returns 404", func(t *testing.T) {
		router := newRouter(t, &mockShortener{exists: false})

		w := do(router, http.MethodHead, "/api/zzzzzzz", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("store failure returns 500", func(t *testing.T) {
		router := newRouter(t, &mockShortener{existsErr: errMock})

		w := do(router, http.MethodHead, "/api/abc1234", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestFavicon(t *testing.T) {
	router := newRouter(t, &mockShortener{getErr: errMock})

	w := do(router, http.MethodGet, "/favicon.ico", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
}
