package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/middleware"
	"github.com/serroba/url-shortener/internal/shortener"
	"go.uber.org/zap"
)

// Shortener is the URL shortening service used by URLHandler.
type Shortener interface {
	Create(ctx context.Context, rawURL string) (*shortener.CreateResult, error)
	Get(ctx context.Context, code string) (*shortener.LookupResult, error)
	GetLongURL(ctx context.Context, code string) (string, error)
	Exists(ctx context.Context, code string) (bool, error)
}

// URLHandler handles URL shortening operations.
type URLHandler struct {
	service Shortener
	logger  *zap.Logger
}

// NewURLHandler creates a new URL handler.
func NewURLHandler(service Shortener, logger *zap.Logger) *URLHandler {
	return &URLHandler{
		service: service,
		logger:  logger,
	}
}

func (h *URLHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	result, err := h.service.Create(ctx, req.Body.URL)
	if err != nil {
		return nil, h.httpError(ctx, "create short url", err)
	}

	h.logger.Info("short url created",
		zap.String("code", string(result.Code)),
		zap.String("long_url", result.LongURL),
		zap.String("request_id", middleware.RequestIDFromContext(ctx)),
	)

	resp := &CreateShortURLResponse{}
	resp.Location = result.ShortURL
	resp.Body.Code = string(result.Code)
	resp.Body.ShortURL = result.ShortURL
	resp.Body.LongURL = result.LongURL

	return resp, nil
}

func (h *URLHandler) RedirectToURL(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	longURL, err := h.service.GetLongURL(ctx, req.Code)
	if err != nil {
		return nil, h.httpError(ctx, "redirect", err)
	}

	return &RedirectResponse{
		Status:   http.StatusMovedPermanently,
		Location: longURL,
	}, nil
}

func (h *URLHandler) GetURLInfo(ctx context.Context, req *CodeRequest) (*URLInfoResponse, error) {
	result, err := h.service.Get(ctx, req.Code)
	if err != nil {
		return nil, h.httpError(ctx, "get url info", err)
	}

	resp := &URLInfoResponse{}
	resp.Body.Code = string(result.Code)
	resp.Body.LongURL = result.LongURL
	resp.Body.CreatedAt = result.CreatedAt

	return resp, nil
}

// CheckURL answers HEAD requests with 204 when the code exists and 404 otherwise.
func (h *URLHandler) CheckURL(ctx context.Context, req *CodeRequest) (*struct{}, error) {
	exists, err := h.service.Exists(ctx, req.Code)
	if err != nil {
		return nil, h.httpError(ctx, "check url", err)
	}

	if !exists {
		return nil, huma.Error404NotFound("short url not found")
	}

	return nil, nil
}

func (h *URLHandler) Favicon(_ context.Context, _ *struct{}) (*struct{}, error) {
	return nil, nil
}

// httpError maps service errors to HTTP errors. Unexpected errors are logged and hidden from the client.
func (h *URLHandler) httpError(ctx context.Context, op string, err error) error {
	var invalid *shortener.InvalidInputError
	if errors.As(err, &invalid) {
		return huma.Error400BadRequest(invalid.Reason)
	}

	if errors.Is(err, shortener.ErrNotFound) {
		return huma.Error404NotFound("short url not found")
	}

	fields := []zap.Field{
		zap.String("op", op),
		zap.String("request_id", middleware.RequestIDFromContext(ctx)),
		zap.Error(err),
	}

	if errors.Is(err, shortener.ErrRetryExhausted) {
		h.logger.Warn("short code space congested", fields...)

		return huma.Error503ServiceUnavailable("could not allocate a short code, please retry")
	}

	h.logger.Error("request failed", fields...)

	return huma.Error500InternalServerError("internal server error")
}
