package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-shortener/internal/ratelimit"
)

// RegisterRoutes registers all URL shortener routes with per-endpoint rate limit configuration.
func RegisterRoutes(api huma.API, urlHandler *URLHandler) {
	// creation has its own tighter budget on top of the global one
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Creates a short URL, or returns the existing one for a URL that was already shortened.",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusCreated,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Scope: ratelimit.ScopeCreate},
		},
	}, urlHandler.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "get-url-info",
		Method:      http.MethodGet,
		Path:        "/api/{code}",
		Summary:     "Get short URL info",
		Description: "Returns the original URL and creation time without redirecting.",
		Tags:        []string{"URLs"},
	}, urlHandler.GetURLInfo)

	huma.Register(api, huma.Operation{
		OperationID:   "check-url",
		Method:        http.MethodHead,
		Path:          "/api/{code}",
		Summary:       "Check short URL exists",
		Tags:          []string{"URLs"},
		DefaultStatus: http.StatusNoContent,
	}, urlHandler.CheckURL)

	// browsers request this on every redirect; answer before it reaches /{code}
	huma.Register(api, huma.Operation{
		OperationID:   "favicon",
		Method:        http.MethodGet,
		Path:          "/favicon.ico",
		Hidden:        true,
		DefaultStatus: http.StatusNoContent,
		Metadata: map[string]any{
			ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true},
		},
	}, urlHandler.Favicon)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL associated with the short code.",
		Tags:        []string{"URLs"},
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, urlHandler.RedirectToURL)
}
