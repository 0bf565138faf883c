package handlers

import "time"

// CreateShortURLRequest is the request body for creating a short URL.
type CreateShortURLRequest struct {
	Body struct {
		URL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"url" required:"false"`
	}
}

// CreateShortURLResponse is the response for a successfully created short URL.
type CreateShortURLResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     struct {
		Code     string `doc:"The short code"     example:"aB3xY9z"                            json:"code"`
		ShortURL string `doc:"The full short URL" example:"http://localhost:8888/aB3xY9z"      json:"shortUrl"`
		LongURL  string `doc:"The original URL"   example:"https://example.com/very/long/path" json:"longUrl"`
	}
}

// CodeRequest addresses a short URL by its code.
type CodeRequest struct {
	Code string `doc:"The short code" example:"aB3xY9z" path:"code"`
}

// RedirectResponse sends the client to the original URL.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// URLInfoResponse describes a stored short URL without redirecting.
type URLInfoResponse struct {
	Body struct {
		Code      string    `doc:"The short code"              example:"aB3xY9z"                            json:"code"`
		LongURL   string    `doc:"The original URL"            example:"https://example.com/very/long/path" json:"longUrl"`
		CreatedAt time.Time `doc:"When the short URL was made" json:"createdAt"`
	}
}
