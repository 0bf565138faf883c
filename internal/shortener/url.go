package shortener

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// blockedSchemes are rejected as URL prefixes regardless of case.
var blockedSchemes = []string{
	"javascript:",
	"data:",
	"vbscript:",
	"file:",
	"ftp:",
}

// SanitizeURL removes every whitespace character from rawURL, including
// leading, trailing and embedded ones. Invalid UTF-8 bytes are kept as they are
// so ValidateURL can reject them.
func SanitizeURL(rawURL string) string {
	var b strings.Builder

	b.Grow(len(rawURL))

	for i := 0; i < len(rawURL); {
		r, size := utf8.DecodeRuneInString(rawURL[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteByte(rawURL[i])
		} else if !unicode.IsSpace(r) {
			b.WriteString(rawURL[i : i+size])
		}

		i += size
	}

	return b.String()
}

// ValidateURL checks that rawURL can be shortened. It returns an
// *InvalidInputError describing the first rule that failed.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &InvalidInputError{Reason: "url is required"}
	}

	if !utf8.ValidString(rawURL) {
		return &InvalidInputError{Reason: "url is not valid UTF-8"}
	}

	if utf8.RuneCountInString(rawURL) > MaxURLLength {
		return &InvalidInputError{Reason: "url is too long (maximum 2048 characters)"}
	}

	lower := strings.ToLower(rawURL)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return &InvalidInputError{Reason: "url scheme is not allowed"}
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return &InvalidInputError{Reason: "url must be an absolute http:// or https:// address"}
	}

	// Parse lowercases the scheme
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidInputError{Reason: "url must be an absolute http:// or https:// address"}
	}

	return nil
}
