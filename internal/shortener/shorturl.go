package shortener

import "time"

const (
	// CodeLength is the exact length of every short code.
	CodeLength = 7

	// MaxURLLength is the longest long URL accepted for shortening.
	MaxURLLength = 2048

	// Alphabet holds the base-62 digits in encoding order.
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Code represents a short URL code.
type Code string

// ShortURL represents a shortened URL entity.
type ShortURL struct {
	ID        int64
	Code      Code
	LongURL   string
	CreatedAt time.Time
}

// IsValidCode reports whether code has the shape of a short code:
// exactly CodeLength characters, all of them from Alphabet.
func IsValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}

	for i := 0; i < len(code); i++ {
		if !isAlphabetChar(code[i]) {
			return false
		}
	}

	return true
}

func isAlphabetChar(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
