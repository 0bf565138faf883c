package shortener

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jaevor/go-nanoid"
)

const (
	nonceSize     = 4
	hashPrefixLen = 12
	saltLength    = 21
)

// CodeGenerator produces a candidate short code for a long URL and attempt number.
type CodeGenerator interface {
	Generate(longURL string, attempt int) (Code, error)
}

// Generator derives short codes by hashing the long URL together with the attempt
// number, the current time and a random nonce, then encoding the hash prefix in base 62.
// Repeated calls for the same input produce different codes.
type Generator struct {
	salt   string
	now    func() time.Time
	random io.Reader
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithSalt sets the namespace salt mixed into every hash. An empty salt is ignored.
func WithSalt(salt string) GeneratorOption {
	return func(g *Generator) {
		if salt != "" {
			g.salt = salt
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

// WithRandom replaces the entropy source used for nonces and padding.
func WithRandom(r io.Reader) GeneratorOption {
	return func(g *Generator) {
		g.random = r
	}
}

// NewGenerator creates a Generator. Without WithSalt a random salt is generated.
func NewGenerator(opts ...GeneratorOption) (*Generator, error) {
	g := &Generator{
		now:    time.Now,
		random: rand.Reader,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.salt == "" {
		newSalt, err := nanoid.Standard(saltLength)
		if err != nil {
			return nil, fmt.Errorf("create salt generator: %w", err)
		}

		g.salt = newSalt()
	}

	return g, nil
}

// Generate returns a CodeLength character code for longURL. The only failure is
// an error from the entropy source.
func (g *Generator) Generate(longURL string, attempt int) (Code, error) {
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(g.random, nonce); err != nil {
		return "", fmt.Errorf("read nonce: %w", err)
	}

	input := fmt.Sprintf("%s:%s-%d-%d-%s",
		g.salt, longURL, attempt, g.now().UnixMilli(), hex.EncodeToString(nonce))

	sum := sha256.Sum256([]byte(input))

	n, err := strconv.ParseUint(hex.EncodeToString(sum[:])[:hashPrefixLen], 16, 64)
	if err != nil {
		return "", fmt.Errorf("parse hash prefix: %w", err)
	}

	code, err := fitLength(toBase62(n), CodeLength, g.random)
	if err != nil {
		return "", err
	}

	return Code(code), nil
}

// toBase62 encodes n using Alphabet, most significant digit first.
func toBase62(n uint64) string {
	if n == 0 {
		return Alphabet[:1]
	}

	// 11 digits hold any uint64
	var buf [11]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = Alphabet[n%uint64(len(Alphabet))]
		n /= uint64(len(Alphabet))
	}

	return string(buf[i:])
}

// fitLength truncates s to length, or right-pads it with random Alphabet characters.
func fitLength(s string, length int, r io.Reader) (string, error) {
	if len(s) >= length {
		return s[:length], nil
	}

	padding, err := randomChars(r, length-len(s))
	if err != nil {
		return "", err
	}

	return s + padding, nil
}

// randomChars draws n characters uniformly from Alphabet. Bytes at or above the
// largest multiple of the alphabet size are discarded to avoid modulo bias.
func randomChars(r io.Reader, n int) (string, error) {
	const limit = 256 - 256%len(Alphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)

	for len(out) < n {
		chunk := buf[:n-len(out)]
		if _, err := io.ReadFull(r, chunk); err != nil {
			return "", fmt.Errorf("read padding: %w", err)
		}

		for _, b := range chunk {
			if int(b) < limit {
				out = append(out, Alphabet[int(b)%len(Alphabet)])
			}
		}
	}

	return string(out), nil
}
