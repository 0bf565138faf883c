package shortener_test

import (
	"errors"
	"testing"
	"time"

	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cycleReader yields 0, 1, 2, ... forever, so generators built from fresh
// readers see identical entropy.
type cycleReader struct {
	next byte
}

func (r *cycleReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}

	return len(p), nil
}

type failingReader struct{}

func (failingReader) Read(_ []byte) (int, error) {
	return 0, errors.New("entropy unavailable")
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func newDeterministicGenerator(t *testing.T, salt string) *shortener.Generator {
	t.Helper()

	gen, err := shortener.NewGenerator(
		shortener.WithSalt(salt),
		shortener.WithClock(fixedClock),
		shortener.WithRandom(&cycleReader{}),
	)
	require.NoError(t, err)

	return gen
}

func TestGenerator_Generate(t *testing.T) {
	t.Run("returns a valid code", func(t *testing.T) {
		gen, err := shortener.NewGenerator()
		require.NoError(t, err)

		code, err := gen.Generate(testURL, 0)

		require.NoError(t, err)
		assert.Len(t, string(code), shortener.CodeLength)
		assert.True(t, shortener.IsValidCode(string(code)))
	})

	t.Run("every sample has the code shape", func(t *testing.T) {
		gen, err := shortener.NewGenerator(shortener.WithSalt("test-salt"))
		require.NoError(t, err)

		for i := range 1000 {
			code, err := gen.Generate(testURL, i%shortener.MaxCollisionRetries)

			require.NoError(t, err)
			assert.True(t, shortener.IsValidCode(string(code)), "invalid code %q", code)
		}
	})

	t.Run("repeated calls for the same url differ", func(t *testing.T) {
		gen, err := shortener.NewGenerator()
		require.NoError(t, err)

		seen := make(map[shortener.Code]struct{})

		for range 1000 {
			code, err := gen.Generate(testURL, 0)
			require.NoError(t, err)

			seen[code] = struct{}{}
		}

		assert.Len(t, seen, 1000)
	})

	t.Run("different attempts produce different codes", func(t *testing.T) {
		code0, err := newDeterministicGenerator(t, "salt").Generate(testURL, 0)
		require.NoError(t, err)

		code1, err := newDeterministicGenerator(t, "salt").Generate(testURL, 1)
		require.NoError(t, err)

		assert.NotEqual(t, code0, code1)
	})

	t.Run("attempts differ with real entropy", func(t *testing.T) {
		gen, err := shortener.NewGenerator()
		require.NoError(t, err)

		for range 100 {
			code0, err := gen.Generate(testURL, 0)
			require.NoError(t, err)

			code1, err := gen.Generate(testURL, 1)
			require.NoError(t, err)

			assert.NotEqual(t, code0, code1)
		}
	})

	t.Run("injected clock and entropy make output reproducible", func(t *testing.T) {
		code1, err := newDeterministicGenerator(t, "salt").Generate(testURL, 2)
		require.NoError(t, err)

		code2, err := newDeterministicGenerator(t, "salt").Generate(testURL, 2)
		require.NoError(t, err)

		assert.Equal(t, code1, code2)
	})

	t.Run("salt namespaces the output", func(t *testing.T) {
		code1, err := newDeterministicGenerator(t, "deployment-a").Generate(testURL, 0)
		require.NoError(t, err)

		code2, err := newDeterministicGenerator(t, "deployment-b").Generate(testURL, 0)
		require.NoError(t, err)

		assert.NotEqual(t, code1, code2)
	})

	t.Run("returns error when entropy source fails", func(t *testing.T) {
		gen, err := shortener.NewGenerator(shortener.WithRandom(failingReader{}))
		require.NoError(t, err)

		code, err := gen.Generate(testURL, 0)

		assert.Empty(t, code)
		assert.Error(t, err)
	})
}

func TestIsValidCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected bool
	}{
		{name: "digits and letters", code: "aB3xY9z", expected: true},
		{name: "all digits", code: "0123456", expected: true},
		{name: "empty", code: "", expected: false},
		{name: "six characters", code: "abc123", expected: false},
		{name: "eight characters", code: "abc12345", expected: false},
		{name: "hyphen", code: "abc-123", expected: false},
		{name: "underscore", code: "abc_123", expected: false},
		{name: "space", code: "abc 123", expected: false},
		{name: "non-ascii", code: "abcé12", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shortener.IsValidCode(tt.code))
		})
	}
}
