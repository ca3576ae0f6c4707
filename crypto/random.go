package crypto

import (
	"crypto/rand"
	"fmt"
	"io"
)

// RandomSource supplies entropy for key generation and nonces.
// Any io.Reader works; crypto/rand.Reader is the default.
type RandomSource = io.Reader

// DefaultRandom returns the operating system CSPRNG.
func DefaultRandom() RandomSource {
	return rand.Reader
}

// Rand reads exactly n bytes from src. A nil src reads from DefaultRandom.
func Rand(src RandomSource, n int) ([]byte, error) {
	if src == nil {
		src = DefaultRandom()
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, fmt.Errorf("failed to read %d random bytes: %w", n, err)
	}
	return buf, nil
}
