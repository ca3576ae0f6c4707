package interfaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/opd-ai/keyseal/limits"
	"github.com/opd-ai/keyseal/multikey"
)

// Encrypter turns plaintext into a self-describing encrypted frame.
type Encrypter interface {
	// Encrypt seals plain. ctx bounds any backend readiness wait.
	Encrypt(ctx context.Context, plain []byte) ([]byte, error)
}

// Decrypter opens frames produced by a matching Encrypter.
type Decrypter interface {
	// Decrypt opens content. ctx bounds any backend readiness wait.
	Decrypt(ctx context.Context, content []byte) ([]byte, error)
}

// Signer produces signatures with a private key.
type Signer interface {
	SignContext(ctx context.Context, message []byte) ([]byte, error)
}

// Verifier checks signatures with a public key.
type Verifier interface {
	VerifyContext(ctx context.Context, message, signature []byte) (bool, error)
}

const (
	// MaxReadyTimeout bounds CipherConfig.ReadyTimeout (one minute).
	MaxReadyTimeout = 60000
)

var (
	// ErrInvalidCurve indicates an unknown default curve name.
	ErrInvalidCurve = errors.New("default curve must be ed25519, secp256k1 or sr25519")
	// ErrInvalidMaxPayload indicates a payload limit outside (0, limits.MaxPayload].
	ErrInvalidMaxPayload = errors.New("max payload out of range")
	// ErrInvalidTimeout indicates a negative or excessive readiness timeout.
	ErrInvalidTimeout = errors.New("ready timeout out of range")
)

// CipherConfig holds configuration for encrypters and decrypters created by
// the factory package.
type CipherConfig struct {
	// DefaultCurve is the multikey kind name used when generating keys.
	DefaultCurve string

	// MaxPayload bounds the plaintext accepted by a single Encrypt call.
	MaxPayload int

	// ReadyTimeout bounds each call in milliseconds. Zero means the caller's
	// context is used unchanged.
	ReadyTimeout int
}

// Validate checks the configuration for out-of-range values.
func (c *CipherConfig) Validate() error {
	if _, err := multikey.CurveOfKindName(c.DefaultCurve); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidCurve, c.DefaultCurve)
	}
	if c.MaxPayload <= 0 || c.MaxPayload > limits.MaxPayload {
		return fmt.Errorf("%w: %d", ErrInvalidMaxPayload, c.MaxPayload)
	}
	if c.ReadyTimeout < 0 || c.ReadyTimeout > MaxReadyTimeout {
		return fmt.Errorf("%w: %d", ErrInvalidTimeout, c.ReadyTimeout)
	}
	return nil
}
