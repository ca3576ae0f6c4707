// Package limits provides centralized payload size limits for keyseal.
// This ensures consistent validation across the cipher and key store.
package limits

import (
	"errors"
	"fmt"
)

const (
	// MaxPayload is the default upper bound on a plaintext passed to a
	// single encrypt call (16MB). Larger content is chunked by callers.
	MaxPayload = 16 * 1024 * 1024

	// EncryptionOverhead is the Poly1305 tag added by secretbox.Seal.
	EncryptionOverhead = 16 // golang.org/x/crypto/nacl/secretbox.Overhead

	// NonceSize is the secretbox nonce carried in every frame.
	NonceSize = 24

	// MaxFrameOverhead is the largest framing added around a payload:
	// tag, key type, a 33-byte ephemeral key, nonce and Poly1305 tag.
	MaxFrameOverhead = 1 + 1 + 33 + NonceSize + EncryptionOverhead

	// MaxStoredKey bounds a single key store entry.
	MaxStoredKey = 4096
)

var (
	// ErrMessageEmpty indicates an empty message was provided
	ErrMessageEmpty = errors.New("empty message")

	// ErrMessageTooLarge indicates message exceeds maximum size
	ErrMessageTooLarge = errors.New("message too large")
)

// ValidateMessageSize validates a message against the specified maximum size.
// Empty messages are rejected.
func ValidateMessageSize(message []byte, maxSize int) error {
	if len(message) == 0 {
		return ErrMessageEmpty
	}
	return ValidatePayload(message, maxSize)
}

// ValidatePayload checks only the upper bound; empty payloads are valid.
// A non-positive maxSize disables the check.
func ValidatePayload(payload []byte, maxSize int) error {
	if maxSize > 0 && len(payload) > maxSize {
		return fmt.Errorf("%w: size %d exceeds limit %d", ErrMessageTooLarge, len(payload), maxSize)
	}
	return nil
}

// ValidateStoredKey validates a key store entry against MaxStoredKey.
func ValidateStoredKey(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if len(data) > MaxStoredKey {
		return fmt.Errorf("%w: stored key size %d exceeds limit %d", ErrMessageTooLarge, len(data), MaxStoredKey)
	}
	return nil
}
