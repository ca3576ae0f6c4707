// Package cipher implements the two payload encryption wire formats built on
// NaCl secretbox.
//
// Secret-key scheme (tag 0x2B), for content a key holder encrypts to itself:
//
//	tag(1) ‖ keyId(1) ‖ nonce(24) ‖ ciphertext ‖ poly1305(16)
//
// ECDH scheme (tag 0x2A), for content encrypted to a recipient's public key:
//
//	tag(1) ‖ keyTypeId(1) ‖ ephemeralPublicKey(32|33) ‖ nonce(24) ‖ ciphertext ‖ poly1305(16)
//
// Key ids are the multikey identifiers. The ephemeral key length follows from
// keyTypeId: 33 bytes for secp256k1, 32 for Ed25519 and SR25519.
package cipher

import (
	"fmt"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/opd-ai/keyseal/limits"
	"github.com/opd-ai/keyseal/secretbox"
)

// EncryptedContent is a tagged, self-describing ciphertext frame.
type EncryptedContent = []byte

// Scheme tags.
const (
	TagECDH      byte = 0x2a
	TagSecretKey byte = 0x2b
)

const (
	// MinSecretKeyFrameSize is tag + keyId + nonce + Poly1305 tag.
	MinSecretKeyFrameSize = 2 + secretbox.NonceSize + secretbox.Overhead

	// MinECDHFrameSize is the shortest input the ECDH decrypter inspects.
	// Shorter frames fail with crypto.ErrInvalidFormat before any
	// cryptographic work.
	MinECDHFrameSize = 35
)

// Option configures encrypters and decrypters.
type Option func(*options)

type options struct {
	rand    crypto.RandomSource
	backend *crypto.SR25519Backend
	maxSize int
}

// WithRandom sets the entropy source used for nonces.
func WithRandom(rand crypto.RandomSource) Option {
	return func(o *options) {
		o.rand = rand
	}
}

// WithSR25519Backend sets the backend handle used for SR25519 keys embedded
// in ECDH frames.
func WithSR25519Backend(backend *crypto.SR25519Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// WithMaxPayload overrides limits.MaxPayload for plaintext and frame sizes.
func WithMaxPayload(n int) Option {
	return func(o *options) {
		o.maxSize = n
	}
}

func applyOptions(opts []Option) options {
	o := options{
		rand:    crypto.DefaultRandom(),
		maxSize: limits.MaxPayload,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		o.backend = crypto.DefaultSR25519Backend()
	}
	return o
}

// Scheme returns the scheme tag of content, or ErrInvalidFormat when the
// frame carries neither known tag.
func Scheme(content EncryptedContent) (byte, error) {
	if len(content) == 0 {
		return 0, fmt.Errorf("%w: empty content", crypto.ErrInvalidFormat)
	}
	switch content[0] {
	case TagECDH, TagSecretKey:
		return content[0], nil
	default:
		return 0, fmt.Errorf("%w: unknown scheme tag 0x%02x", crypto.ErrInvalidFormat, content[0])
	}
}

func checkPlaintext(plain []byte, maxSize int) error {
	if err := limits.ValidatePayload(plain, maxSize); err != nil {
		return fmt.Errorf("%w: %v", crypto.ErrValidation, err)
	}
	return nil
}

func checkFrame(content []byte, maxSize int) error {
	if err := limits.ValidatePayload(content, maxSize+limits.MaxFrameOverhead); err != nil {
		return fmt.Errorf("%w: %v", crypto.ErrInvalidFormat, err)
	}
	return nil
}
