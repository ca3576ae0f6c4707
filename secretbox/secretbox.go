// Package secretbox provides NaCl secretbox authenticated encryption with the
// nonce carried in front of the ciphertext.
//
// Sealed boxes are laid out as nonce(24) ‖ ciphertext ‖ Poly1305 tag(16).
package secretbox

import (
	"fmt"

	"github.com/opd-ai/keyseal/crypto"
	naclbox "golang.org/x/crypto/nacl/secretbox"
)

const (
	// KeySize is the secret key length in bytes.
	KeySize = 32
	// NonceSize is the nonce length in bytes.
	NonceSize = 24
	// Overhead is the Poly1305 tag length added to every message.
	Overhead = naclbox.Overhead
)

// EasySeal encrypts and authenticates message with a fresh nonce drawn from
// rand, returning nonce ‖ box. A nil rand uses crypto.DefaultRandom.
func EasySeal(message, key []byte, rand crypto.RandomSource) ([]byte, error) {
	k, err := toKey(key)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(k[:])

	nonceBytes, err := crypto.Rand(rand, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	var nonce [NonceSize]byte
	copy(nonce[:], nonceBytes)

	out := make([]byte, NonceSize, NonceSize+len(message)+Overhead)
	copy(out, nonce[:])
	return naclbox.Seal(out, message, &nonce, k), nil
}

// EasyOpen authenticates and decrypts a box produced by EasySeal.
func EasyOpen(sealed, key []byte) ([]byte, error) {
	k, err := toKey(key)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(k[:])

	if len(sealed) < NonceSize {
		return nil, fmt.Errorf("%w: sealed box is %d bytes, shorter than the %d-byte nonce",
			crypto.ErrValidation, len(sealed), NonceSize)
	}

	var nonce [NonceSize]byte
	copy(nonce[:], sealed[:NonceSize])

	out, ok := naclbox.Open(nil, sealed[NonceSize:], &nonce, k)
	if !ok {
		return nil, fmt.Errorf("%w: message authentication failed", crypto.ErrDecryption)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func toKey(key []byte) (*[KeySize]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: secret key must be %d bytes, got %d", crypto.ErrValidation, KeySize, len(key))
	}
	var k [KeySize]byte
	copy(k[:], key)
	return &k, nil
}
