// Package mnemonic turns BIP-39 phrases into key seeds using the Substrate
// convention: the phrase's entropy, not its text, is stretched with
// PBKDF2-HMAC-SHA512 and the first 32 bytes become the mini secret.
package mnemonic

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"strings"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// MiniSecretSize is the length of the seed produced from a phrase.
	MiniSecretSize = 32

	pbkdf2Iterations = 2048
	saltPrefix       = "mnemonic"
)

// ErrInvalidMnemonic indicates a phrase that fails BIP-39 word or checksum
// validation.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// New generates a phrase from bitSize bits of entropy read from rand. bitSize
// must be a multiple of 32 between 128 and 256.
func New(bitSize int, rand crypto.RandomSource) (string, error) {
	if bitSize%32 != 0 || bitSize < 128 || bitSize > 256 {
		return "", fmt.Errorf("%w: entropy size %d bits", crypto.ErrValidation, bitSize)
	}

	entropy, err := crypto.Rand(rand, bitSize/8)
	if err != nil {
		return "", err
	}
	defer crypto.ZeroBytes(entropy)

	return bip39.NewMnemonic(entropy)
}

// IsValid reports whether phrase is a well-formed BIP-39 mnemonic.
func IsValid(phrase string) bool {
	return bip39.IsMnemonicValid(normalize(phrase))
}

// ToMiniSecret derives the 32-byte mini secret for phrase and password.
func ToMiniSecret(phrase, password string) ([]byte, error) {
	phrase = normalize(phrase)
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidMnemonic
	}

	entropy, err := bip39.EntropyFromMnemonic(phrase)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	defer crypto.ZeroBytes(entropy)

	seed := pbkdf2.Key(entropy, []byte(saltPrefix+password), pbkdf2Iterations, 64, sha512.New)
	defer crypto.ZeroBytes(seed)

	out := make([]byte, MiniSecretSize)
	copy(out, seed)
	return out, nil
}

// PrivateKeyFromPhrase derives a key on curve from phrase and password.
func PrivateKeyFromPhrase(curve crypto.Curve, phrase, password string, opts ...crypto.KeyOption) (crypto.PrivateKey, error) {
	seed, err := ToMiniSecret(phrase, password)
	if err != nil {
		return crypto.PrivateKey{}, err
	}
	defer crypto.ZeroBytes(seed)

	crypto.NewPackageLogger("mnemonic", "PrivateKeyFromPhrase").
		WithCurve(curve).
		Debug("Deriving key from mnemonic")

	return crypto.PrivateKeyFromSeed(curve, seed, opts...)
}

func normalize(phrase string) string {
	return strings.Join(strings.Fields(phrase), " ")
}
