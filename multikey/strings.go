package multikey

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/opd-ai/keyseal/crypto"
)

const hexPrefix = "0x"

// EncodePublicKeyHex returns the 0x-prefixed lowercase hex of the multikey
// encoding of key.
func EncodePublicKeyHex(key crypto.PublicKey) (string, error) {
	b, err := EncodePublicKey(key)
	if err != nil {
		return "", err
	}
	return hexPrefix + hex.EncodeToString(b), nil
}

// DecodePublicKeyHex parses EncodePublicKeyHex output. The 0x prefix is
// optional.
func DecodePublicKeyHex(s string, opts ...crypto.KeyOption) (crypto.PublicKey, error) {
	b, err := decodeHex(s)
	if err != nil {
		return crypto.PublicKey{}, err
	}
	return DecodePublicKey(b, opts...)
}

// EncodePrivateKeyHex returns the 0x-prefixed hex of the multikey encoding of
// a private key.
func EncodePrivateKeyHex(key crypto.PrivateKey) (string, error) {
	b, err := EncodePrivateKey(key)
	if err != nil {
		return "", err
	}
	defer crypto.ZeroBytes(b)
	return hexPrefix + hex.EncodeToString(b), nil
}

// DecodePrivateKeyHex parses EncodePrivateKeyHex output.
func DecodePrivateKeyHex(s string, opts ...crypto.KeyOption) (crypto.PrivateKey, error) {
	b, err := decodeHex(s)
	if err != nil {
		return crypto.PrivateKey{}, err
	}
	defer crypto.ZeroBytes(b)
	return DecodePrivateKey(b, opts...)
}

// EncodePublicKeyBase58 returns the base58 (Bitcoin alphabet) form of the
// multikey encoding of key.
func EncodePublicKeyBase58(key crypto.PublicKey) (string, error) {
	b, err := EncodePublicKey(key)
	if err != nil {
		return "", err
	}
	return base58.Encode(b), nil
}

// DecodePublicKeyBase58 parses EncodePublicKeyBase58 output.
func DecodePublicKeyBase58(s string, opts ...crypto.KeyOption) (crypto.PublicKey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return crypto.PublicKey{}, fmt.Errorf("%w: invalid base58: %v", crypto.ErrValidation, err)
	}
	return DecodePublicKey(b, opts...)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), hexPrefix)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid hex: %v", crypto.ErrValidation, err)
	}
	return b, nil
}
