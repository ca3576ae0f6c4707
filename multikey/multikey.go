// Package multikey encodes keys from any supported curve into one byte field
// by prefixing the raw key with a one-byte curve identifier.
//
// The byte layout is curveId(1) ‖ rawKeyBytes. A separate human-readable
// kind name ("ed25519", "secp256k1", "sr25519") is used at API boundaries.
package multikey

import (
	"fmt"
	"strings"

	"github.com/opd-ai/keyseal/crypto"
)

// ID is the one-byte identifier of a curve in the multikey encoding.
type ID byte

const (
	// IDSecp256k1 identifies secp256k1 keys.
	IDSecp256k1 ID = 0xe1
	// IDEd25519 identifies Ed25519 keys.
	IDEd25519 ID = 0xe2
	// IDSR25519 identifies SR25519 keys.
	IDSR25519 ID = 0xe3
)

// Kind names used for the string encoding of a curve.
const (
	KindEd25519   = "ed25519"
	KindSecp256k1 = "secp256k1"
	KindSR25519   = "sr25519"
)

// MinEncodedSize is the shortest valid encoding: one id byte plus the
// shortest 32-byte key.
const MinEncodedSize = 1 + crypto.MinPublicKeySize

// IDOf returns the multikey identifier for curve.
func IDOf(curve crypto.Curve) (ID, error) {
	switch curve {
	case crypto.Ed25519:
		return IDEd25519, nil
	case crypto.Secp256k1:
		return IDSecp256k1, nil
	case crypto.SR25519:
		return IDSR25519, nil
	default:
		return 0, crypto.UnsupportedCurve(curve)
	}
}

// CurveOf returns the curve identified by id.
func CurveOf(id ID) (crypto.Curve, error) {
	switch id {
	case IDEd25519:
		return crypto.Ed25519, nil
	case IDSecp256k1:
		return crypto.Secp256k1, nil
	case IDSR25519:
		return crypto.SR25519, nil
	default:
		return crypto.CurveUnknown, fmt.Errorf("%w: unknown key id 0x%02x", crypto.ErrUnsupportedKey, byte(id))
	}
}

// KindName returns the human-readable name of curve.
func KindName(curve crypto.Curve) (string, error) {
	switch curve {
	case crypto.Ed25519:
		return KindEd25519, nil
	case crypto.Secp256k1:
		return KindSecp256k1, nil
	case crypto.SR25519:
		return KindSR25519, nil
	default:
		return "", crypto.UnsupportedCurve(curve)
	}
}

// CurveOfKindName parses a kind name. Matching is case-insensitive.
func CurveOfKindName(name string) (crypto.Curve, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case KindEd25519:
		return crypto.Ed25519, nil
	case KindSecp256k1:
		return crypto.Secp256k1, nil
	case KindSR25519:
		return crypto.SR25519, nil
	default:
		return crypto.CurveUnknown, fmt.Errorf("%w: unknown key kind %q", crypto.ErrUnsupportedKey, name)
	}
}

// EncodePublicKey returns id ‖ key bytes.
func EncodePublicKey(key crypto.PublicKey) ([]byte, error) {
	id, err := IDOf(key.Curve())
	if err != nil {
		return nil, err
	}
	return prefix(id, key.Bytes()), nil
}

// DecodePublicKey parses the output of EncodePublicKey.
func DecodePublicKey(b []byte, opts ...crypto.KeyOption) (crypto.PublicKey, error) {
	curve, raw, err := split(b)
	if err != nil {
		return crypto.PublicKey{}, err
	}
	return crypto.PublicKeyFromBytes(curve, raw, opts...)
}

// EncodePrivateKey returns id ‖ secret bytes. The result is key material and
// must be handled accordingly.
func EncodePrivateKey(key crypto.PrivateKey) ([]byte, error) {
	id, err := IDOf(key.Curve())
	if err != nil {
		return nil, err
	}
	secret := key.Bytes()
	defer crypto.ZeroBytes(secret)
	return prefix(id, secret), nil
}

// DecodePrivateKey parses the output of EncodePrivateKey.
func DecodePrivateKey(b []byte, opts ...crypto.KeyOption) (crypto.PrivateKey, error) {
	curve, raw, err := split(b)
	if err != nil {
		return crypto.PrivateKey{}, err
	}
	return crypto.PrivateKeyFromBytes(curve, raw, opts...)
}

func prefix(id ID, raw []byte) []byte {
	out := make([]byte, 1+len(raw))
	out[0] = byte(id)
	copy(out[1:], raw)
	return out
}

func split(b []byte) (crypto.Curve, []byte, error) {
	if len(b) < MinEncodedSize {
		return crypto.CurveUnknown, nil, fmt.Errorf("%w: encoded key is %d bytes, minimum is %d",
			crypto.ErrValidation, len(b), MinEncodedSize)
	}
	curve, err := CurveOf(ID(b[0]))
	if err != nil {
		return crypto.CurveUnknown, nil, err
	}
	return curve, b[1:], nil
}
