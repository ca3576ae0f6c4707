package crypto

import (
	"crypto/ed25519"
	"crypto/sha512"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/curve25519"
)

// Ed25519SecretToCurve25519 converts an Ed25519 secret (seed‖public or bare
// seed) to its X25519 scalar: the clamped low half of SHA-512(seed), as in
// RFC 8032 key expansion.
func Ed25519SecretToCurve25519(secret []byte) ([]byte, error) {
	if len(secret) != ed25519.PrivateKeySize && len(secret) != ed25519.SeedSize {
		return nil, validationf("ed25519 secret must be %d or %d bytes, got %d",
			ed25519.PrivateKeySize, ed25519.SeedSize, len(secret))
	}

	h := sha512.Sum512(secret[:ed25519.SeedSize])
	defer ZeroBytes(h[:])

	scalar := make([]byte, curve25519.ScalarSize)
	copy(scalar, h[:32])

	// Clamp the scalar (RFC 7748)
	scalar[0] &= 248
	scalar[31] &= 127
	scalar[31] |= 64

	return scalar, nil
}

// Ed25519PublicToCurve25519 maps an Ed25519 public key to the Montgomery u
// coordinate of the same point, u = (1 + y) / (1 - y).
func Ed25519PublicToCurve25519(public []byte) ([]byte, error) {
	if len(public) != ed25519.PublicKeySize {
		return nil, validationf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(public))
	}

	var point edwards25519.Point
	if _, err := point.SetBytes(public); err != nil {
		return nil, validationf("ed25519 public key is not a valid curve point: %v", err)
	}
	return point.BytesMontgomery(), nil
}

// Curve25519PublicFromScalar returns the X25519 public key for a scalar.
func Curve25519PublicFromScalar(scalar []byte) ([]byte, error) {
	if len(scalar) != curve25519.ScalarSize {
		return nil, validationf("x25519 scalar must be %d bytes, got %d", curve25519.ScalarSize, len(scalar))
	}
	return curve25519.X25519(scalar, curve25519.Basepoint)
}
