package crypto

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// PublicKey is an immutable public key on one of the supported curves.
// The zero value is not a valid key.
type PublicKey struct {
	curve   Curve
	bytes   []byte
	backend *SR25519Backend
}

// PrivateKey is an immutable private key. Its public key is always derived
// from the secret bytes at construction.
type PrivateKey struct {
	curve   Curve
	bytes   []byte
	public  PublicKey
	backend *SR25519Backend
}

// KeyOption configures key construction.
type KeyOption func(*keyOptions)

type keyOptions struct {
	backend *SR25519Backend
}

// WithSR25519Backend sets the SR25519 backend handle used by the key for
// signing and verification. Keys on other curves ignore it.
func WithSR25519Backend(backend *SR25519Backend) KeyOption {
	return func(o *keyOptions) {
		o.backend = backend
	}
}

func applyKeyOptions(opts []KeyOption) keyOptions {
	o := keyOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.backend == nil {
		o.backend = DefaultSR25519Backend()
	}
	return o
}

// GenerateKey creates a new private key on curve, reading exactly the curve's
// seed length from rand. The result is deterministic given rand's output.
func GenerateKey(curve Curve, rand RandomSource, opts ...KeyOption) (PrivateKey, error) {
	size, err := curve.SeedSize()
	if err != nil {
		return PrivateKey{}, newOpError("generate", curve, err)
	}

	seed, err := Rand(rand, size)
	if err != nil {
		return PrivateKey{}, newOpError("generate", curve, err)
	}
	defer ZeroBytes(seed)

	return PrivateKeyFromSeed(curve, seed, opts...)
}

// PrivateKeyFromSeed deterministically derives a private key from a 32-byte seed.
func PrivateKeyFromSeed(curve Curve, seed []byte, opts ...KeyOption) (PrivateKey, error) {
	o := applyKeyOptions(opts)

	var (
		secret, public []byte
		err            error
	)
	switch curve {
	case Ed25519:
		secret, public, err = ed25519FromSeed(seed)
	case Secp256k1:
		secret, public, err = secp256k1FromSecret(seed)
	case SR25519:
		secret, public, err = sr25519FromSeed(seed)
	default:
		err = UnsupportedCurve(curve)
	}
	if err != nil {
		return PrivateKey{}, newOpError("from seed", curve, err)
	}

	return newPrivateKey(curve, secret, public, o.backend), nil
}

// PrivateKeyFromBytes parses a private key from its raw secret encoding.
//
// Ed25519 expects the 64-byte seed‖public form. Secp256k1 expects the 32-byte
// scalar. SR25519 accepts the 64-byte scalar‖nonce secret in Substrate's
// Ed25519 byte form (scalar not yet divided by the cofactor) or the 96-byte
// secret‖public keypair.
func PrivateKeyFromBytes(curve Curve, b []byte, opts ...KeyOption) (PrivateKey, error) {
	o := applyKeyOptions(opts)

	var (
		secret, public []byte
		err            error
	)
	switch curve {
	case Ed25519:
		secret, public, err = ed25519FromSecret(b)
	case Secp256k1:
		secret, public, err = secp256k1FromSecret(b)
	case SR25519:
		secret, public, err = sr25519FromSecret(b)
	default:
		err = UnsupportedCurve(curve)
	}
	if err != nil {
		return PrivateKey{}, newOpError("parse private key", curve, err)
	}

	return newPrivateKey(curve, secret, public, o.backend), nil
}

// PublicKeyFromBytes parses and validates a public key. Secp256k1 accepts the
// 33-byte compressed and 65-byte uncompressed forms and normalizes to
// compressed.
func PublicKeyFromBytes(curve Curve, b []byte, opts ...KeyOption) (PublicKey, error) {
	o := applyKeyOptions(opts)

	var (
		public []byte
		err    error
	)
	switch curve {
	case Ed25519:
		public, err = ed25519ParsePublic(b)
	case Secp256k1:
		public, err = secp256k1ParsePublic(b)
	case SR25519:
		public, err = sr25519ParsePublic(b)
	default:
		err = UnsupportedCurve(curve)
	}
	if err != nil {
		return PublicKey{}, newOpError("parse public key", curve, err)
	}

	return PublicKey{curve: curve, bytes: public, backend: o.backend}, nil
}

func newPrivateKey(curve Curve, secret, public []byte, backend *SR25519Backend) PrivateKey {
	pub := PublicKey{curve: curve, bytes: public, backend: backend}
	return PrivateKey{curve: curve, bytes: secret, public: pub, backend: backend}
}

// Curve returns the curve the key belongs to.
func (k PublicKey) Curve() Curve {
	return k.curve
}

// Bytes returns a copy of the raw public key encoding.
func (k PublicKey) Bytes() []byte {
	return append([]byte(nil), k.bytes...)
}

// IsZero reports whether k is the zero value.
func (k PublicKey) IsZero() bool {
	return k.curve == CurveUnknown && len(k.bytes) == 0
}

// Equal reports whether k and other are the same key on the same curve.
func (k PublicKey) Equal(other PublicKey) bool {
	if k.curve != other.curve || len(k.bytes) != len(other.bytes) {
		return false
	}
	return subtle.ConstantTimeCompare(k.bytes, other.bytes) == 1
}

// String returns the curve name and hex encoding of the key.
func (k PublicKey) String() string {
	return fmt.Sprintf("%s:%s", k.curve, hex.EncodeToString(k.bytes))
}

// Verify checks signature over message. SR25519 keys wait for their backend
// to become ready first.
func (k PublicKey) Verify(message, signature []byte) (bool, error) {
	return k.VerifyContext(context.Background(), message, signature)
}

// VerifyContext is Verify with a caller-supplied context bounding the SR25519
// backend wait.
func (k PublicKey) VerifyContext(ctx context.Context, message, signature []byte) (bool, error) {
	switch k.curve {
	case Ed25519:
		return ed25519Verify(k.bytes, message, signature), nil
	case Secp256k1:
		return secp256k1Verify(k.bytes, message, signature)
	case SR25519:
		if err := k.backend.EnsureReady(ctx); err != nil {
			return false, newOpError("verify", k.curve, err)
		}
		return sr25519Verify(k.bytes, message, signature)
	default:
		return false, newOpError("verify", k.curve, UnsupportedCurve(k.curve))
	}
}

// SR25519Backend returns the backend handle the key was constructed with.
func (k PublicKey) SR25519Backend() *SR25519Backend {
	return k.backend
}

// Curve returns the curve the key belongs to.
func (k PrivateKey) Curve() Curve {
	return k.curve
}

// Bytes returns a copy of the raw secret encoding.
func (k PrivateKey) Bytes() []byte {
	return append([]byte(nil), k.bytes...)
}

// PublicKey returns the public key derived from the secret.
func (k PrivateKey) PublicKey() PublicKey {
	return k.public
}

// IsZero reports whether k is the zero value.
func (k PrivateKey) IsZero() bool {
	return k.curve == CurveUnknown && len(k.bytes) == 0
}

// Equal reports whether k and other hold the same secret on the same curve.
func (k PrivateKey) Equal(other PrivateKey) bool {
	if k.curve != other.curve || len(k.bytes) != len(other.bytes) {
		return false
	}
	return subtle.ConstantTimeCompare(k.bytes, other.bytes) == 1
}

// SR25519Backend returns the backend handle the key was constructed with.
func (k PrivateKey) SR25519Backend() *SR25519Backend {
	return k.backend
}

// KeypairBytes returns the SR25519 secret‖public serialization (96 bytes).
func (k PrivateKey) KeypairBytes() ([]byte, error) {
	if k.curve != SR25519 {
		return nil, newOpError("keypair bytes", k.curve, UnsupportedCurve(k.curve))
	}
	out := make([]byte, 0, SR25519KeypairSize)
	out = append(out, k.bytes...)
	return append(out, k.public.bytes...), nil
}

// Sign signs message. SR25519 keys wait for their backend to become ready.
func (k PrivateKey) Sign(message []byte) ([]byte, error) {
	return k.SignContext(context.Background(), message)
}

// SignContext is Sign with a caller-supplied context bounding the SR25519
// backend wait.
func (k PrivateKey) SignContext(ctx context.Context, message []byte) ([]byte, error) {
	var (
		sig []byte
		err error
	)
	switch k.curve {
	case Ed25519:
		sig = ed25519Sign(k.bytes, message)
	case Secp256k1:
		sig, err = secp256k1Sign(k.bytes, message)
	case SR25519:
		if err = k.backend.EnsureReady(ctx); err == nil {
			sig, err = sr25519Sign(k.bytes, message)
		}
	default:
		err = UnsupportedCurve(k.curve)
	}
	if err != nil {
		return nil, newOpError("sign", k.curve, err)
	}
	return sig, nil
}

// Wipe zeroes the secret bytes held by k. The key must not be used afterwards.
// Copies previously returned by Bytes are not affected.
func (k PrivateKey) Wipe() {
	ZeroBytes(k.bytes)
}
