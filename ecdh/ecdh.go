// Package ecdh implements Diffie–Hellman key agreement over every curve
// supported by keyseal.
//
// Ed25519 keys are mapped onto Curve25519 and combined with X25519. secp256k1
// uses plain ECDH and returns the X coordinate of the shared point. SR25519
// multiplies the secret scalar with the counterpart Ristretto point once its
// backend is ready.
//
// Every implementation rejects a self-exchange (a private key combined with
// its own public key) with crypto.ErrKeyMismatch, and satisfies
// SharedSecret(a, B) == SharedSecret(b, A) for distinct key pairs.
package ecdh

import (
	"context"
	"fmt"

	"github.com/opd-ai/keyseal/crypto"
)

// KeyExchange computes shared secrets for one curve.
type KeyExchange interface {
	// Curve returns the curve this exchange operates on.
	Curve() crypto.Curve

	// EphemeralKey generates a fresh key pair on the exchange's curve.
	EphemeralKey() (crypto.PrivateKey, error)

	// SharedSecret computes the 32-byte Diffie–Hellman secret of privateKey
	// and publicKey.
	SharedSecret(ctx context.Context, privateKey crypto.PrivateKey, publicKey crypto.PublicKey) ([]byte, error)
}

// Option configures a KeyExchange.
type Option func(*options)

type options struct {
	rand    crypto.RandomSource
	backend *crypto.SR25519Backend
}

// WithRandom sets the entropy source for ephemeral keys.
func WithRandom(rand crypto.RandomSource) Option {
	return func(o *options) {
		o.rand = rand
	}
}

// WithSR25519Backend sets the backend handle an SR25519 exchange waits on.
func WithSR25519Backend(backend *crypto.SR25519Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

func applyOptions(opts []Option) options {
	o := options{rand: crypto.DefaultRandom()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the KeyExchange for curve.
func New(curve crypto.Curve, opts ...Option) (KeyExchange, error) {
	o := applyOptions(opts)

	switch curve {
	case crypto.Ed25519:
		return &ed25519Exchange{rand: o.rand}, nil
	case crypto.Secp256k1:
		return &secp256k1Exchange{rand: o.rand}, nil
	case crypto.SR25519:
		backend := o.backend
		if backend == nil {
			backend = crypto.DefaultSR25519Backend()
		}
		return &sr25519Exchange{rand: o.rand, backend: backend}, nil
	default:
		return nil, crypto.UnsupportedCurve(curve)
	}
}

// FromPublicKey returns the KeyExchange matching the curve of key. An SR25519
// key's own backend handle is used unless one is given in opts.
func FromPublicKey(key crypto.PublicKey, opts ...Option) (KeyExchange, error) {
	if key.Curve() == crypto.SR25519 {
		opts = append([]Option{WithSR25519Backend(key.SR25519Backend())}, opts...)
	}
	return New(key.Curve(), opts...)
}

// FromPrivateKey returns the KeyExchange matching the curve of key.
func FromPrivateKey(key crypto.PrivateKey, opts ...Option) (KeyExchange, error) {
	if key.Curve() == crypto.SR25519 {
		opts = append([]Option{WithSR25519Backend(key.SR25519Backend())}, opts...)
	}
	return New(key.Curve(), opts...)
}

// checkPair enforces that both keys are on curve and that publicKey is not
// the public half of privateKey.
func checkPair(curve crypto.Curve, privateKey crypto.PrivateKey, publicKey crypto.PublicKey) error {
	if privateKey.Curve() != curve {
		return fmt.Errorf("%w: %s private key given to %s key exchange",
			crypto.ErrUnsupportedKey, privateKey.Curve(), curve)
	}
	if publicKey.Curve() != curve {
		return fmt.Errorf("%w: %s public key given to %s key exchange",
			crypto.ErrUnsupportedKey, publicKey.Curve(), curve)
	}
	if publicKey.Equal(privateKey.PublicKey()) {
		return fmt.Errorf("%w: cannot exchange a key with its own public key", crypto.ErrKeyMismatch)
	}
	return nil
}
