package ecdh

import (
	"context"
	"fmt"

	"github.com/flynn/noise"
	"github.com/opd-ai/keyseal/crypto"
)

type ed25519Exchange struct {
	rand crypto.RandomSource
}

func (e *ed25519Exchange) Curve() crypto.Curve {
	return crypto.Ed25519
}

func (e *ed25519Exchange) EphemeralKey() (crypto.PrivateKey, error) {
	return crypto.GenerateKey(crypto.Ed25519, e.rand)
}

// SharedSecret maps both keys onto Curve25519 and runs X25519.
func (e *ed25519Exchange) SharedSecret(_ context.Context, privateKey crypto.PrivateKey, publicKey crypto.PublicKey) ([]byte, error) {
	if err := checkPair(crypto.Ed25519, privateKey, publicKey); err != nil {
		return nil, err
	}

	crypto.NewPackageLogger("ecdh", "ed25519Exchange.SharedSecret").
		WithFields(crypto.SecureFieldHash(publicKey.Bytes(), "peer_key")).
		Debug("Computing shared secret using X25519")

	secret := privateKey.Bytes()
	defer crypto.ZeroBytes(secret)

	scalar, err := crypto.Ed25519SecretToCurve25519(secret)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(scalar)

	peer, err := crypto.Ed25519PublicToCurve25519(publicKey.Bytes())
	if err != nil {
		return nil, err
	}

	shared, err := noise.DH25519.DH(scalar, peer)
	if err != nil {
		crypto.NewPackageLogger("ecdh", "ed25519Exchange.SharedSecret").
			WithError(err, "x25519").
			Warn("X25519 computation failed")
		return nil, fmt.Errorf("%w: x25519: %v", crypto.ErrValidation, err)
	}
	return shared, nil
}
