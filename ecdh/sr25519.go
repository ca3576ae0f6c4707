package ecdh

import (
	"context"

	"github.com/opd-ai/keyseal/crypto"
)

type sr25519Exchange struct {
	rand    crypto.RandomSource
	backend *crypto.SR25519Backend
}

func (e *sr25519Exchange) Curve() crypto.Curve {
	return crypto.SR25519
}

func (e *sr25519Exchange) EphemeralKey() (crypto.PrivateKey, error) {
	return crypto.GenerateKey(crypto.SR25519, e.rand, crypto.WithSR25519Backend(e.backend))
}

// SharedSecret waits for the backend, then computes the Ristretto point
// secret·P over the full key pair and the counterpart public key.
func (e *sr25519Exchange) SharedSecret(ctx context.Context, privateKey crypto.PrivateKey, publicKey crypto.PublicKey) ([]byte, error) {
	if err := e.backend.EnsureReady(ctx); err != nil {
		return nil, err
	}
	if err := checkPair(crypto.SR25519, privateKey, publicKey); err != nil {
		return nil, err
	}

	secret := privateKey.Bytes()
	defer crypto.ZeroBytes(secret)

	return crypto.SR25519Agree(secret, publicKey.Bytes())
}
