package ecdh

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/opd-ai/keyseal/crypto"
)

type secp256k1Exchange struct {
	rand crypto.RandomSource
}

func (e *secp256k1Exchange) Curve() crypto.Curve {
	return crypto.Secp256k1
}

func (e *secp256k1Exchange) EphemeralKey() (crypto.PrivateKey, error) {
	return crypto.GenerateKey(crypto.Secp256k1, e.rand)
}

// SharedSecret returns the big-endian X coordinate of privateKey·publicKey.
func (e *secp256k1Exchange) SharedSecret(_ context.Context, privateKey crypto.PrivateKey, publicKey crypto.PublicKey) ([]byte, error) {
	if err := checkPair(crypto.Secp256k1, privateKey, publicKey); err != nil {
		return nil, err
	}

	secret := privateKey.Bytes()
	defer crypto.ZeroBytes(secret)

	privKey, _ := btcec.PrivKeyFromBytes(secret)
	defer privKey.Zero()

	pubKey, err := btcec.ParsePubKey(publicKey.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: secp256k1 public key: %v", crypto.ErrValidation, err)
	}

	return btcec.GenerateSharedSecret(privKey, pubKey), nil
}
