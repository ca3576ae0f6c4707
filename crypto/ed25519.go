package crypto

import (
	"crypto/ed25519"
	"crypto/subtle"

	"filippo.io/edwards25519"
)

// ed25519FromSeed expands a 32-byte seed into the 64-byte seed‖public secret.
func ed25519FromSeed(seed []byte) (secret, public []byte, err error) {
	if len(seed) != ed25519.SeedSize {
		return nil, nil, validationf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}

	priv := ed25519.NewKeyFromSeed(seed)
	public = append([]byte(nil), priv[ed25519.SeedSize:]...)
	return []byte(priv), public, nil
}

// ed25519FromSecret validates a 64-byte secret by re-deriving it from its
// seed half and comparing the embedded public key.
func ed25519FromSecret(b []byte) (secret, public []byte, err error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, nil, validationf("ed25519 secret key must be %d bytes, got %d", ed25519.PrivateKeySize, len(b))
	}

	secret, public, err = ed25519FromSeed(b[:ed25519.SeedSize])
	if err != nil {
		return nil, nil, err
	}
	if subtle.ConstantTimeCompare(public, b[ed25519.SeedSize:]) != 1 {
		ZeroBytes(secret)
		return nil, nil, validationf("ed25519 secret key embeds a public key that does not match its seed")
	}
	return secret, public, nil
}

// ed25519ParsePublic checks the length and that the bytes decode to a point
// on the Edwards curve.
func ed25519ParsePublic(b []byte) ([]byte, error) {
	if len(b) != ed25519.PublicKeySize {
		return nil, validationf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(b))
	}

	if _, err := new(edwards25519.Point).SetBytes(b); err != nil {
		return nil, validationf("ed25519 public key is not a valid curve point: %v", err)
	}
	return append([]byte(nil), b...), nil
}

// ed25519Sign creates an Ed25519 signature for a message.
func ed25519Sign(secret, message []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(secret), message)
}

// ed25519Verify checks if a signature is valid for a message and public key.
func ed25519Verify(public, message, signature []byte) bool {
	if len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(public), message, signature)
}
