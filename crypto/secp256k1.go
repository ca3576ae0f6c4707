package crypto

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// secp256k1FromSecret validates a 32-byte scalar (0 < k < N) and derives its
// compressed public key.
func secp256k1FromSecret(b []byte) (secret, public []byte, err error) {
	if len(b) != Secp256k1SecretSize {
		return nil, nil, validationf("secp256k1 secret key must be %d bytes, got %d", Secp256k1SecretSize, len(b))
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow {
		return nil, nil, validationf("secp256k1 secret key is not below the group order")
	}
	if scalar.IsZero() {
		return nil, nil, validationf("secp256k1 secret key is zero")
	}
	scalar.Zero()

	privKey, pubKey := btcec.PrivKeyFromBytes(b)
	secret = privKey.Serialize()
	public = pubKey.SerializeCompressed()
	privKey.Zero()

	return secret, public, nil
}

// secp256k1ParsePublic accepts compressed or uncompressed points and returns
// the compressed form.
func secp256k1ParsePublic(b []byte) ([]byte, error) {
	if len(b) != Secp256k1PublicSize && len(b) != Secp256k1FullPubSize {
		return nil, validationf("secp256k1 public key must be %d or %d bytes, got %d",
			Secp256k1PublicSize, Secp256k1FullPubSize, len(b))
	}

	pubKey, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, validationf("secp256k1 public key is not a valid curve point: %v", err)
	}
	return pubKey.SerializeCompressed(), nil
}

// secp256k1Sign signs SHA-256(message) with RFC 6979 ECDSA and returns the
// 64-byte R‖S form. btcec produces canonical low-S signatures.
func secp256k1Sign(secret, message []byte) ([]byte, error) {
	privKey, _ := btcec.PrivKeyFromBytes(secret)
	defer privKey.Zero()

	hash := sha256.Sum256(message)
	sig := ecdsa.Sign(privKey, hash[:])

	r, s := sig.R(), sig.S()
	out := make([]byte, Secp256k1SigSize)
	r.PutBytesUnchecked(out[:32])
	s.PutBytesUnchecked(out[32:])
	return out, nil
}

// secp256k1Verify verifies a 64-byte R‖S signature over SHA-256(message).
func secp256k1Verify(public, message, signature []byte) (bool, error) {
	if len(signature) != Secp256k1SigSize {
		return false, nil
	}

	pubKey, err := btcec.ParsePubKey(public)
	if err != nil {
		return false, validationf("secp256k1 public key is not a valid curve point: %v", err)
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return false, nil
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return false, nil
	}

	hash := sha256.Sum256(message)
	return ecdsa.NewSignature(&r, &s).Verify(hash[:], pubKey), nil
}
