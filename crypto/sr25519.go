package crypto

import (
	"crypto/sha512"
	"crypto/subtle"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/gtank/ristretto255"
)

// SR25519SigningContext is the signing context used for SR25519 signatures,
// shared with Substrate-based implementations.
var SR25519SigningContext = []byte("substrate")

// sr25519ExpandSeed performs schnorrkel's Ed25519-mode mini secret expansion
// and returns the secret in its Ed25519 byte form: the clamped scalar, not yet
// divided by the cofactor, followed by the signing nonce. This is the layout
// Substrate tooling uses for serialized sr25519 keypairs.
func sr25519ExpandSeed(seed []byte) []byte {
	h := sha512.Sum512(seed)
	defer ZeroBytes(h[:])

	secret := make([]byte, SR25519SecretKeySize)
	copy(secret, h[:])

	key := secret[:32]
	key[0] &= 248
	key[31] &= 63
	key[31] |= 64

	return secret
}

func sr25519FromSeed(seed []byte) (secret, public []byte, err error) {
	if len(seed) != SR25519SeedSize {
		return nil, nil, validationf("sr25519 seed must be %d bytes, got %d", SR25519SeedSize, len(seed))
	}

	secret = sr25519ExpandSeed(seed)
	public, err = sr25519PublicFromSecret(secret)
	if err != nil {
		ZeroBytes(secret)
		return nil, nil, err
	}
	return secret, public, nil
}

// sr25519FromSecret accepts the 64-byte Ed25519-form scalar‖nonce secret or
// the 96-byte keypair; for the latter the embedded public key must match.
func sr25519FromSecret(b []byte) (secret, public []byte, err error) {
	if len(b) != SR25519SecretKeySize && len(b) != SR25519KeypairSize {
		return nil, nil, validationf("sr25519 secret key must be %d or %d bytes, got %d",
			SR25519SecretKeySize, SR25519KeypairSize, len(b))
	}

	secret = append([]byte(nil), b[:SR25519SecretKeySize]...)
	if _, err := sr25519Scalar(secret); err != nil {
		ZeroBytes(secret)
		return nil, nil, err
	}

	public, err = sr25519PublicFromSecret(secret)
	if err != nil {
		ZeroBytes(secret)
		return nil, nil, err
	}

	if len(b) == SR25519KeypairSize && subtle.ConstantTimeCompare(public, b[SR25519SecretKeySize:]) != 1 {
		ZeroBytes(secret)
		return nil, nil, validationf("sr25519 keypair embeds a public key that does not match its secret")
	}
	return secret, public, nil
}

func sr25519ParsePublic(b []byte) ([]byte, error) {
	if len(b) != SR25519PublicKeySize {
		return nil, validationf("sr25519 public key must be %d bytes, got %d", SR25519PublicKeySize, len(b))
	}
	if _, err := sr25519PublicKey(b); err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// sr25519SecretKey builds the schnorrkel secret key from an Ed25519-form
// scalar‖nonce; schnorrkel divides the scalar by the cofactor.
func sr25519SecretKey(secret []byte) *schnorrkel.SecretKey {
	var b [SR25519SecretKeySize]byte
	copy(b[:], secret[:SR25519SecretKeySize])
	defer ZeroBytes(b[:])
	return schnorrkel.NewSecretKeyFromEd25519Bytes(b)
}

func sr25519PublicKey(b []byte) (*schnorrkel.PublicKey, error) {
	var enc [SR25519PublicKeySize]byte
	copy(enc[:], b)

	pub := &schnorrkel.PublicKey{}
	if err := pub.Decode(enc); err != nil {
		return nil, validationf("sr25519 public key is not a valid ristretto point: %v", err)
	}
	return pub, nil
}

// sr25519Scalar decodes the secret scalar of an Ed25519-form secret. The
// stored scalar must be a multiple of the cofactor and reduce to a canonical
// scalar once divided.
func sr25519Scalar(secret []byte) (*ristretto255.Scalar, error) {
	if secret[0]&0b111 != 0 {
		return nil, validationf("sr25519 secret scalar is not a multiple of the cofactor")
	}

	key := sr25519SecretKey(secret).Encode()
	defer ZeroBytes(key[:])

	s, err := schnorrkel.ScalarFromBytes(key)
	if err != nil {
		return nil, validationf("sr25519 secret scalar is not canonical: %v", err)
	}
	return s, nil
}

func sr25519PublicFromSecret(secret []byte) ([]byte, error) {
	pub, err := sr25519SecretKey(secret).Public()
	if err != nil {
		return nil, validationf("sr25519 public key derivation failed: %v", err)
	}
	enc := pub.Encode()
	return enc[:], nil
}

func sr25519Sign(secret, message []byte) ([]byte, error) {
	transcript := schnorrkel.NewSigningContext(SR25519SigningContext, message)
	sig, err := sr25519SecretKey(secret).Sign(transcript)
	if err != nil {
		return nil, err
	}
	enc := sig.Encode()
	return enc[:], nil
}

func sr25519Verify(public, message, signature []byte) (bool, error) {
	if len(signature) != SR25519SignatureSize {
		return false, nil
	}

	pub, err := sr25519PublicKey(public)
	if err != nil {
		return false, err
	}

	var enc [SR25519SignatureSize]byte
	copy(enc[:], signature)
	sig := &schnorrkel.Signature{}
	if err := sig.Decode(enc); err != nil {
		// Signatures without the schnorrkel marker bit are simply invalid.
		return false, nil
	}

	transcript := schnorrkel.NewSigningContext(SR25519SigningContext, message)
	return pub.Verify(sig, transcript)
}

// SR25519Agree computes the Ristretto Diffie–Hellman point secret·P for an
// SR25519 secret (scalar‖nonce) and a counterpart public key, returning the
// compressed 32-byte encoding.
func SR25519Agree(secret, public []byte) ([]byte, error) {
	if len(secret) != SR25519SecretKeySize {
		return nil, validationf("sr25519 secret key must be %d bytes, got %d", SR25519SecretKeySize, len(secret))
	}
	if len(public) != SR25519PublicKeySize {
		return nil, validationf("sr25519 public key must be %d bytes, got %d", SR25519PublicKeySize, len(public))
	}

	scalar, err := sr25519Scalar(secret)
	if err != nil {
		return nil, err
	}
	point := ristretto255.NewElement()
	if err := point.Decode(public); err != nil {
		return nil, validationf("sr25519 public key is not a valid ristretto point: %v", err)
	}

	shared := ristretto255.NewElement().ScalarMult(scalar, point)
	return shared.Encode(make([]byte, 0, SharedSecretSize)), nil
}

// SR25519HardDerive applies schnorrkel's hard junction derivation to a
// secret with the given chain code and returns the child mini secret (seed).
func SR25519HardDerive(secret []byte, chainCode [32]byte) ([]byte, error) {
	if len(secret) != SR25519SecretKeySize {
		return nil, validationf("sr25519 secret key must be %d bytes, got %d", SR25519SecretKeySize, len(secret))
	}

	mini, _, err := sr25519SecretKey(secret).HardDeriveMiniSecretKey(nil, chainCode)
	if err != nil {
		return nil, err
	}
	seed := mini.Encode()
	return seed[:], nil
}
