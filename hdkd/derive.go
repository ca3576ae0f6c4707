package hdkd

import (
	"context"
	"fmt"

	"github.com/opd-ai/keyseal/crypto"
	"golang.org/x/crypto/blake2b"
)

// ed25519HDKDPrefix is the SCALE encoding of the string "Ed25519HDKD":
// compact length 11<<2 followed by the ASCII bytes.
var ed25519HDKDPrefix = append([]byte{11 << 2}, "Ed25519HDKD"...)

// ExtendedPrivateKey marks a private key as eligible for hardened child
// derivation.
type ExtendedPrivateKey struct {
	key crypto.PrivateKey
}

// NewExtendedPrivateKey wraps priv for derivation.
func NewExtendedPrivateKey(priv crypto.PrivateKey) ExtendedPrivateKey {
	return ExtendedPrivateKey{key: priv}
}

// PrivateKey returns the wrapped key.
func (k ExtendedPrivateKey) PrivateKey() crypto.PrivateKey {
	return k.key
}

// Bytes returns a copy of the wrapped key's secret encoding.
func (k ExtendedPrivateKey) Bytes() []byte {
	return k.key.Bytes()
}

// DeriveHard derives the hardened child at index. Only Ed25519 and SR25519
// keys support derivation.
func (k ExtendedPrivateKey) DeriveHard(ctx context.Context, index interface{}) (ExtendedPrivateKey, error) {
	var (
		child crypto.PrivateKey
		err   error
	)
	switch k.key.Curve() {
	case crypto.Ed25519:
		child, err = Ed25519DeriveHardenedKey(k.key, index)
	case crypto.SR25519:
		child, err = SR25519DeriveHardenedKey(ctx, k.key.SR25519Backend(), k.key, index)
	default:
		err = &crypto.OpError{Op: "derive", Curve: k.key.Curve(), Err: crypto.UnsupportedCurve(k.key.Curve())}
	}
	if err != nil {
		return ExtendedPrivateKey{}, err
	}
	return ExtendedPrivateKey{key: child}, nil
}

// Ed25519DeriveHardenedKey derives a hardened Ed25519 child. The child seed
// is BLAKE2b-256(SCALE("Ed25519HDKD") ‖ parentSeed ‖ chainCode).
func Ed25519DeriveHardenedKey(parent crypto.PrivateKey, index interface{}) (crypto.PrivateKey, error) {
	if parent.Curve() != crypto.Ed25519 {
		return crypto.PrivateKey{}, &crypto.OpError{Op: "derive", Curve: parent.Curve(), Err: crypto.UnsupportedCurve(parent.Curve())}
	}

	cc, err := ChainCodeFromDeriveIndex(index)
	if err != nil {
		return crypto.PrivateKey{}, &crypto.OpError{Op: "derive", Curve: crypto.Ed25519, Err: err}
	}

	secret := parent.Bytes()
	defer crypto.ZeroBytes(secret)

	seed := ed25519ChildSeed(secret[:crypto.Ed25519SeedSize], cc)
	defer crypto.ZeroBytes(seed)

	crypto.NewPackageLogger("hdkd", "Ed25519DeriveHardenedKey").
		WithCurve(crypto.Ed25519).
		Debug("Derived hardened child seed")

	return crypto.PrivateKeyFromSeed(crypto.Ed25519, seed)
}

func ed25519ChildSeed(parentSeed []byte, cc ChainCode) []byte {
	h, _ := blake2b.New256(nil)
	h.Write(ed25519HDKDPrefix)
	h.Write(parentSeed)
	h.Write(cc[:])
	return h.Sum(nil)
}

// SR25519DeriveHardenedKey derives a hardened SR25519 child using schnorrkel's
// hard junction derivation. It waits for backend to become ready; a nil
// backend falls back to the parent's.
func SR25519DeriveHardenedKey(ctx context.Context, backend *crypto.SR25519Backend, parent crypto.PrivateKey, index interface{}) (crypto.PrivateKey, error) {
	if parent.Curve() != crypto.SR25519 {
		return crypto.PrivateKey{}, &crypto.OpError{Op: "derive", Curve: parent.Curve(), Err: crypto.UnsupportedCurve(parent.Curve())}
	}
	if backend == nil {
		backend = parent.SR25519Backend()
	}
	if err := backend.EnsureReady(ctx); err != nil {
		return crypto.PrivateKey{}, &crypto.OpError{Op: "derive", Curve: crypto.SR25519, Err: err}
	}

	cc, err := ChainCodeFromDeriveIndex(index)
	if err != nil {
		return crypto.PrivateKey{}, &crypto.OpError{Op: "derive", Curve: crypto.SR25519, Err: err}
	}

	secret := parent.Bytes()
	defer crypto.ZeroBytes(secret)

	seed, err := crypto.SR25519HardDerive(secret, cc)
	if err != nil {
		return crypto.PrivateKey{}, &crypto.OpError{Op: "derive", Curve: crypto.SR25519, Err: fmt.Errorf("hard junction: %w", err)}
	}
	defer crypto.ZeroBytes(seed)

	crypto.NewPackageLogger("hdkd", "SR25519DeriveHardenedKey").
		WithCurve(crypto.SR25519).
		Debug("Derived hardened child mini secret")

	return crypto.PrivateKeyFromSeed(crypto.SR25519, seed, crypto.WithSR25519Backend(backend))
}
