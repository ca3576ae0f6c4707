// Package crypto implements the curve-agnostic key model of keyseal.
//
// A single [PublicKey]/[PrivateKey] pair of value types spans three unrelated
// elliptic-curve families: Ed25519, secp256k1 and SR25519 (Schnorrkel over
// Ristretto255). Keys are immutable once constructed and safe to share
// between goroutines.
//
// # Key Generation
//
// Keys are created from fresh entropy, from a deterministic seed, or parsed
// from their raw encoding:
//
//	priv, err := crypto.GenerateKey(crypto.Ed25519, crypto.DefaultRandom())
//	priv, err := crypto.PrivateKeyFromSeed(crypto.SR25519, seed)
//	pub, err := crypto.PublicKeyFromBytes(crypto.Secp256k1, raw)
//
// GenerateKey reads exactly the curve's seed length from the random source,
// so a deterministic reader yields a deterministic key.
//
// # Signatures
//
//	sig, err := priv.Sign(message)
//	ok, err := priv.PublicKey().Verify(message, sig)
//
// Ed25519 follows RFC 8032. secp256k1 signs SHA-256(message) with ECDSA and
// returns the 64-byte R‖S form. SR25519 uses the "substrate" signing context.
//
// # SR25519 Backend
//
// SR25519 operations run behind an [SR25519Backend] handle. The handle has a
// one-time readiness step started by the first caller of EnsureReady; every
// caller waits on the same completion and later calls return immediately.
// Components accept a handle through [WithSR25519Backend]; the default is the
// process-wide [DefaultSR25519Backend].
//
// # Errors
//
// Every failure wraps one of [ErrValidation], [ErrUnsupportedKey],
// [ErrInvalidFormat], [ErrKeyMismatch], [ErrDecryption] or
// [ErrInitialization], usually inside an [OpError]. Use errors.Is to test.
//
// # Secure Memory Handling
//
// Intermediate secrets are wiped with [SecureWipe]. [PrivateKey.Wipe] zeroes
// a key's secret bytes when the caller is finished with it.
package crypto
