package crypto

// Curve identifies one of the elliptic-curve families supported by keyseal.
type Curve uint8

const (
	// CurveUnknown is the zero value and never a valid curve.
	CurveUnknown Curve = iota
	// Ed25519 is the Edwards curve signature scheme of RFC 8032.
	Ed25519
	// Secp256k1 is the Koblitz curve used by Bitcoin and Ethereum.
	Secp256k1
	// SR25519 is Schnorrkel signatures over Ristretto255.
	SR25519
)

// Key sizes in bytes.
const (
	Ed25519SeedSize      = 32
	Ed25519SecretKeySize = 64
	Ed25519PublicKeySize = 32
	Ed25519SignatureSize = 64
	Secp256k1SeedSize    = 32
	Secp256k1SecretSize  = 32
	Secp256k1PublicSize  = 33
	Secp256k1FullPubSize = 65
	Secp256k1SigSize     = 64
	SR25519SeedSize      = 32
	SR25519SecretKeySize = 64
	SR25519PublicKeySize = 32
	SR25519KeypairSize   = SR25519SecretKeySize + SR25519PublicKeySize
	SR25519SignatureSize = 64
	SharedSecretSize     = 32
	MinPublicKeySize     = 32
)

// Curves returns every supported curve in a stable order.
func Curves() []Curve {
	return []Curve{Ed25519, Secp256k1, SR25519}
}

// IsValid reports whether c is one of the supported curves.
func (c Curve) IsValid() bool {
	switch c {
	case Ed25519, Secp256k1, SR25519:
		return true
	default:
		return false
	}
}

// String returns the string representation of the curve.
func (c Curve) String() string {
	switch c {
	case Ed25519:
		return "ed25519"
	case Secp256k1:
		return "secp256k1"
	case SR25519:
		return "sr25519"
	default:
		return "unknown"
	}
}

// SeedSize returns the number of random bytes consumed by GenerateKey.
func (c Curve) SeedSize() (int, error) {
	switch c {
	case Ed25519:
		return Ed25519SeedSize, nil
	case Secp256k1:
		return Secp256k1SeedSize, nil
	case SR25519:
		return SR25519SeedSize, nil
	default:
		return 0, UnsupportedCurve(c)
	}
}

// PublicKeySize returns the canonical public key length for the curve.
func (c Curve) PublicKeySize() (int, error) {
	switch c {
	case Ed25519:
		return Ed25519PublicKeySize, nil
	case Secp256k1:
		return Secp256k1PublicSize, nil
	case SR25519:
		return SR25519PublicKeySize, nil
	default:
		return 0, UnsupportedCurve(c)
	}
}

// SecretKeySize returns the canonical secret key length for the curve.
func (c Curve) SecretKeySize() (int, error) {
	switch c {
	case Ed25519:
		return Ed25519SecretKeySize, nil
	case Secp256k1:
		return Secp256k1SecretSize, nil
	case SR25519:
		return SR25519SecretKeySize, nil
	default:
		return 0, UnsupportedCurve(c)
	}
}
