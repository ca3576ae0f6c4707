// Package hdkd implements hierarchical-deterministic hard key derivation for
// Ed25519 and SR25519 keys, compatible with Substrate-style derivation paths.
//
// A derivation index (number, big integer, byte slice or string) is first
// turned into a 32-byte chain code by ChainCodeFromDeriveIndex. The chain
// code is then mixed with the parent secret by the curve's hard derivation
// function to produce a child seed.
package hdkd

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/opd-ai/keyseal/crypto"
	"golang.org/x/crypto/blake2b"
)

// ChainCodeSize is the length of a chain code in bytes.
const ChainCodeSize = 32

// ChainCode is the 32-byte value mixed into a derivation step.
type ChainCode [ChainCodeSize]byte

// ChainCodeFromDeriveIndex deterministically converts a derivation index into
// a chain code.
//
// Integers (any Go integer kind or *big.Int) are encoded as 256-bit
// little-endian. Strings with a 0x prefix and valid hex are decoded. Other
// strings are SCALE-encoded: compact length prefix followed by UTF-8 bytes.
// Byte slices longer than 32 bytes are hashed with BLAKE2b-256; shorter ones
// are left-aligned in a zero-filled buffer.
func ChainCodeFromDeriveIndex(index interface{}) (ChainCode, error) {
	switch v := index.(type) {
	case []byte:
		return chainCodeFromBytes(v), nil
	case string:
		b, err := stringIndexBytes(v)
		if err != nil {
			return ChainCode{}, err
		}
		return chainCodeFromBytes(b), nil
	case *big.Int:
		if v == nil {
			return ChainCode{}, fmt.Errorf("%w: nil derivation index", crypto.ErrValidation)
		}
		return chainCodeFromInt(v)
	case big.Int:
		return chainCodeFromInt(&v)
	case int:
		return chainCodeFromInt(big.NewInt(int64(v)))
	case int8:
		return chainCodeFromInt(big.NewInt(int64(v)))
	case int16:
		return chainCodeFromInt(big.NewInt(int64(v)))
	case int32:
		return chainCodeFromInt(big.NewInt(int64(v)))
	case int64:
		return chainCodeFromInt(big.NewInt(v))
	case uint:
		return chainCodeFromInt(new(big.Int).SetUint64(uint64(v)))
	case uint8:
		return chainCodeFromInt(new(big.Int).SetUint64(uint64(v)))
	case uint16:
		return chainCodeFromInt(new(big.Int).SetUint64(uint64(v)))
	case uint32:
		return chainCodeFromInt(new(big.Int).SetUint64(uint64(v)))
	case uint64:
		return chainCodeFromInt(new(big.Int).SetUint64(v))
	default:
		return ChainCode{}, fmt.Errorf("%w: unsupported derivation index type %T", crypto.ErrValidation, index)
	}
}

func chainCodeFromInt(n *big.Int) (ChainCode, error) {
	if n.Sign() < 0 {
		return ChainCode{}, fmt.Errorf("%w: negative derivation index %s", crypto.ErrValidation, n)
	}
	if n.BitLen() > 8*ChainCodeSize {
		return ChainCode{}, fmt.Errorf("%w: derivation index exceeds 256 bits", crypto.ErrValidation)
	}

	be := n.FillBytes(make([]byte, ChainCodeSize))
	le := make([]byte, ChainCodeSize)
	for i := range be {
		le[i] = be[ChainCodeSize-1-i]
	}
	return chainCodeFromBytes(le), nil
}

func chainCodeFromBytes(b []byte) ChainCode {
	var cc ChainCode
	if len(b) > ChainCodeSize {
		cc = blake2b.Sum256(b)
		return cc
	}
	copy(cc[:], b)
	return cc
}

// stringIndexBytes decodes 0x-prefixed hex, or SCALE-encodes plain text.
func stringIndexBytes(s string) ([]byte, error) {
	if b, ok := decodeHexIndex(s); ok {
		return b, nil
	}

	prefix, err := compactLength(len(s))
	if err != nil {
		return nil, err
	}
	return append(prefix, s...), nil
}

func decodeHexIndex(s string) ([]byte, bool) {
	if !strings.HasPrefix(s, "0x") {
		return nil, false
	}
	b, err := hex.DecodeString(s[2:])
	if err != nil {
		return nil, false
	}
	return b, true
}

// compactLength returns the SCALE compact encoding of n. Lengths below 64
// encode as the single byte n<<2.
func compactLength(n int) ([]byte, error) {
	switch {
	case n < 1<<6:
		return []byte{byte(n << 2)}, nil
	case n < 1<<14:
		v := uint16(n<<2) | 0b01
		return []byte{byte(v), byte(v >> 8)}, nil
	case n < 1<<30:
		v := uint32(n<<2) | 0b10
		return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}, nil
	default:
		return nil, fmt.Errorf("%w: derivation index of %d bytes is too long", crypto.ErrValidation, n)
	}
}
