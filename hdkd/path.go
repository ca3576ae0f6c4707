package hdkd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/opd-ai/keyseal/crypto"
)

// Junction is one step of a derivation path.
type Junction struct {
	Name      string
	Hard      bool
	ChainCode ChainCode
}

// ParsePath parses a Substrate-style derivation path such as "//alice//1".
// Each "//name" is a hard junction; purely numeric names are encoded as
// numbers. Soft junctions ("/name") are rejected with ErrUnsupportedKey
// because only hardened derivation is implemented.
func ParsePath(path string) ([]Junction, error) {
	var junctions []Junction

	rest := path
	for rest != "" {
		if !strings.HasPrefix(rest, "/") {
			return nil, fmt.Errorf("%w: derivation path %q must start with '/'", crypto.ErrValidation, path)
		}

		hard := strings.HasPrefix(rest, "//")
		if hard {
			rest = rest[2:]
		} else {
			rest = rest[1:]
		}

		end := strings.IndexByte(rest, '/')
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]

		if name == "" {
			return nil, fmt.Errorf("%w: empty junction in derivation path %q", crypto.ErrValidation, path)
		}
		if !hard {
			return nil, fmt.Errorf("%w: soft junction %q is not supported", crypto.ErrUnsupportedKey, name)
		}

		cc, err := junctionChainCode(name)
		if err != nil {
			return nil, err
		}
		junctions = append(junctions, Junction{Name: name, Hard: true, ChainCode: cc})
	}

	return junctions, nil
}

func junctionChainCode(name string) (ChainCode, error) {
	if isDecimal(name) {
		n, ok := new(big.Int).SetString(name, 10)
		if !ok {
			return ChainCode{}, fmt.Errorf("%w: invalid numeric junction %q", crypto.ErrValidation, name)
		}
		return ChainCodeFromDeriveIndex(n)
	}
	return ChainCodeFromDeriveIndex(name)
}

func isDecimal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// DerivePath derives key along every junction of path in order.
func DerivePath(ctx context.Context, key crypto.PrivateKey, path string) (crypto.PrivateKey, error) {
	junctions, err := ParsePath(path)
	if err != nil {
		return crypto.PrivateKey{}, err
	}

	current := NewExtendedPrivateKey(key)
	for _, j := range junctions {
		current, err = current.DeriveHard(ctx, j.ChainCode[:])
		if err != nil {
			return crypto.PrivateKey{}, fmt.Errorf("junction //%s: %w", j.Name, err)
		}
	}
	return current.PrivateKey(), nil
}
