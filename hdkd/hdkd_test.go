package hdkd

import (
	"bytes"
	"context"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// devSeed is the mini secret of Substrate's development phrase.
const devSeed = "fac7959dbfe72f052e5a0c3c8d6530f202b02fd8f9f5ca3580ec8deb7797479e"

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func padded(prefix []byte) ChainCode {
	var cc ChainCode
	copy(cc[:], prefix)
	return cc
}

func TestChainCodeFromDeriveIndex(t *testing.T) {
	ten := padded([]byte{0x0a})
	hashed := mustHex(t, "41db096e15f03b135b04e99e848e0f76cb3739c35ffe07e3679df37867bcb573")

	tests := []struct {
		name  string
		index interface{}
		want  ChainCode
	}{
		{"zero", 0, ChainCode{}},
		{"int", 10, ten},
		{"uint64", uint64(10), ten},
		{"big int", big.NewInt(10), ten},
		{"multi-byte number", 0x0102, padded([]byte{0x02, 0x01})},
		{"plain string", "short", padded(mustHex(t, "1473686f7274"))},
		{"hex string", "0x0102", padded([]byte{0x01, 0x02})},
		{"invalid hex falls back to text", "0xzz", padded(append([]byte{4 << 2}, "0xzz"...))},
		{"short bytes", []byte{1, 2, 3}, padded([]byte{1, 2, 3})},
		{"exactly 32 bytes", bytes.Repeat([]byte{7}, 32), padded(bytes.Repeat([]byte{7}, 32))},
		{"long bytes hashed", bytes.Repeat([]byte{0xff}, 64), padded(hashed)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ChainCodeFromDeriveIndex(tt.index)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChainCodeFromDeriveIndexMaxUint256(t *testing.T) {
	maxU256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	cc, err := ChainCodeFromDeriveIndex(maxU256)
	require.NoError(t, err)
	assert.Equal(t, padded(bytes.Repeat([]byte{0xff}, 32)), cc)
}

func TestChainCodeFromDeriveIndexRejects(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	var nilInt *big.Int

	for name, index := range map[string]interface{}{
		"negative int":     -1,
		"negative big":     big.NewInt(-5),
		"over 256 bits":    tooBig,
		"nil big int":      nilInt,
		"unsupported type": 1.5,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ChainCodeFromDeriveIndex(index)
			assert.ErrorIs(t, err, crypto.ErrValidation)
		})
	}
}

func TestCompactLength(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{5, []byte{0x14}},
		{63, []byte{0xfc}},
		{64, []byte{0x01, 0x01}},
		{16383, []byte{0xfd, 0xff}},
		{16384, []byte{0x02, 0x00, 0x01, 0x00}},
	}
	for _, tt := range tests {
		got, err := compactLength(tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "n=%d", tt.n)
	}
}

func TestEd25519DeriveHardenedKeyKnownVector(t *testing.T) {
	root, err := crypto.PrivateKeyFromSeed(crypto.Ed25519, mustHex(t, devSeed))
	require.NoError(t, err)

	alice, err := Ed25519DeriveHardenedKey(root, "Alice")
	require.NoError(t, err)

	assert.Equal(t, "abf8e5bdbe30c65656c0a3cbd181ff8a56294a69dfedd27982aace4a76909115",
		hex.EncodeToString(alice.Bytes()[:crypto.Ed25519SeedSize]))
	assert.Equal(t, "88dc3417d5058ec4b4503e0c12ea1a0a89be200fe98922423d4334014fa6b0ee",
		hex.EncodeToString(alice.PublicKey().Bytes()))
}

func TestDerivePathMatchesSingleStep(t *testing.T) {
	root, err := crypto.PrivateKeyFromSeed(crypto.Ed25519, mustHex(t, devSeed))
	require.NoError(t, err)

	viaPath, err := DerivePath(context.Background(), root, "//Alice")
	require.NoError(t, err)
	direct, err := Ed25519DeriveHardenedKey(root, "Alice")
	require.NoError(t, err)
	assert.True(t, viaPath.Equal(direct))

	nested, err := DerivePath(context.Background(), root, "//Alice//1")
	require.NoError(t, err)
	step, err := Ed25519DeriveHardenedKey(direct, 1)
	require.NoError(t, err)
	assert.True(t, nested.Equal(step))
}

func TestSR25519DeriveHardenedKey(t *testing.T) {
	ctx := context.Background()
	backend := crypto.DefaultSR25519Backend()

	root, err := crypto.PrivateKeyFromSeed(crypto.SR25519, mustHex(t, devSeed), crypto.WithSR25519Backend(backend))
	require.NoError(t, err)

	a1, err := SR25519DeriveHardenedKey(ctx, backend, root, "Alice")
	require.NoError(t, err)
	a2, err := SR25519DeriveHardenedKey(ctx, nil, root, "Alice")
	require.NoError(t, err)
	bob, err := SR25519DeriveHardenedKey(ctx, backend, root, "Bob")
	require.NoError(t, err)

	assert.True(t, a1.Equal(a2), "derivation must be deterministic")
	assert.False(t, a1.Equal(bob))
	assert.False(t, a1.PublicKey().Equal(root.PublicKey()))
	assert.Equal(t, crypto.SR25519, a1.Curve())

	sig, err := a1.SignContext(ctx, []byte("child"))
	require.NoError(t, err)
	ok, err := a1.PublicKey().VerifyContext(ctx, []byte("child"), sig)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSR25519DerivePathKnownVector(t *testing.T) {
	ctx := context.Background()
	root, err := crypto.PrivateKeyFromSeed(crypto.SR25519, mustHex(t, devSeed))
	require.NoError(t, err)
	assert.Equal(t, "46ebddef8cd9bb167dc30878d7113b7e168e6f0646beffd77d69d39bad76b47a",
		hex.EncodeToString(root.PublicKey().Bytes()))

	alice, err := DerivePath(ctx, root, "//Alice")
	require.NoError(t, err)
	assert.Equal(t, "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d",
		hex.EncodeToString(alice.PublicKey().Bytes()))

	direct, err := SR25519DeriveHardenedKey(ctx, nil, root, "Alice")
	require.NoError(t, err)
	assert.True(t, direct.Equal(alice))
}

func TestSR25519DeriveWaitsForBackend(t *testing.T) {
	failing := crypto.NewSR25519BackendWithInit(func() error { return assert.AnError })
	root, err := crypto.PrivateKeyFromSeed(crypto.SR25519, mustHex(t, devSeed), crypto.WithSR25519Backend(failing))
	require.NoError(t, err)

	_, err = SR25519DeriveHardenedKey(context.Background(), failing, root, 0)
	assert.ErrorIs(t, err, crypto.ErrInitialization)
}

func TestDeriveHardUnsupportedCurve(t *testing.T) {
	key, err := crypto.PrivateKeyFromSeed(crypto.Secp256k1, bytes.Repeat([]byte{1}, 32))
	require.NoError(t, err)

	_, err = NewExtendedPrivateKey(key).DeriveHard(context.Background(), 1)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedKey)

	_, err = Ed25519DeriveHardenedKey(key, 1)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedKey)
}

func TestExtendedPrivateKeyBytes(t *testing.T) {
	key, err := crypto.PrivateKeyFromSeed(crypto.Ed25519, mustHex(t, devSeed))
	require.NoError(t, err)

	ext := NewExtendedPrivateKey(key)
	assert.Equal(t, key.Bytes(), ext.Bytes())
	assert.True(t, ext.PrivateKey().Equal(key))
}

func TestParsePath(t *testing.T) {
	junctions, err := ParsePath("//alice//1//0x0102")
	require.NoError(t, err)
	require.Len(t, junctions, 3)

	assert.Equal(t, "alice", junctions[0].Name)
	assert.True(t, junctions[0].Hard)
	assert.Equal(t, padded(append([]byte{5 << 2}, "alice"...)), junctions[0].ChainCode)
	assert.Equal(t, padded([]byte{1}), junctions[1].ChainCode)
	assert.Equal(t, padded([]byte{1, 2}), junctions[2].ChainCode)

	empty, err := ParsePath("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestParsePathErrors(t *testing.T) {
	tests := []struct {
		path    string
		wantErr error
	}{
		{"alice", crypto.ErrValidation},
		{"//", crypto.ErrValidation},
		{"//alice///pw", crypto.ErrValidation},
		{"/soft", crypto.ErrUnsupportedKey},
		{"//hard/soft", crypto.ErrUnsupportedKey},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := ParsePath(tt.path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
