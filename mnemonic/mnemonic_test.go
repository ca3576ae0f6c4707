package mnemonic

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devPhrase = "bottom drive obey lake curtain smoke basket hold race lonely fit walk"

func TestToMiniSecretDevPhrase(t *testing.T) {
	seed, err := ToMiniSecret(devPhrase, "")
	require.NoError(t, err)
	assert.Equal(t, "fac7959dbfe72f052e5a0c3c8d6530f202b02fd8f9f5ca3580ec8deb7797479e", hex.EncodeToString(seed))
}

func TestToMiniSecretPasswordAndWhitespace(t *testing.T) {
	plain, err := ToMiniSecret(devPhrase, "")
	require.NoError(t, err)

	spaced, err := ToMiniSecret("  "+strings.ReplaceAll(devPhrase, " ", "\t ")+"\n", "")
	require.NoError(t, err)
	assert.Equal(t, plain, spaced)

	withPassword, err := ToMiniSecret(devPhrase, "secret")
	require.NoError(t, err)
	assert.NotEqual(t, plain, withPassword)
}

func TestToMiniSecretRejectsInvalid(t *testing.T) {
	for _, phrase := range []string{
		"",
		"not a real mnemonic phrase at all",
		strings.Replace(devPhrase, "walk", "xyzzy", 1),
	} {
		_, err := ToMiniSecret(phrase, "")
		assert.ErrorIs(t, err, ErrInvalidMnemonic, "phrase %q", phrase)
		assert.False(t, IsValid(phrase))
	}
}

func TestNewIsDeterministic(t *testing.T) {
	entropy := bytes.Repeat([]byte{0x5a}, 32)

	p1, err := New(256, bytes.NewReader(entropy))
	require.NoError(t, err)
	p2, err := New(256, bytes.NewReader(entropy))
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
	assert.Len(t, strings.Fields(p1), 24)
	assert.True(t, IsValid(p1))
}

func TestNewWordCounts(t *testing.T) {
	tests := []struct {
		bits  int
		words int
	}{
		{128, 12},
		{160, 15},
		{192, 18},
		{224, 21},
		{256, 24},
	}
	for _, tt := range tests {
		phrase, err := New(tt.bits, nil)
		require.NoError(t, err)
		assert.Len(t, strings.Fields(phrase), tt.words, "bits=%d", tt.bits)
	}
}

func TestNewRejectsBadSize(t *testing.T) {
	for _, bits := range []int{0, 96, 130, 288} {
		_, err := New(bits, nil)
		assert.ErrorIs(t, err, crypto.ErrValidation, "bits=%d", bits)
	}
}

func TestNewShortRandom(t *testing.T) {
	_, err := New(128, bytes.NewReader([]byte{1, 2, 3}))
	assert.Error(t, err)
}

func TestPrivateKeyFromPhrase(t *testing.T) {
	for _, curve := range crypto.Curves() {
		t.Run(curve.String(), func(t *testing.T) {
			k1, err := PrivateKeyFromPhrase(curve, devPhrase, "")
			require.NoError(t, err)
			k2, err := PrivateKeyFromPhrase(curve, devPhrase, "")
			require.NoError(t, err)

			assert.True(t, k1.Equal(k2))
			assert.Equal(t, curve, k1.Curve())
		})
	}

	ed, err := PrivateKeyFromPhrase(crypto.Ed25519, devPhrase, "")
	require.NoError(t, err)
	assert.Equal(t, "345071da55e5dccefaaa440339415ef9f2663338a38f7da0df21be5ab4e055ef",
		hex.EncodeToString(ed.PublicKey().Bytes()))
}
