package secretbox

import (
	"bytes"
	"testing"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, KeySize)

	tests := []struct {
		name    string
		message []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hi")},
		{"binary", []byte{0, 1, 2, 0xff, 0xfe}},
		{"large", bytes.Repeat([]byte("x"), 64*1024)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := EasySeal(tt.message, key, nil)
			require.NoError(t, err)
			assert.Len(t, sealed, NonceSize+len(tt.message)+Overhead)

			opened, err := EasyOpen(sealed, key)
			require.NoError(t, err)
			assert.Equal(t, tt.message, opened)
		})
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	key := bytes.Repeat([]byte{0x22}, KeySize)
	msg := []byte("same message")

	a, err := EasySeal(msg, key, nil)
	require.NoError(t, err)
	b, err := EasySeal(msg, key, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a[:NonceSize], b[:NonceSize])
	assert.NotEqual(t, a, b)
}

func TestSealIsDeterministicGivenRandom(t *testing.T) {
	key := bytes.Repeat([]byte{0x33}, KeySize)
	nonce := bytes.Repeat([]byte{0x44}, NonceSize)

	a, err := EasySeal([]byte("m"), key, bytes.NewReader(nonce))
	require.NoError(t, err)
	b, err := EasySeal([]byte("m"), key, bytes.NewReader(nonce))
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, nonce, a[:NonceSize])

	_, err = EasySeal([]byte("m"), key, bytes.NewReader(nonce[:10]))
	assert.Error(t, err)
}

func TestKeyLengthValidation(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33, 64} {
		_, err := EasySeal([]byte("m"), make([]byte, n), nil)
		assert.ErrorIs(t, err, crypto.ErrValidation, "seal with %d-byte key", n)

		_, err = EasyOpen(make([]byte, 64), make([]byte, n))
		assert.ErrorIs(t, err, crypto.ErrValidation, "open with %d-byte key", n)
	}
}

func TestOpenRejectsShortBox(t *testing.T) {
	key := make([]byte, KeySize)
	_, err := EasyOpen(make([]byte, NonceSize-1), key)
	assert.ErrorIs(t, err, crypto.ErrValidation)

	// A bare nonce fails authentication rather than validation.
	_, err = EasyOpen(make([]byte, NonceSize), key)
	assert.ErrorIs(t, err, crypto.ErrDecryption)
}

func TestOpenDetectsTampering(t *testing.T) {
	key := bytes.Repeat([]byte{0x55}, KeySize)
	sealed, err := EasySeal([]byte("authentic"), key, nil)
	require.NoError(t, err)

	wrongKey := bytes.Repeat([]byte{0x56}, KeySize)
	_, err = EasyOpen(sealed, wrongKey)
	assert.ErrorIs(t, err, crypto.ErrDecryption)

	for _, i := range []int{0, NonceSize, len(sealed) - 1} {
		tampered := append([]byte(nil), sealed...)
		tampered[i] ^= 0x01
		_, err = EasyOpen(tampered, key)
		assert.ErrorIs(t, err, crypto.ErrDecryption, "flipped byte %d", i)
	}
}

func TestSealDoesNotRetainKey(t *testing.T) {
	key := bytes.Repeat([]byte{0x66}, KeySize)
	original := append([]byte(nil), key...)

	_, err := EasySeal([]byte("m"), key, nil)
	require.NoError(t, err)
	assert.Equal(t, original, key, "caller's key must not be modified")
}

func BenchmarkEasySeal(b *testing.B) {
	key := make([]byte, KeySize)
	msg := make([]byte, 1024)

	b.SetBytes(int64(len(msg)))
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := EasySeal(msg, key, nil); err != nil {
			b.Fatal(err)
		}
	}
}
