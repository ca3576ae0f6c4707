package factory

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/opd-ai/keyseal/cipher"
	"github.com/opd-ai/keyseal/crypto"
	"github.com/opd-ai/keyseal/interfaces"
	"github.com/opd-ai/keyseal/limits"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCipherFactoryDefaults(t *testing.T) {
	f := NewCipherFactory()
	require.NotNil(t, f)

	config := f.GetCurrentConfig()
	assert.Equal(t, "ed25519", config.DefaultCurve)
	assert.Equal(t, limits.MaxPayload, config.MaxPayload)
	assert.Equal(t, 0, config.ReadyTimeout)
	assert.NoError(t, config.Validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name   string
		envKey string
		value  string
		check  func(t *testing.T, c *interfaces.CipherConfig)
	}{
		{
			name: "curve override", envKey: "KEYSEAL_DEFAULT_CURVE", value: "SR25519",
			check: func(t *testing.T, c *interfaces.CipherConfig) { assert.Equal(t, "sr25519", c.DefaultCurve) },
		},
		{
			name: "curve override is normalized", envKey: "KEYSEAL_DEFAULT_CURVE", value: " Secp256k1 ",
			check: func(t *testing.T, c *interfaces.CipherConfig) { assert.Equal(t, "secp256k1", c.DefaultCurve) },
		},
		{
			name: "invalid curve ignored", envKey: "KEYSEAL_DEFAULT_CURVE", value: "p256",
			check: func(t *testing.T, c *interfaces.CipherConfig) { assert.Equal(t, "ed25519", c.DefaultCurve) },
		},
		{
			name: "max payload override", envKey: "KEYSEAL_MAX_PAYLOAD", value: "4096",
			check: func(t *testing.T, c *interfaces.CipherConfig) { assert.Equal(t, 4096, c.MaxPayload) },
		},
		{
			name: "max payload not a number", envKey: "KEYSEAL_MAX_PAYLOAD", value: "big",
			check: func(t *testing.T, c *interfaces.CipherConfig) { assert.Equal(t, limits.MaxPayload, c.MaxPayload) },
		},
		{
			name: "max payload out of bounds", envKey: "KEYSEAL_MAX_PAYLOAD", value: "0",
			check: func(t *testing.T, c *interfaces.CipherConfig) { assert.Equal(t, limits.MaxPayload, c.MaxPayload) },
		},
		{
			name: "ready timeout override", envKey: "KEYSEAL_READY_TIMEOUT", value: "250",
			check: func(t *testing.T, c *interfaces.CipherConfig) { assert.Equal(t, 250, c.ReadyTimeout) },
		},
		{
			name: "ready timeout negative", envKey: "KEYSEAL_READY_TIMEOUT", value: "-5",
			check: func(t *testing.T, c *interfaces.CipherConfig) { assert.Equal(t, 0, c.ReadyTimeout) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.value)
			tt.check(t, NewCipherFactory().GetCurrentConfig())
		})
	}
}

func TestUpdateConfig(t *testing.T) {
	f := NewCipherFactory()

	assert.Error(t, f.UpdateConfig(nil))
	assert.ErrorIs(t, f.UpdateConfig(&interfaces.CipherConfig{DefaultCurve: "nope", MaxPayload: 1}),
		interfaces.ErrInvalidCurve)

	config := &interfaces.CipherConfig{DefaultCurve: " Secp256k1", MaxPayload: 64}
	require.NoError(t, f.UpdateConfig(config))
	config.MaxPayload = 1
	assert.Equal(t, 64, f.GetCurrentConfig().MaxPayload, "factory must hold its own copy")

	key, err := f.GenerateKey()
	require.NoError(t, err)
	assert.Equal(t, crypto.Secp256k1, key.Curve())

	enc, err := f.NewSecretKeyEncrypter(key)
	require.NoError(t, err)
	_, err = enc.Encrypt(context.Background(), make([]byte, 65))
	assert.ErrorIs(t, err, crypto.ErrValidation)
}

func TestFactoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := NewCipherFactory()
	msg := []byte("factory round trip")

	for _, curve := range crypto.Curves() {
		t.Run(curve.String(), func(t *testing.T) {
			recipient, err := crypto.GenerateKey(curve, nil)
			require.NoError(t, err)

			enc, err := f.NewPublicKeyEncrypter(recipient.PublicKey())
			require.NoError(t, err)
			dec, err := f.NewDecrypter(recipient)
			require.NoError(t, err)

			frame, err := enc.Encrypt(ctx, msg)
			require.NoError(t, err)
			assert.Equal(t, cipher.TagECDH, frame[0])

			plain, err := dec.Decrypt(ctx, frame)
			require.NoError(t, err)
			assert.Equal(t, msg, plain)

			skEnc, err := f.NewSecretKeyEncrypter(recipient)
			if curve == crypto.SR25519 {
				assert.ErrorIs(t, err, crypto.ErrUnsupportedKey)
				return
			}
			require.NoError(t, err)

			frame, err = skEnc.Encrypt(ctx, msg)
			require.NoError(t, err)
			assert.Equal(t, cipher.TagSecretKey, frame[0])

			plain, err = dec.Decrypt(ctx, frame)
			require.NoError(t, err)
			assert.Equal(t, msg, plain)
		})
	}
}

func TestDecrypterRejectsUnknownScheme(t *testing.T) {
	f := NewCipherFactory()
	key, err := crypto.GenerateKey(crypto.Ed25519, nil)
	require.NoError(t, err)

	dec, err := f.NewDecrypter(key)
	require.NoError(t, err)

	_, err = dec.Decrypt(context.Background(), bytes.Repeat([]byte{0x01}, 64))
	assert.ErrorIs(t, err, crypto.ErrInvalidFormat)
	_, err = dec.Decrypt(context.Background(), nil)
	assert.ErrorIs(t, err, crypto.ErrInvalidFormat)
}

func TestSR25519DecrypterRejectsSecretKeyFrames(t *testing.T) {
	f := NewCipherFactory()
	key, err := crypto.GenerateKey(crypto.SR25519, nil)
	require.NoError(t, err)

	dec, err := f.NewDecrypter(key)
	require.NoError(t, err)

	frame := append([]byte{cipher.TagSecretKey, 0xe3}, make([]byte, 40)...)
	_, err = dec.Decrypt(context.Background(), frame)
	assert.ErrorIs(t, err, crypto.ErrUnsupportedKey)
}

func TestReadyTimeoutBoundsBackendWait(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	backend := crypto.NewSR25519BackendWithInit(func() error {
		<-block
		return nil
	})

	f := NewCipherFactory(WithSR25519Backend(backend))
	require.NoError(t, f.UpdateConfig(&interfaces.CipherConfig{
		DefaultCurve: "sr25519",
		MaxPayload:   1024,
		ReadyTimeout: 20,
	}))

	seedKey, err := crypto.PrivateKeyFromSeed(crypto.SR25519, bytes.Repeat([]byte{1}, 32),
		crypto.WithSR25519Backend(backend))
	require.NoError(t, err)

	enc, err := f.NewPublicKeyEncrypter(seedKey.PublicKey())
	require.NoError(t, err)

	start := time.Now()
	_, err = enc.Encrypt(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
