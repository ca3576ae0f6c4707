package cipher

import (
	"context"
	"fmt"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/opd-ai/keyseal/ecdh"
	"github.com/opd-ai/keyseal/multikey"
	"github.com/opd-ai/keyseal/secretbox"
)

// PublicKeyEncrypter encrypts content to a recipient public key with an
// ephemeral Diffie–Hellman key, using the 0x2A frame.
type PublicKeyEncrypter struct {
	exchange  ecdh.KeyExchange
	recipient crypto.PublicKey
	options   options
}

// PublicKeyDecrypter opens 0x2A frames with the recipient's private key.
type PublicKeyDecrypter struct {
	exchange  ecdh.KeyExchange
	recipient crypto.PrivateKey
	options   options
}

// NewPublicKeyEncrypter creates an encrypter for recipient. The exchange
// must operate on the recipient's curve.
func NewPublicKeyEncrypter(exchange ecdh.KeyExchange, recipient crypto.PublicKey, opts ...Option) (*PublicKeyEncrypter, error) {
	if exchange == nil || exchange.Curve() != recipient.Curve() {
		return nil, fmt.Errorf("%w: key exchange does not match %s recipient key",
			crypto.ErrUnsupportedKey, recipient.Curve())
	}
	if _, err := multikey.IDOf(recipient.Curve()); err != nil {
		return nil, err
	}
	return &PublicKeyEncrypter{exchange: exchange, recipient: recipient, options: applyOptions(opts)}, nil
}

// NewPublicKeyDecrypter creates a decrypter for recipient's private key.
func NewPublicKeyDecrypter(exchange ecdh.KeyExchange, recipient crypto.PrivateKey, opts ...Option) (*PublicKeyDecrypter, error) {
	if exchange == nil || exchange.Curve() != recipient.Curve() {
		return nil, fmt.Errorf("%w: key exchange does not match %s recipient key",
			crypto.ErrUnsupportedKey, recipient.Curve())
	}
	if _, err := multikey.IDOf(recipient.Curve()); err != nil {
		return nil, err
	}
	return &PublicKeyDecrypter{exchange: exchange, recipient: recipient, options: applyOptions(opts)}, nil
}

// Encrypt seals plain under a fresh ephemeral key and embeds the ephemeral
// public key so the recipient can repeat the exchange. The ephemeral private
// key and the shared secret are wiped before returning.
func (e *PublicKeyEncrypter) Encrypt(ctx context.Context, plain []byte) (EncryptedContent, error) {
	logger := crypto.NewPackageLogger("cipher", "PublicKeyEncrypter.Encrypt").WithCurve(e.recipient.Curve())

	if err := checkPlaintext(plain, e.options.maxSize); err != nil {
		return nil, err
	}

	ephemeral, err := e.exchange.EphemeralKey()
	if err != nil {
		logger.WithError(err, "ephemeral key").Warn("Failed to generate ephemeral key")
		return nil, err
	}
	defer ephemeral.Wipe()

	shared, err := e.exchange.SharedSecret(ctx, ephemeral, e.recipient)
	if err != nil {
		logger.WithError(err, "shared secret").Warn("Failed to compute shared secret")
		return nil, err
	}
	defer crypto.ZeroBytes(shared)

	sealed, err := secretbox.EasySeal(plain, shared, e.options.rand)
	if err != nil {
		return nil, err
	}

	keyType, err := multikey.IDOf(ephemeral.Curve())
	if err != nil {
		return nil, err
	}
	ephemeralPub := ephemeral.PublicKey().Bytes()

	out := make([]byte, 0, 2+len(ephemeralPub)+len(sealed))
	out = append(out, TagECDH, byte(keyType))
	out = append(out, ephemeralPub...)
	out = append(out, sealed...)

	logger.WithField("frame_size", len(out)).Debug("Encrypted payload with ECDH scheme")
	return out, nil
}

// Decrypt parses the embedded ephemeral public key, recomputes the shared
// secret with the recipient private key, and opens the box.
func (d *PublicKeyDecrypter) Decrypt(ctx context.Context, content EncryptedContent) ([]byte, error) {
	if len(content) < MinECDHFrameSize {
		return nil, fmt.Errorf("%w: ECDH frame is %d bytes, minimum is %d",
			crypto.ErrInvalidFormat, len(content), MinECDHFrameSize)
	}
	if content[0] != TagECDH {
		return nil, fmt.Errorf("%w: expected ECDH scheme tag 0x%02x, got 0x%02x",
			crypto.ErrInvalidFormat, TagECDH, content[0])
	}
	if err := checkFrame(content, d.options.maxSize); err != nil {
		return nil, err
	}

	curve, err := multikey.CurveOf(multikey.ID(content[1]))
	if err != nil {
		return nil, err
	}
	keySize, err := curve.PublicKeySize()
	if err != nil {
		return nil, err
	}

	body := content[2:]
	if len(body) < keySize+secretbox.NonceSize {
		return nil, fmt.Errorf("%w: ECDH frame too short for a %s ephemeral key and nonce",
			crypto.ErrInvalidFormat, curve)
	}

	ephemeral, err := crypto.PublicKeyFromBytes(curve, body[:keySize], crypto.WithSR25519Backend(d.options.backend))
	if err != nil {
		return nil, err
	}

	shared, err := d.exchange.SharedSecret(ctx, d.recipient, ephemeral)
	if err != nil {
		return nil, err
	}
	defer crypto.ZeroBytes(shared)

	return secretbox.EasyOpen(body[keySize:], shared)
}
