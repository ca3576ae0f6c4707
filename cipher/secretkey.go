package cipher

import (
	"context"
	"fmt"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/opd-ai/keyseal/multikey"
	"github.com/opd-ai/keyseal/secretbox"
)

// SecretKeyEncrypter seals content under a symmetric key reduced from a
// private key, using the 0x2B frame.
type SecretKeyEncrypter struct {
	keyID   multikey.ID
	key     []byte
	options options
}

// SecretKeyDecrypter opens 0x2B frames addressed to one private key.
type SecretKeyDecrypter struct {
	keyID   multikey.ID
	key     []byte
	options options
}

// NewSecretKeyEncrypter creates an encrypter for privateKey. SR25519 keys are
// rejected with crypto.ErrUnsupportedKey.
func NewSecretKeyEncrypter(privateKey crypto.PrivateKey, opts ...Option) (*SecretKeyEncrypter, error) {
	id, key, err := reduceSecretKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &SecretKeyEncrypter{keyID: id, key: key, options: applyOptions(opts)}, nil
}

// NewSecretKeyDecrypter creates a decrypter for privateKey. SR25519 keys are
// rejected with crypto.ErrUnsupportedKey.
func NewSecretKeyDecrypter(privateKey crypto.PrivateKey, opts ...Option) (*SecretKeyDecrypter, error) {
	id, key, err := reduceSecretKey(privateKey)
	if err != nil {
		return nil, err
	}
	return &SecretKeyDecrypter{keyID: id, key: key, options: applyOptions(opts)}, nil
}

// reduceSecretKey turns a private key into a 32-byte symmetric key. Ed25519
// secrets map to their X25519 scalar; secp256k1 scalars are used as is.
// SR25519 secrets have no safe reduction and are refused.
func reduceSecretKey(privateKey crypto.PrivateKey) (multikey.ID, []byte, error) {
	curve := privateKey.Curve()

	var (
		key []byte
		err error
	)
	switch curve {
	case crypto.Ed25519:
		secret := privateKey.Bytes()
		key, err = crypto.Ed25519SecretToCurve25519(secret)
		crypto.ZeroBytes(secret)
	case crypto.Secp256k1:
		key = privateKey.Bytes()
	case crypto.SR25519:
		err = fmt.Errorf("%w: sr25519 keys cannot be used with the secret-key scheme", crypto.ErrUnsupportedKey)
	default:
		err = crypto.UnsupportedCurve(curve)
	}
	if err != nil {
		return 0, nil, err
	}

	id, err := multikey.IDOf(curve)
	if err != nil {
		crypto.ZeroBytes(key)
		return 0, nil, err
	}
	return id, key, nil
}

// Encrypt seals plain as tag ‖ keyId ‖ nonce ‖ box.
func (e *SecretKeyEncrypter) Encrypt(_ context.Context, plain []byte) (EncryptedContent, error) {
	if err := checkPlaintext(plain, e.options.maxSize); err != nil {
		return nil, err
	}

	sealed, err := secretbox.EasySeal(plain, e.key, e.options.rand)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 2+len(sealed))
	out[0] = TagSecretKey
	out[1] = byte(e.keyID)
	copy(out[2:], sealed)
	return out, nil
}

// Decrypt opens a 0x2B frame. A frame addressed to another key fails with
// crypto.ErrKeyMismatch.
func (d *SecretKeyDecrypter) Decrypt(_ context.Context, content EncryptedContent) ([]byte, error) {
	if len(content) == 0 || content[0] != TagSecretKey {
		return nil, fmt.Errorf("%w: expected secret-key scheme tag 0x%02x", crypto.ErrInvalidFormat, TagSecretKey)
	}
	if len(content) < MinSecretKeyFrameSize {
		return nil, fmt.Errorf("%w: secret-key frame is %d bytes, minimum is %d",
			crypto.ErrInvalidFormat, len(content), MinSecretKeyFrameSize)
	}
	if err := checkFrame(content, d.options.maxSize); err != nil {
		return nil, err
	}

	if id := multikey.ID(content[1]); id != d.keyID {
		return nil, fmt.Errorf("%w: frame key id 0x%02x, decrypter key id 0x%02x",
			crypto.ErrKeyMismatch, byte(id), byte(d.keyID))
	}

	return secretbox.EasyOpen(content[2:], d.key)
}
