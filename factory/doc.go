// Package factory creates encrypters and decrypters from a shared
// configuration, so callers do not wire key exchanges, cipher options and
// backend handles by hand.
//
// # Configuration
//
// The factory supports configuration via environment variables:
//   - KEYSEAL_DEFAULT_CURVE: "ed25519", "secp256k1" or "sr25519" for GenerateKey
//   - KEYSEAL_MAX_PAYLOAD: integer bytes, at most limits.MaxPayload
//   - KEYSEAL_READY_TIMEOUT: integer milliseconds bounding each encrypt or
//     decrypt call, 0 to use the caller's context unchanged
//
// Invalid values are logged and ignored.
//
// # Usage
//
//	f := factory.NewCipherFactory()
//	recipient, _ := f.GenerateKey()
//
//	enc, err := f.NewPublicKeyEncrypter(recipient.PublicKey())
//	if err != nil {
//	    return err
//	}
//	frame, err := enc.Encrypt(ctx, []byte("hello"))
//
//	dec, err := f.NewDecrypter(recipient)
//	if err != nil {
//	    return err
//	}
//	plain, err := dec.Decrypt(ctx, frame)
//
// The decrypter returned by NewDecrypter inspects the scheme tag and opens
// both ECDH and secret-key frames, except that SR25519 keys cannot open
// secret-key frames.
//
// # Thread Safety
//
// CipherFactory is safe for concurrent use. Configuration updates affect only
// encrypters and decrypters created afterwards.
package factory
