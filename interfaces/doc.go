// Package interfaces defines the contracts keyseal exposes to the layers
// built on top of it: message storage, streaming encryption and API
// serialization.
//
// # Core Interfaces
//
// [Encrypter] and [Decrypter] are implemented by the cipher package for both
// wire schemes, and by the dispatching decrypter in the factory package:
//
//	f := factory.NewCipherFactory()
//	enc, err := f.NewPublicKeyEncrypter(recipient.PublicKey())
//	if err != nil {
//	    return err
//	}
//	frame, err := enc.Encrypt(ctx, []byte("hello"))
//
// [Signer] and [Verifier] are satisfied by crypto.PrivateKey and
// crypto.PublicKey.
//
// # Configuration
//
// [CipherConfig] holds the factory's defaults:
//
//	config := &interfaces.CipherConfig{
//	    DefaultCurve: "ed25519",
//	    MaxPayload:   limits.MaxPayload,
//	    ReadyTimeout: 5000, // milliseconds
//	}
//	if err := config.Validate(); err != nil {
//	    log.Fatalf("invalid config: %v", err)
//	}
//
// # Thread Safety
//
// All implementations of these interfaces must be safe for concurrent use.
package interfaces
