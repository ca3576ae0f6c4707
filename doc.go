// Package keyseal is a curve-agnostic key and payload-encryption layer for
// messaging clients.
//
// One key abstraction spans Ed25519, secp256k1 and SR25519. On top of it the
// module provides Diffie–Hellman key agreement, NaCl secretbox encryption
// with two self-describing wire formats, a multikey codec that tags raw key
// bytes with their curve, and Substrate-compatible hard key derivation.
//
// # Getting Started
//
// Encrypt a payload to a recipient's public key and open it again:
//
//	f := factory.NewCipherFactory()
//
//	recipient, err := crypto.GenerateKey(crypto.SR25519, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	enc, err := f.NewPublicKeyEncrypter(recipient.PublicKey())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	frame, err := enc.Encrypt(ctx, []byte("hello"))
//
//	dec, err := f.NewDecrypter(recipient)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plain, err := dec.Decrypt(ctx, frame)
//
// # Packages
//
//   - crypto: curves, keys, signatures, the SR25519 backend handle and the
//     shared error taxonomy
//   - multikey: curveId ‖ rawKey encoding plus hex and base58 strings
//   - ecdh: per-curve key exchange
//   - secretbox: nonce ‖ box sealing over NaCl secretbox
//   - cipher: the 0x2B secret-key and 0x2A ECDH frame formats
//   - hdkd: chain codes, hard derivation and //junction paths
//   - mnemonic: BIP-39 phrases to 32-byte seeds
//   - keystore: passphrase-protected on-disk key storage
//   - factory: encrypters and decrypters from a shared configuration
//   - limits: payload size limits
//   - interfaces: Encrypter, Decrypter, Signer and Verifier contracts
//
// The keyseal command in cmd/keyseal exposes key generation, derivation,
// encryption and signing from the shell.
//
// # Error Handling
//
// Every failure wraps one of the sentinel errors in package crypto. Test
// with errors.Is:
//
//	if errors.Is(err, crypto.ErrKeyMismatch) {
//	    // frame addressed to another key
//	}
//
// # Logging
//
// Packages log through logrus with "package" and "function" fields. Secret
// key material is never logged.
package keyseal
