// Package limits provides centralized size constants and validation functions
// for keyseal. This package ensures consistent size enforcement across the
// payload cipher and the key store.
//
// # Size Hierarchy
//
//   - MaxPayload (16MB): the largest plaintext accepted by a single encrypt
//     call. Streaming of larger content is the caller's concern.
//
//   - MaxFrameOverhead (75 bytes): the largest framing a cipher adds around a
//     payload: scheme tag, key type, a 33-byte secp256k1 ephemeral key, the
//     24-byte nonce and the 16-byte Poly1305 tag.
//
//   - MaxStoredKey (4096 bytes): the largest single key store entry.
//
// # Validation Functions
//
//	err := limits.ValidatePayload(plaintext, limits.MaxPayload)
//	if errors.Is(err, limits.ErrMessageTooLarge) {
//	    // reject
//	}
//
// ValidatePayload accepts empty input because an empty plaintext is a valid
// message. ValidateMessageSize and ValidateStoredKey reject it with
// ErrMessageEmpty.
//
// The encryption overhead matches golang.org/x/crypto/nacl/secretbox.Overhead.
package limits
