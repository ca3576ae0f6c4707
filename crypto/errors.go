package crypto

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every package of keyseal. Callers match with
// errors.Is; the message carries the detail.
var (
	// ErrValidation indicates malformed key material: wrong length, or bytes
	// that are not a valid scalar or curve point.
	ErrValidation = errors.New("validation error")

	// ErrUnsupportedKey indicates an operation was invoked with a curve or
	// key type the component does not implement.
	ErrUnsupportedKey = errors.New("unsupported key")

	// ErrInvalidFormat indicates malformed encrypted content framing.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrKeyMismatch indicates a decrypting key does not match the frame's
	// declared key id, or a self-exchange was attempted.
	ErrKeyMismatch = errors.New("key mismatch")

	// ErrDecryption indicates authentication tag verification failed.
	ErrDecryption = errors.New("decryption failed")

	// ErrInitialization indicates the SR25519 backend failed its readiness step.
	ErrInitialization = errors.New("initialization failed")
)

// OpError records the operation and curve that produced an error.
type OpError struct {
	Op    string // operation that failed
	Curve Curve  // curve involved, if any
	Err   error  // underlying error
}

func (e *OpError) Error() string {
	if e.Curve.IsValid() {
		return fmt.Sprintf("keyseal %s %s: %v", e.Op, e.Curve, e.Err)
	}
	return fmt.Sprintf("keyseal %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// newOpError creates a new OpError
func newOpError(op string, curve Curve, err error) *OpError {
	return &OpError{
		Op:    op,
		Curve: curve,
		Err:   err,
	}
}

// validationf wraps ErrValidation with a formatted detail message.
func validationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// UnsupportedCurve returns ErrUnsupportedKey annotated with the curve.
func UnsupportedCurve(curve Curve) error {
	return fmt.Errorf("%w: curve %s", ErrUnsupportedKey, curve)
}
