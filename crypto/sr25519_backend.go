package crypto

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	schnorrkel "github.com/ChainSafe/go-schnorrkel"
	"github.com/sirupsen/logrus"
)

// SR25519Backend is a shareable handle on the SR25519 primitives. The
// primitives must pass a one-time readiness step before first use; every
// caller, concurrent or sequential, waits on the same completion.
type SR25519Backend struct {
	once  sync.Once
	done  chan struct{}
	err   error
	init  func() error
	ready time.Time
}

var (
	defaultSR25519Backend     *SR25519Backend
	defaultSR25519BackendOnce sync.Once
)

// DefaultSR25519Backend returns the process-wide backend handle.
func DefaultSR25519Backend() *SR25519Backend {
	defaultSR25519BackendOnce.Do(func() {
		defaultSR25519Backend = NewSR25519Backend()
	})
	return defaultSR25519Backend
}

// NewSR25519Backend creates a handle whose readiness step is a known-answer
// self-test of the schnorrkel routines.
func NewSR25519Backend() *SR25519Backend {
	return NewSR25519BackendWithInit(sr25519SelfTest)
}

// NewSR25519BackendWithInit creates a handle with a custom readiness step.
func NewSR25519BackendWithInit(init func() error) *SR25519Backend {
	return &SR25519Backend{
		done: make(chan struct{}),
		init: init,
	}
}

// EnsureReady starts initialization on first call and blocks until it has
// completed or ctx is done. Once complete, every call returns the same result
// immediately. The handle imposes no timeout of its own.
func (b *SR25519Backend) EnsureReady(ctx context.Context) error {
	if b == nil {
		b = DefaultSR25519Backend()
	}

	b.once.Do(func() {
		go b.run()
	})

	select {
	case <-b.done:
		return b.err
	default:
	}

	select {
	case <-b.done:
		return b.err
	case <-ctx.Done():
		return fmt.Errorf("waiting for sr25519 backend: %w", ctx.Err())
	}
}

// Ready reports whether initialization completed successfully.
func (b *SR25519Backend) Ready() bool {
	select {
	case <-b.done:
		return b.err == nil
	default:
		return false
	}
}

func (b *SR25519Backend) run() {
	logger := NewLogger("SR25519Backend.run")
	logger.Debug("Initializing sr25519 backend")

	start := time.Now()
	err := b.init()
	if err != nil {
		b.err = fmt.Errorf("%w: sr25519 backend: %v", ErrInitialization, err)
		logger.WithError(err, "init").Error("sr25519 backend initialization failed")
	} else {
		b.ready = time.Now()
		logrus.WithFields(logrus.Fields{
			"function": "SR25519Backend.run",
			"package":  "crypto",
			"elapsed":  b.ready.Sub(start).String(),
		}).Debug("sr25519 backend ready")
	}
	close(b.done)
}

// sr25519SelfTest checks that the local seed expansion agrees with
// schnorrkel's and that a signature round trips.
func sr25519SelfTest() error {
	var seed [32]byte
	for i := range seed {
		seed[i] = byte(i)
	}

	mini, err := schnorrkel.NewMiniSecretKeyFromRaw(seed)
	if err != nil {
		return err
	}
	expanded := mini.ExpandEd25519()
	expected, err := expanded.Public()
	if err != nil {
		return err
	}
	want := expected.Encode()

	secret, public, err := sr25519FromSeed(seed[:])
	if err != nil {
		return err
	}
	defer ZeroBytes(secret)

	if !bytes.Equal(public, want[:]) {
		return errors.New("seed expansion disagrees with schnorrkel")
	}
	if sr25519SecretKey(secret).Encode() != expanded.Encode() {
		return errors.New("secret scalar disagrees with schnorrkel")
	}

	msg := []byte("keyseal sr25519 self-test")
	sig, err := sr25519Sign(secret, msg)
	if err != nil {
		return err
	}
	ok, err := sr25519Verify(public, msg, sig)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("signature self-test failed")
	}
	return nil
}
