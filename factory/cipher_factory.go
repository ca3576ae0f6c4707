package factory

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/opd-ai/keyseal/cipher"
	"github.com/opd-ai/keyseal/crypto"
	"github.com/opd-ai/keyseal/ecdh"
	"github.com/opd-ai/keyseal/interfaces"
	"github.com/opd-ai/keyseal/limits"
	"github.com/opd-ai/keyseal/multikey"
	"github.com/sirupsen/logrus"
)

// CipherFactory creates encrypters and decrypters based on configuration.
// It is safe for concurrent use; all methods are protected by an internal mutex.
type CipherFactory struct {
	mu            sync.RWMutex
	defaultConfig *interfaces.CipherConfig
	rand          crypto.RandomSource
	backend       *crypto.SR25519Backend
}

// Option customizes a CipherFactory.
type Option func(*CipherFactory)

// WithRandom sets the entropy source for keys and nonces.
func WithRandom(rand crypto.RandomSource) Option {
	return func(f *CipherFactory) {
		f.rand = rand
	}
}

// WithSR25519Backend sets the backend handle for SR25519 operations.
func WithSR25519Backend(backend *crypto.SR25519Backend) Option {
	return func(f *CipherFactory) {
		f.backend = backend
	}
}

// NewCipherFactory creates a new factory with default configuration,
// overridden by KEYSEAL_* environment variables.
func NewCipherFactory(opts ...Option) *CipherFactory {
	defaultConfig := createDefaultConfig()
	applyEnvironmentOverrides(defaultConfig)
	logConfigurationInfo(defaultConfig)

	f := &CipherFactory{
		defaultConfig: defaultConfig,
		rand:          crypto.DefaultRandom(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.backend == nil {
		f.backend = crypto.DefaultSR25519Backend()
	}
	return f
}

// createDefaultConfig initializes the default cipher configuration.
//
// Default Value Rationale:
//   - DefaultCurve: ed25519 - needs no backend initialization and supports both schemes
//   - MaxPayload: limits.MaxPayload - larger content is chunked by callers
//   - ReadyTimeout: 0 - callers' contexts are used unchanged
func createDefaultConfig() *interfaces.CipherConfig {
	return &interfaces.CipherConfig{
		DefaultCurve: multikey.KindEd25519,
		MaxPayload:   limits.MaxPayload,
		ReadyTimeout: 0,
	}
}

// applyEnvironmentOverrides updates configuration based on environment variables.
// It checks for KEYSEAL_* environment variables and overrides defaults if valid values are found.
func applyEnvironmentOverrides(config *interfaces.CipherConfig) {
	parseCurveSetting(config)
	parseMaxPayloadSetting(config)
	parseReadyTimeoutSetting(config)
}

// parseCurveSetting updates DefaultCurve from KEYSEAL_DEFAULT_CURVE.
func parseCurveSetting(config *interfaces.CipherConfig) {
	if curveStr := os.Getenv("KEYSEAL_DEFAULT_CURVE"); curveStr != "" {
		curve, err := multikey.CurveOfKindName(curveStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseCurveSetting",
				"env_var":     "KEYSEAL_DEFAULT_CURVE",
				"value":       curveStr,
				"error":       err.Error(),
				"using_value": config.DefaultCurve,
			}).Warn("Failed to parse KEYSEAL_DEFAULT_CURVE environment variable, using default")
			return
		}
		config.DefaultCurve, _ = multikey.KindName(curve)
	}
}

// parseMaxPayloadSetting updates MaxPayload from KEYSEAL_MAX_PAYLOAD. The
// value must lie in [1, limits.MaxPayload].
func parseMaxPayloadSetting(config *interfaces.CipherConfig) {
	if sizeStr := os.Getenv("KEYSEAL_MAX_PAYLOAD"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseMaxPayloadSetting",
				"env_var":     "KEYSEAL_MAX_PAYLOAD",
				"value":       sizeStr,
				"error":       err.Error(),
				"using_value": config.MaxPayload,
			}).Warn("Failed to parse KEYSEAL_MAX_PAYLOAD environment variable, using default")
			return
		}
		if size < 1 || size > limits.MaxPayload {
			logrus.WithFields(logrus.Fields{
				"function":    "parseMaxPayloadSetting",
				"env_var":     "KEYSEAL_MAX_PAYLOAD",
				"value":       size,
				"min":         1,
				"max":         limits.MaxPayload,
				"using_value": config.MaxPayload,
			}).Warn("KEYSEAL_MAX_PAYLOAD value out of bounds, using default")
			return
		}
		config.MaxPayload = size
	}
}

// parseReadyTimeoutSetting updates ReadyTimeout from KEYSEAL_READY_TIMEOUT
// (milliseconds).
func parseReadyTimeoutSetting(config *interfaces.CipherConfig) {
	if timeoutStr := os.Getenv("KEYSEAL_READY_TIMEOUT"); timeoutStr != "" {
		timeout, err := strconv.Atoi(timeoutStr)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"function":    "parseReadyTimeoutSetting",
				"env_var":     "KEYSEAL_READY_TIMEOUT",
				"value":       timeoutStr,
				"error":       err.Error(),
				"using_value": config.ReadyTimeout,
			}).Warn("Failed to parse KEYSEAL_READY_TIMEOUT environment variable, using default")
			return
		}
		if timeout < 0 || timeout > interfaces.MaxReadyTimeout {
			logrus.WithFields(logrus.Fields{
				"function":    "parseReadyTimeoutSetting",
				"env_var":     "KEYSEAL_READY_TIMEOUT",
				"value":       timeout,
				"min":         0,
				"max":         interfaces.MaxReadyTimeout,
				"using_value": config.ReadyTimeout,
			}).Warn("KEYSEAL_READY_TIMEOUT value out of bounds, using default")
			return
		}
		config.ReadyTimeout = timeout
	}
}

// logConfigurationInfo logs the final configuration settings for debugging purposes.
func logConfigurationInfo(config *interfaces.CipherConfig) {
	logrus.WithFields(logrus.Fields{
		"function":      "NewCipherFactory",
		"default_curve": config.DefaultCurve,
		"max_payload":   config.MaxPayload,
		"ready_timeout": config.ReadyTimeout,
	}).Info("Created cipher factory with configuration")
}

func (f *CipherFactory) snapshot() interfaces.CipherConfig {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return *f.defaultConfig
}

func (f *CipherFactory) cipherOptions(config interfaces.CipherConfig) []cipher.Option {
	return []cipher.Option{
		cipher.WithRandom(f.rand),
		cipher.WithSR25519Backend(f.backend),
		cipher.WithMaxPayload(config.MaxPayload),
	}
}

func (f *CipherFactory) exchange(curve crypto.Curve) (ecdh.KeyExchange, error) {
	return ecdh.New(curve, ecdh.WithRandom(f.rand), ecdh.WithSR25519Backend(f.backend))
}

// GenerateKey creates a key on the configured default curve.
func (f *CipherFactory) GenerateKey() (crypto.PrivateKey, error) {
	config := f.snapshot()
	curve, err := multikey.CurveOfKindName(config.DefaultCurve)
	if err != nil {
		return crypto.PrivateKey{}, err
	}
	return crypto.GenerateKey(curve, f.rand, crypto.WithSR25519Backend(f.backend))
}

// NewPublicKeyEncrypter creates an ECDH-scheme encrypter for recipient.
func (f *CipherFactory) NewPublicKeyEncrypter(recipient crypto.PublicKey) (interfaces.Encrypter, error) {
	config := f.snapshot()

	kx, err := f.exchange(recipient.Curve())
	if err != nil {
		return nil, err
	}
	enc, err := cipher.NewPublicKeyEncrypter(kx, recipient, f.cipherOptions(config)...)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewPublicKeyEncrypter",
		"curve":    recipient.Curve().String(),
		"scheme":   "ecdh",
	}).Debug("Created encrypter")

	return withTimeout(config, enc), nil
}

// NewSecretKeyEncrypter creates a secret-key-scheme encrypter for priv.
func (f *CipherFactory) NewSecretKeyEncrypter(priv crypto.PrivateKey) (interfaces.Encrypter, error) {
	config := f.snapshot()

	enc, err := cipher.NewSecretKeyEncrypter(priv, f.cipherOptions(config)...)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "NewSecretKeyEncrypter",
		"curve":    priv.Curve().String(),
		"scheme":   "secret-key",
	}).Debug("Created encrypter")

	return withTimeout(config, enc), nil
}

// NewDecrypter creates a decrypter for priv that accepts frames of either
// scheme, routing by the frame's tag. SR25519 keys only open ECDH frames.
func (f *CipherFactory) NewDecrypter(priv crypto.PrivateKey) (interfaces.Decrypter, error) {
	config := f.snapshot()
	opts := f.cipherOptions(config)

	kx, err := f.exchange(priv.Curve())
	if err != nil {
		return nil, err
	}
	pk, err := cipher.NewPublicKeyDecrypter(kx, priv, opts...)
	if err != nil {
		return nil, err
	}

	d := &schemeDecrypter{ecdh: pk, timeout: config.ReadyTimeout}
	if sk, err := cipher.NewSecretKeyDecrypter(priv, opts...); err == nil {
		d.secretKey = sk
	}
	return d, nil
}

// GetCurrentConfig returns a copy of the current default configuration
func (f *CipherFactory) GetCurrentConfig() *interfaces.CipherConfig {
	config := f.snapshot()
	return &config
}

// UpdateConfig validates and replaces the factory's default configuration
func (f *CipherFactory) UpdateConfig(config *interfaces.CipherConfig) error {
	if config == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := config.Validate(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"function":        "UpdateConfig",
		"old_curve":       f.defaultConfig.DefaultCurve,
		"new_curve":       config.DefaultCurve,
		"old_max_payload": f.defaultConfig.MaxPayload,
		"new_max_payload": config.MaxPayload,
	}).Info("Updating factory configuration")

	updated := *config
	f.defaultConfig = &updated
	return nil
}

// schemeDecrypter routes frames to the decrypter for their scheme tag.
type schemeDecrypter struct {
	ecdh      *cipher.PublicKeyDecrypter
	secretKey *cipher.SecretKeyDecrypter
	timeout   int
}

func (d *schemeDecrypter) Decrypt(ctx context.Context, content []byte) ([]byte, error) {
	tag, err := cipher.Scheme(content)
	if err != nil {
		return nil, err
	}

	ctx, cancel := boundContext(ctx, d.timeout)
	defer cancel()

	switch tag {
	case cipher.TagSecretKey:
		if d.secretKey == nil {
			return nil, fmt.Errorf("%w: key cannot open secret-key frames", crypto.ErrUnsupportedKey)
		}
		return d.secretKey.Decrypt(ctx, content)
	default:
		return d.ecdh.Decrypt(ctx, content)
	}
}

type timeoutEncrypter struct {
	next    interfaces.Encrypter
	timeout int
}

func withTimeout(config interfaces.CipherConfig, enc interfaces.Encrypter) interfaces.Encrypter {
	if config.ReadyTimeout == 0 {
		return enc
	}
	return &timeoutEncrypter{next: enc, timeout: config.ReadyTimeout}
}

func (e *timeoutEncrypter) Encrypt(ctx context.Context, plain []byte) ([]byte, error) {
	ctx, cancel := boundContext(ctx, e.timeout)
	defer cancel()
	return e.next.Encrypt(ctx, plain)
}

func boundContext(ctx context.Context, timeoutMs int) (context.Context, context.CancelFunc) {
	if timeoutMs <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
}
