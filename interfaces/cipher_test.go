package interfaces

import (
	"errors"
	"fmt"
	"testing"

	"github.com/opd-ai/keyseal/limits"
	"github.com/opd-ai/keyseal/multikey"
)

// TestCipherConfigValidate tests the Validate method of CipherConfig.
func TestCipherConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  CipherConfig
		wantErr error
	}{
		{
			name:    "valid config",
			config:  CipherConfig{DefaultCurve: "ed25519", MaxPayload: 1024, ReadyTimeout: 5000},
			wantErr: nil,
		},
		{
			name:    "curve name is case-insensitive",
			config:  CipherConfig{DefaultCurve: "SR25519", MaxPayload: limits.MaxPayload},
			wantErr: nil,
		},
		{
			name:    "curve name with surrounding whitespace",
			config:  CipherConfig{DefaultCurve: " ed25519\t", MaxPayload: 1024},
			wantErr: nil,
		},
		{
			name:    "unknown curve",
			config:  CipherConfig{DefaultCurve: "p256", MaxPayload: 1024},
			wantErr: ErrInvalidCurve,
		},
		{
			name:    "empty curve",
			config:  CipherConfig{MaxPayload: 1024},
			wantErr: ErrInvalidCurve,
		},
		{
			name:    "zero max payload",
			config:  CipherConfig{DefaultCurve: "secp256k1"},
			wantErr: ErrInvalidMaxPayload,
		},
		{
			name:    "max payload above limit",
			config:  CipherConfig{DefaultCurve: "secp256k1", MaxPayload: limits.MaxPayload + 1},
			wantErr: ErrInvalidMaxPayload,
		},
		{
			name:    "negative timeout",
			config:  CipherConfig{DefaultCurve: "ed25519", MaxPayload: 1, ReadyTimeout: -1},
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "timeout above limit",
			config:  CipherConfig{DefaultCurve: "ed25519", MaxPayload: 1, ReadyTimeout: MaxReadyTimeout + 1},
			wantErr: ErrInvalidTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateAgreesWithKindNames checks that Validate accepts exactly the
// names the multikey codec resolves.
func TestValidateAgreesWithKindNames(t *testing.T) {
	for _, name := range []string{"ed25519", " Secp256k1", "SR25519 ", "p256", "", "ed 25519"} {
		_, parseErr := multikey.CurveOfKindName(name)
		err := (&CipherConfig{DefaultCurve: name, MaxPayload: 1}).Validate()
		if (parseErr == nil) != (err == nil) {
			t.Errorf("name %q: CurveOfKindName error = %v, Validate error = %v", name, parseErr, err)
		}
	}
}

// ExampleCipherConfig_Validate demonstrates how to validate configuration.
func ExampleCipherConfig_Validate() {
	config := CipherConfig{
		DefaultCurve: "ed25519",
		MaxPayload:   limits.MaxPayload,
		ReadyTimeout: 5000,
	}

	if err := config.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		return
	}
	fmt.Println("Configuration is valid")
	// Output: Configuration is valid
}

// ExampleCipherConfig_Validate_invalid demonstrates validation error handling.
func ExampleCipherConfig_Validate_invalid() {
	config := CipherConfig{
		DefaultCurve: "ed25519",
		MaxPayload:   0,
	}

	if err := config.Validate(); err != nil {
		fmt.Printf("Validation error: %v\n", err)
	}
	// Output: Validation error: max payload out of range: 0
}
