package crypto

import (
	"bytes"
	"testing"
)

func TestSecureWipe(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "Nil data",
			data:    nil,
			wantErr: true,
		},
		{
			name:    "Empty data",
			data:    []byte{},
			wantErr: false,
		},
		{
			name:    "Non-empty data",
			data:    []byte{1, 2, 3, 4, 5},
			wantErr: false,
		},
		{
			name:    "Key sized data",
			data:    bytes.Repeat([]byte{0xAB}, 64),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SecureWipe(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("SecureWipe() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && !isZero(tt.data) {
				t.Errorf("SecureWipe() failed to zero data: %v", tt.data)
			}
		})
	}
}

func TestZeroBytes(t *testing.T) {
	data := []byte{9, 8, 7, 6}
	ZeroBytes(data)
	if !isZero(data) {
		t.Errorf("ZeroBytes() failed to zero data: %v", data)
	}

	// Nil input is tolerated.
	ZeroBytes(nil)
}

func TestPrivateKeyWipe(t *testing.T) {
	for _, curve := range Curves() {
		t.Run(curve.String(), func(t *testing.T) {
			key, err := GenerateKey(curve, nil)
			if err != nil {
				t.Fatalf("GenerateKey() error = %v", err)
			}

			copied := key.Bytes()
			key.Wipe()

			if !isZero(key.bytes) {
				t.Errorf("Wipe() left secret bytes: %x", key.bytes)
			}
			if isZero(copied) {
				t.Error("Wipe() must not affect copies returned by Bytes()")
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	if !isZero(nil) {
		t.Error("isZero(nil) = false, want true")
	}
	if !isZero(make([]byte, 16)) {
		t.Error("isZero(zeros) = false, want true")
	}
	if isZero([]byte{0, 0, 1}) {
		t.Error("isZero(non-zero) = true, want false")
	}
}
