// Package keystore persists private keys on disk, encrypted at rest under a
// passphrase.
//
// Each key is stored in its own file as version(2) ‖ secretbox(multikey).
// The secretbox key is derived from the passphrase with PBKDF2-SHA256 and a
// per-store salt kept in the .salt file.
package keystore

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/opd-ai/keyseal/crypto"
	"github.com/opd-ai/keyseal/limits"
	"github.com/opd-ai/keyseal/multikey"
	"github.com/opd-ai/keyseal/secretbox"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// PBKDF2Iterations is the number of iterations for passphrase stretching.
	PBKDF2Iterations = 100000
	// EncryptionVersion is the current entry format version.
	EncryptionVersion = 1
	// SaltSize is the size of the PBKDF2 salt.
	SaltSize = 32

	saltFileName = ".salt"
	entrySuffix  = ".key"
	versionSize  = 2
)

var (
	// ErrNotFound indicates no entry exists under the requested name.
	ErrNotFound = errors.New("key not found")
	// ErrClosed indicates the store was used after Close.
	ErrClosed = errors.New("key store closed")
	// ErrInvalidName indicates a name that cannot be used as an entry name.
	ErrInvalidName = errors.New("invalid key name")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)

// Store is a directory of encrypted private keys. It is safe for concurrent
// use.
type Store struct {
	mu      sync.RWMutex
	key     [secretbox.KeySize]byte
	dataDir string
	rand    crypto.RandomSource
	keyOpts []crypto.KeyOption
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithRandom sets the entropy source for salts and nonces.
func WithRandom(rand crypto.RandomSource) Option {
	return func(s *Store) {
		s.rand = rand
	}
}

// WithKeyOptions sets options applied to keys loaded by Get.
func WithKeyOptions(opts ...crypto.KeyOption) Option {
	return func(s *Store) {
		s.keyOpts = append(s.keyOpts, opts...)
	}
}

// Open opens or creates the store in dataDir. The passphrase is wiped once
// the encryption key is derived.
func Open(dataDir string, passphrase []byte, opts ...Option) (*Store, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase cannot be empty", crypto.ErrValidation)
	}

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Store{dataDir: dataDir, rand: crypto.DefaultRandom()}
	for _, opt := range opts {
		opt(s)
	}

	salt, err := s.loadOrGenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize salt: %w", err)
	}

	derived := pbkdf2.Key(passphrase, salt, PBKDF2Iterations, secretbox.KeySize, sha256.New)
	copy(s.key[:], derived)
	crypto.SecureWipe(derived)
	crypto.SecureWipe(passphrase)

	crypto.NewPackageLogger("keystore", "Open").
		WithField("data_dir", dataDir).
		Debug("Opened key store")

	return s, nil
}

func (s *Store) saltPath() string {
	return filepath.Join(s.dataDir, saltFileName)
}

func (s *Store) loadOrGenerateSalt() ([]byte, error) {
	data, err := os.ReadFile(s.saltPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read salt file: %w", err)
		}

		salt, err := crypto.Rand(s.rand, SaltSize)
		if err != nil {
			return nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		if err := os.WriteFile(s.saltPath(), salt, 0o600); err != nil {
			return nil, fmt.Errorf("failed to save salt: %w", err)
		}
		return salt, nil
	}

	if len(data) != SaltSize {
		return nil, fmt.Errorf("invalid salt file size: got %d, want %d", len(data), SaltSize)
	}
	return data, nil
}

func entryFile(name string) (string, error) {
	if !validName.MatchString(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return name + entrySuffix, nil
}

// Put encrypts priv and stores it under name, replacing any existing entry.
func (s *Store) Put(name string, priv crypto.PrivateKey) error {
	file, err := entryFile(name)
	if err != nil {
		return err
	}

	encoded, err := multikey.EncodePrivateKey(priv)
	if err != nil {
		return err
	}
	defer crypto.ZeroBytes(encoded)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	sealed, err := secretbox.EasySeal(encoded, s.key[:], s.rand)
	if err != nil {
		return err
	}

	output := make([]byte, versionSize+len(sealed))
	binary.BigEndian.PutUint16(output[:versionSize], EncryptionVersion)
	copy(output[versionSize:], sealed)

	if err := limits.ValidateStoredKey(output); err != nil {
		return err
	}
	if err := s.writeAtomic(file, output); err != nil {
		return err
	}

	crypto.NewPackageLogger("keystore", "Put").
		WithCurve(priv.Curve()).
		WithField("name", name).
		Debug("Stored key")
	return nil
}

// writeAtomic writes through a temporary file and a rename.
func (s *Store) writeAtomic(file string, data []byte) error {
	tmpFile := filepath.Join(s.dataDir, file+".tmp")
	finalFile := filepath.Join(s.dataDir, file)

	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tmpFile, finalFile); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// Get loads and decrypts the key stored under name. A wrong passphrase
// surfaces as crypto.ErrDecryption.
func (s *Store) Get(name string) (crypto.PrivateKey, error) {
	file, err := entryFile(name)
	if err != nil {
		return crypto.PrivateKey{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return crypto.PrivateKey{}, ErrClosed
	}

	plaintext, err := s.readEntry(file)
	if err != nil {
		return crypto.PrivateKey{}, fmt.Errorf("key %q: %w", name, err)
	}
	defer crypto.ZeroBytes(plaintext)

	return multikey.DecodePrivateKey(plaintext, s.keyOpts...)
}

func (s *Store) readEntry(file string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.dataDir, file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) < versionSize+secretbox.NonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("%w: entry too short: %d bytes", crypto.ErrInvalidFormat, len(data))
	}

	version := binary.BigEndian.Uint16(data[:versionSize])
	if version != EncryptionVersion {
		return nil, fmt.Errorf("%w: unsupported entry version %d (expected %d)",
			crypto.ErrInvalidFormat, version, EncryptionVersion)
	}

	return secretbox.EasyOpen(data[versionSize:], s.key[:])
}

// Delete overwrites the entry with zeros and removes it. Deleting a missing
// entry is not an error.
func (s *Store) Delete(name string) error {
	file, err := entryFile(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	path := filepath.Join(s.dataDir, file)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat file: %w", err)
	}

	// best-effort overwrite; removal proceeds either way
	_ = os.WriteFile(path, make([]byte, info.Size()), 0o600)
	return os.Remove(path)
}

// List returns the sorted names of all stored keys.
func (s *Store) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return s.listLocked()
}

func (s *Store) listLocked() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), entrySuffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), entrySuffix))
	}
	sort.Strings(names)
	return names, nil
}

// ChangePassphrase re-encrypts every entry under a key derived from
// newPassphrase and a fresh salt, then wipes newPassphrase. Entries are
// sealed in memory before any file is touched; if a write fails, entries
// already rewritten are restored from their original contents and the store
// keeps the old key.
func (s *Store) ChangePassphrase(newPassphrase []byte) error {
	if len(newPassphrase) == 0 {
		return fmt.Errorf("%w: passphrase cannot be empty", crypto.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	names, err := s.listLocked()
	if err != nil {
		return err
	}

	originals := make(map[string][]byte, len(names))
	plaintexts := make(map[string][]byte, len(names))
	defer func() {
		for _, p := range plaintexts {
			crypto.ZeroBytes(p)
		}
	}()
	for _, name := range names {
		file := name + entrySuffix
		raw, err := os.ReadFile(filepath.Join(s.dataDir, file))
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", name, err)
		}
		p, err := s.readEntry(file)
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", name, err)
		}
		originals[name] = raw
		plaintexts[name] = p
	}

	newSalt, err := crypto.Rand(s.rand, SaltSize)
	if err != nil {
		return fmt.Errorf("failed to generate new salt: %w", err)
	}

	var newKey [secretbox.KeySize]byte
	defer crypto.ZeroBytes(newKey[:])
	derived := pbkdf2.Key(newPassphrase, newSalt, PBKDF2Iterations, secretbox.KeySize, sha256.New)
	copy(newKey[:], derived)
	crypto.SecureWipe(derived)

	resealed := make(map[string][]byte, len(names))
	for _, name := range names {
		sealed, err := secretbox.EasySeal(plaintexts[name], newKey[:], s.rand)
		if err != nil {
			return fmt.Errorf("failed to re-encrypt %s: %w", name, err)
		}
		output := make([]byte, versionSize+len(sealed))
		binary.BigEndian.PutUint16(output[:versionSize], EncryptionVersion)
		copy(output[versionSize:], sealed)
		resealed[name] = output
	}

	var written []string
	restore := func() {
		for _, name := range written {
			if err := s.writeAtomic(name+entrySuffix, originals[name]); err != nil {
				crypto.NewPackageLogger("keystore", "ChangePassphrase").
					WithError(err, "restore").
					WithField("name", name).
					Error("Failed to restore entry after aborted passphrase change")
			}
		}
	}
	for _, name := range names {
		if err := s.writeAtomic(name+entrySuffix, resealed[name]); err != nil {
			restore()
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, name)
	}
	if err := s.writeAtomic(saltFileName, newSalt); err != nil {
		restore()
		return fmt.Errorf("failed to save new salt: %w", err)
	}

	crypto.ZeroBytes(s.key[:])
	s.key = newKey
	crypto.SecureWipe(newPassphrase)

	crypto.NewPackageLogger("keystore", "ChangePassphrase").
		WithField("entries", len(names)).
		Info("Re-encrypted key store under new passphrase")
	return nil
}

// Close wipes the encryption key. The store cannot be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	crypto.ZeroBytes(s.key[:])
	s.closed = true
	return nil
}
