// Package hash provides bounded file hashing for content previews.
//
// Executables and other opaque binaries are fingerprinted rather than parsed.
// Only a prefix of each file is read so that hashing a multi-gigabyte
// installer costs the same as hashing a small one. The package provides both
// a real implementation using crypto/sha256 and a fake implementation for testing.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DefaultMaxBytes is the default read cap for HashFile.
const DefaultMaxBytes = 2_000_000

// Hasher provides an abstraction for file hashing operations.
type Hasher interface {
	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256 over at most maxBytes
// leading bytes of the file.
type SHA256Hasher struct {
	maxBytes int64
}

// NewSHA256Hasher creates a new SHA256Hasher. A non-positive maxBytes
// selects DefaultMaxBytes.
func NewSHA256Hasher(maxBytes int64) *SHA256Hasher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &SHA256Hasher{maxBytes: maxBytes}
}

// MaxBytes returns the read cap.
func (h *SHA256Hasher) MaxBytes() int64 {
	return h.maxBytes
}

// HashFile computes the SHA-256 hash of the first MaxBytes bytes of the file.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, io.LimitReader(file, h.maxBytes)); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FakeHasher implements Hasher with deterministic hashes for testing.
type FakeHasher struct {
	hashes map[string]string
	errs   map[string]error
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		hashes: make(map[string]string),
		errs:   make(map[string]error),
	}
}

// SetHash sets the hash for a specific path (for testing).
func (h *FakeHasher) SetHash(path, hash string) {
	h.hashes[path] = hash
}

// SetError makes HashFile fail for path.
func (h *FakeHasher) SetError(path string, err error) {
	h.errs[path] = err
}

// HashFile returns the predetermined hash for the given path.
func (h *FakeHasher) HashFile(path string) (string, error) {
	if err, ok := h.errs[path]; ok {
		return "", err
	}
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "fakehash", nil
}
