// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/comercia-tui/internal/util"
)

// =============================================================================
// SEALED-AT-REST SESSION FILE
// =============================================================================
//
// The persisted session is sealed with AES-256-GCM. The key is derived with
// PBKDF2-SHA-256 from a random 32-byte master secret stored beside the
// session file with 0600 permissions. The master secret is high-entropy
// random material, not a password, so the iteration count stays low; the
// derivation exists to bind each seal to a fresh salt, not to stretch a weak
// input.

const (
	// keySize is the AES-256 key size (32 bytes).
	keySize = 32

	// saltSize is the per-seal salt size (32 bytes).
	saltSize = 32

	// nonceSize is the AES-GCM nonce size (12 bytes / 96 bits).
	nonceSize = 12

	// deriveIterations is the PBKDF2 iteration count for the (already
	// random) master secret.
	deriveIterations = 4096
)

// ErrSealCorrupt marks a sealed payload that failed authentication or is
// too short to carry its header. Treated like any other structural error:
// purge and hydrate empty.
var ErrSealCorrupt = errors.New("sealed session corrupt")

// loadOrCreateMasterKey returns the master secret at path, generating and
// persisting a fresh one on first use.
func loadOrCreateMasterKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != keySize {
			return nil, fmt.Errorf("master key has wrong size %d", len(key))
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read master key: %w", err)
	}

	key = make([]byte, keySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	if err := util.AtomicWriteFilePrivate(path, key); err != nil {
		return nil, fmt.Errorf("failed to store master key: %w", err)
	}
	return key, nil
}

// seal encrypts plaintext with a key derived from the master secret and a
// fresh salt. Layout: salt || nonce || ciphertext.
func seal(masterKey, plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := newGCM(masterKey, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)
	return out, nil
}

// unseal reverses seal. Any authentication failure comes back as
// ErrSealCorrupt so callers can treat tampering and truncation uniformly.
func unseal(masterKey, sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+nonceSize {
		return nil, ErrSealCorrupt
	}
	salt := sealed[:saltSize]
	nonce := sealed[saltSize : saltSize+nonceSize]
	ciphertext := sealed[saltSize+nonceSize:]

	gcm, err := newGCM(masterKey, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSealCorrupt
	}
	return plaintext, nil
}

func newGCM(masterKey, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(masterKey, salt, deriveIterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}
