// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bootstrap prepares the bundled backend payload for first launch.
//
// The backend ships as an encrypted zip asset. Bootstrap detects the
// encryption header, decrypts with AES-256-GCM using a PBKDF2-SHA-256 key
// derived from the application identity, extracts the archive into the
// support directory, and keeps the extracted tree's permissions asserted
// through a filesystem monitor.
package bootstrap

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// AssetMagic marks an asset as encrypted. Assets without this prefix are
// treated as plain zips and pass through decryption unchanged.
const AssetMagic = "RUMA_ENCRYPTED_V1"

// NonceSize is the size of the nonce/IV for AES-GCM (12 bytes / 96 bits)
const NonceSize = 12

// KeySize is the size of the AES-256 key (32 bytes / 256 bits)
const KeySize = 32

// PBKDF2Iterations is the number of iterations for PBKDF2 key derivation.
// OWASP 2023 recommends 600,000+ for PBKDF2-SHA-256.
const PBKDF2Iterations = 600000

// keySalt is the fixed derivation salt. The asset key is an obfuscation
// measure bound to the app identity, not a user secret, so the salt is a
// build-time constant shared with the packaging pipeline.
var keySalt = []byte("ruma.backend.asset.v1")

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTruncatedAsset indicates the asset is shorter than header + nonce
	ErrTruncatedAsset = errors.New("encrypted asset is truncated")
	// ErrDecryptionFailed indicates decryption failed (wrong key or tampered data)
	ErrDecryptionFailed = errors.New("asset decryption failed: authentication tag mismatch")
)

// =============================================================================
// KEY DERIVATION
// =============================================================================

// DeriveAssetKey derives the asset encryption key from the application
// identity using PBKDF2-SHA-256. The same derivation runs in the packaging
// pipeline that produced the asset.
func DeriveAssetKey(appID, version string) []byte {
	secret := appID + ":" + version
	return pbkdf2.Key([]byte(secret), keySalt, PBKDF2Iterations, KeySize, sha256.New)
}

// ZeroBytes securely zeros sensitive byte slices.
// SECURITY: Zero key material to prevent memory disclosure via crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// =============================================================================
// ASSET ENCRYPTION
// =============================================================================

// IsEncrypted reports whether data carries the encrypted-asset header.
func IsEncrypted(data []byte) bool {
	return bytes.HasPrefix(data, []byte(AssetMagic))
}

// DecryptAsset returns the plaintext payload of an asset.
//
// Assets without the AssetMagic prefix are returned unchanged: development
// builds ship the backend as a plain zip, and extraction must not care which
// kind it got.
//
// Encrypted layout: magic || nonce || ciphertext || tag.
func DecryptAsset(data, key []byte) ([]byte, error) {
	if !IsEncrypted(data) {
		return data, nil
	}

	body := data[len(AssetMagic):]
	if len(body) < NonceSize {
		return nil, ErrTruncatedAsset
	}

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := body[:NonceSize]
	ciphertext := body[NonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptAsset produces an encrypted asset in the layout DecryptAsset
// expects. Used by the packaging pipeline and by tests.
func EncryptAsset(plaintext, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, len(AssetMagic)+NonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, []byte(AssetMagic)...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, plaintext, nil)
	return out, nil
}

// newGCM initializes the AES-GCM cipher with the given key.
func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	return gcm, nil
}
