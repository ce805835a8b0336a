// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testKey returns a fixed 32-byte key without paying for PBKDF2.
func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, KeySize)
}

func TestDecryptAsset_RoundTrip(t *testing.T) {
	key := testKey()
	plaintext := []byte("PK\x03\x04 pretend zip payload")

	encrypted, err := EncryptAsset(plaintext, key)
	require.NoError(t, err)
	assert.True(t, IsEncrypted(encrypted))

	decrypted, err := DecryptAsset(encrypted, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecryptAsset_PlainAssetPassesThrough(t *testing.T) {
	// Development builds ship the backend as a plain zip. Anything without
	// the magic header must come back byte for byte.
	plain := []byte("PK\x03\x04 just a zip, no header")

	got, err := DecryptAsset(plain, testKey())
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestDecryptAsset_WrongKeyFails(t *testing.T) {
	encrypted, err := EncryptAsset([]byte("payload"), testKey())
	require.NoError(t, err)

	wrong := bytes.Repeat([]byte{0x24}, KeySize)
	_, err = DecryptAsset(encrypted, wrong)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptAsset_TamperDetected(t *testing.T) {
	key := testKey()
	encrypted, err := EncryptAsset([]byte("payload"), key)
	require.NoError(t, err)

	encrypted[len(encrypted)-1] ^= 0xFF
	_, err = DecryptAsset(encrypted, key)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestDecryptAsset_Truncated(t *testing.T) {
	data := []byte(AssetMagic + "short")
	_, err := DecryptAsset(data, testKey())
	assert.ErrorIs(t, err, ErrTruncatedAsset)
}

func TestDeriveAssetKey_Deterministic(t *testing.T) {
	a := DeriveAssetKey("com.suriai.ruma", "1.0.0")
	b := DeriveAssetKey("com.suriai.ruma", "1.0.0")
	c := DeriveAssetKey("com.suriai.ruma", "1.0.1")

	assert.Len(t, a, KeySize)
	assert.Equal(t, a, b, "same identity must derive the same key")
	assert.NotEqual(t, a, c, "version change must change the key")
}
