// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildZip assembles an in-memory zip with the given name -> content
// entries. Names ending in "/" become directories; names in execs get the
// execute bit.
func buildZip(t *testing.T, entries map[string]string, execs ...string) []byte {
	t.Helper()

	execSet := make(map[string]bool)
	for _, name := range execs {
		execSet[name] = true
	}

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		header := &zip.FileHeader{Name: name, Method: zip.Deflate}
		if execSet[name] {
			header.SetMode(0755)
		} else {
			header.SetMode(0644)
		}
		f, err := w.CreateHeader(header)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func newTestBootstrapper(t *testing.T) *Bootstrapper {
	t.Helper()
	return New(Options{
		AppID:      "com.suriai.ruma",
		Version:    "1.0.0",
		SupportDir: filepath.Join(t.TempDir(), ".backend"),
	})
}

func TestExtractZip_LocksDownPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	b := newTestBootstrapper(t)
	payload := buildZip(t, map[string]string{
		"server/main.py": "print('hi')",
		"server/run":     "#!/bin/sh\n",
	}, "server/run")

	require.NoError(t, b.ExtractZip(payload))

	check := func(rel string, want os.FileMode) {
		info, err := os.Stat(filepath.Join(b.SupportDir(), rel))
		require.NoError(t, err, rel)
		assert.Equal(t, want, info.Mode().Perm(), rel)
	}
	check("server", DirPerm)
	check("server/main.py", FilePerm)
	check("server/run", ExecPerm)
}

func TestExtractZip_RejectsTraversal(t *testing.T) {
	b := newTestBootstrapper(t)
	payload := buildZip(t, map[string]string{
		"../escape.txt": "evil",
	})

	err := b.ExtractZip(payload)
	assert.Error(t, err, "zip slip entries must be rejected")
}

func TestRun_EncryptedAsset(t *testing.T) {
	b := newTestBootstrapper(t)

	payload := buildZip(t, map[string]string{"server/app.bin": "backend"})
	key := DeriveAssetKey("com.suriai.ruma", "1.0.0")
	encrypted, err := EncryptAsset(payload, key)
	require.NoError(t, err)

	assetPath := filepath.Join(t.TempDir(), "backend.zip")
	require.NoError(t, os.WriteFile(assetPath, encrypted, 0644))
	b.opts.AssetPath = assetPath

	require.NoError(t, b.Run())

	assert.True(t, b.IsExtracted(), "marker must record the extracted version")
	data, err := os.ReadFile(filepath.Join(b.SupportDir(), "server", "app.bin"))
	require.NoError(t, err)
	assert.Equal(t, "backend", string(data))
}

func TestRun_PlainAsset(t *testing.T) {
	b := newTestBootstrapper(t)

	// Development asset: plain zip, no encryption header.
	payload := buildZip(t, map[string]string{"server/app.bin": "dev backend"})
	assetPath := filepath.Join(t.TempDir(), "backend.zip")
	require.NoError(t, os.WriteFile(assetPath, payload, 0644))
	b.opts.AssetPath = assetPath

	require.NoError(t, b.Run())
	assert.True(t, b.IsExtracted())
}

func TestIsExtracted_VersionMismatchForcesReextract(t *testing.T) {
	b := newTestBootstrapper(t)
	require.NoError(t, os.MkdirAll(b.SupportDir(), 0700))
	require.NoError(t, os.WriteFile(b.MarkerPath(), []byte("0.9.0\n"), 0600))

	assert.False(t, b.IsExtracted(), "stale marker version must not count as extracted")
}

func TestAssertPermissions_RepairsDrift(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	b := newTestBootstrapper(t)
	payload := buildZip(t, map[string]string{"server/app.bin": "backend"})
	require.NoError(t, b.ExtractZip(payload))

	target := filepath.Join(b.SupportDir(), "server", "app.bin")
	require.NoError(t, os.Chmod(target, 0666))

	require.NoError(t, b.AssertPermissions())

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, FilePerm, info.Mode().Perm())
}

func TestRepair_Reextracts(t *testing.T) {
	b := newTestBootstrapper(t)

	payload := buildZip(t, map[string]string{"server/app.bin": "backend"})
	assetPath := filepath.Join(t.TempDir(), "backend.zip")
	require.NoError(t, os.WriteFile(assetPath, payload, 0644))
	b.opts.AssetPath = assetPath

	require.NoError(t, b.Run())

	// Corrupt the tree, then repair.
	require.NoError(t, os.RemoveAll(filepath.Join(b.SupportDir(), "server")))
	require.NoError(t, b.Repair())

	_, err := os.Stat(filepath.Join(b.SupportDir(), "server", "app.bin"))
	assert.NoError(t, err, "repair must restore the extracted tree")
}
