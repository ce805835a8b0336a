// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/suriai/ruma-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// MarkerName is the tag file written into the support directory after a
// successful extraction. Its content is the app version that produced the
// tree, so version bumps force a re-extract.
const MarkerName = ".ruma_backend_ok"

// DirPerm is asserted on every extracted directory.
const DirPerm os.FileMode = 0700

// FilePerm is asserted on every extracted regular file.
const FilePerm os.FileMode = 0600

// ExecPerm is asserted on extracted executables (zip entries with any
// execute bit set).
const ExecPerm os.FileMode = 0700

// =============================================================================
// BOOTSTRAPPER
// =============================================================================

// Options configures a Bootstrapper.
type Options struct {
	// AppID identifies the application for key derivation.
	AppID string
	// Version is the app version, part of the key and the marker content.
	Version string
	// AssetPath is where the bundled asset lives. Empty means LocateAsset.
	AssetPath string
	// SupportDir is the extraction target.
	SupportDir string
}

// Bootstrapper extracts and maintains the backend payload.
type Bootstrapper struct {
	opts Options
}

// New creates a Bootstrapper.
func New(opts Options) *Bootstrapper {
	return &Bootstrapper{opts: opts}
}

// SupportDir returns the extraction target directory.
func (b *Bootstrapper) SupportDir() string { return b.opts.SupportDir }

// MarkerPath returns the path of the extraction marker file.
func (b *Bootstrapper) MarkerPath() string {
	return filepath.Join(b.opts.SupportDir, MarkerName)
}

// =============================================================================
// ASSET LOOKUP
// =============================================================================

// LocateAsset finds the bundled backend asset. The configured path wins;
// otherwise the directories next to the executable are searched.
func (b *Bootstrapper) LocateAsset() (string, error) {
	if b.opts.AssetPath != "" {
		if _, err := os.Stat(b.opts.AssetPath); err != nil {
			return "", fmt.Errorf("configured asset path: %w", err)
		}
		return b.opts.AssetPath, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("could not locate executable: %w", err)
	}
	exeDir := filepath.Dir(exe)

	candidates := []string{
		filepath.Join(exeDir, "backend.zip"),
		filepath.Join(exeDir, "assets", "backend.zip"),
		filepath.Join(exeDir, "..", "share", "ruma", "backend.zip"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("backend asset not found near %s", exeDir)
}

// =============================================================================
// EXTRACTION
// =============================================================================

// IsExtracted reports whether a current extraction already exists: the
// marker file must be present and carry the running version.
func (b *Bootstrapper) IsExtracted() bool {
	data, err := os.ReadFile(b.MarkerPath())
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(data)) == b.opts.Version
}

// Run performs the full bootstrap: locate, decrypt, extract, lock down.
// Already-current extractions are left alone.
func (b *Bootstrapper) Run() error {
	if b.IsExtracted() {
		return b.AssertPermissions()
	}

	assetPath, err := b.LocateAsset()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(assetPath)
	if err != nil {
		return fmt.Errorf("failed to read asset: %w", err)
	}

	key := DeriveAssetKey(b.opts.AppID, b.opts.Version)
	// SECURITY: Zero key material to prevent memory disclosure
	defer ZeroBytes(key)

	payload, err := DecryptAsset(raw, key)
	if err != nil {
		return err
	}

	if err := b.ExtractZip(payload); err != nil {
		return err
	}

	if err := HideDir(b.opts.SupportDir); err != nil {
		// Hiding is cosmetic on most platforms; extraction stays valid.
		fmt.Fprintf(os.Stderr, "Warning: could not hide support dir: %v\n", err)
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	if err := util.AtomicWriteFile(b.MarkerPath(), []byte(b.opts.Version+"\n"), FilePerm); err != nil {
		return fmt.Errorf("failed to write marker: %w", err)
	}

	return nil
}

// ExtractZip unpacks a zip payload into the support directory with locked
// down permissions. A stale previous extraction is replaced wholesale.
func (b *Bootstrapper) ExtractZip(payload []byte) error {
	reader, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return fmt.Errorf("asset is not a valid zip: %w", err)
	}

	dest := b.opts.SupportDir
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to clear support dir: %w", err)
	}
	if err := os.MkdirAll(dest, DirPerm); err != nil {
		return fmt.Errorf("failed to create support dir: %w", err)
	}

	for _, file := range reader.File {
		if err := b.extractEntry(dest, file); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}

	return nil
}

// extractEntry writes a single zip entry under dest.
// SECURITY: Rejects entries that would escape the destination (zip slip).
func (b *Bootstrapper) extractEntry(dest string, file *zip.File) error {
	target, err := securePath(dest, file.Name)
	if err != nil {
		return err
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(target, DirPerm)
	}

	if err := os.MkdirAll(filepath.Dir(target), DirPerm); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	perm := FilePerm
	if file.Mode()&0111 != 0 {
		perm = ExecPerm
	}

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	// The entry may have existed with looser permissions.
	return os.Chmod(target, perm)
}

// securePath joins name under dest and rejects traversal outside it.
func securePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}
	return target, nil
}

// =============================================================================
// PERMISSION REPAIR
// =============================================================================

// AssertPermissions walks the extracted tree and restores the locked down
// permission set on anything that drifted.
func (b *Bootstrapper) AssertPermissions() error {
	return filepath.Walk(b.opts.SupportDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // entry vanished mid-walk, ignore
		}

		want := FilePerm
		if info.IsDir() {
			want = DirPerm
		} else if info.Mode()&0111 != 0 {
			want = ExecPerm
		}

		if info.Mode().Perm() != want {
			if err := os.Chmod(path, want); err != nil {
				return fmt.Errorf("failed to repair %s: %w", path, err)
			}
		}
		return nil
	})
}

// Repair forces a clean re-extraction, for `ruma setup --repair`.
func (b *Bootstrapper) Repair() error {
	if err := os.RemoveAll(b.opts.SupportDir); err != nil {
		return fmt.Errorf("failed to remove support dir: %w", err)
	}
	return b.Run()
}
