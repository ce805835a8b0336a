// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package bootstrap

// HideDir hides the support directory from casual browsing. On Unix the
// directory is already dot-prefixed, so there is nothing to do.
func HideDir(path string) error {
	return nil
}
