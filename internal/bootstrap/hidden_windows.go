// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package bootstrap

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// HideDir sets the hidden attribute on the support directory so the backend
// payload stays out of casual Explorer browsing.
func HideDir(path string) error {
	ptr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	attrs, err := windows.GetFileAttributes(ptr)
	if err != nil {
		return fmt.Errorf("failed to read attributes: %w", err)
	}

	if attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0 {
		return nil
	}

	if err := windows.SetFileAttributes(ptr, attrs|windows.FILE_ATTRIBUTE_HIDDEN); err != nil {
		return fmt.Errorf("failed to set hidden attribute: %w", err)
	}
	return nil
}
