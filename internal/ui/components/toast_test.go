// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

// =============================================================================
// TOAST TESTS
// =============================================================================

func TestToastShowAndExpire(t *testing.T) {
	var toast Toast

	cmd := toast.Show(ToastSuccess, "personality created")
	if cmd == nil {
		t.Fatal("Show should return an expiry command")
	}
	if !toast.Visible() {
		t.Fatal("toast should be visible after Show")
	}

	toast.Update(ToastExpiredMsg{Seq: 1})
	if toast.Visible() {
		t.Error("toast should hide after its expiry message")
	}
}

func TestToastNewerSupersedesOlder(t *testing.T) {
	var toast Toast

	toast.Show(ToastInfo, "first")
	toast.Show(ToastError, "second")

	// Expiry for the first toast must not hide the second.
	toast.Update(ToastExpiredMsg{Seq: 1})
	if !toast.Visible() {
		t.Error("stale expiry hid the newer toast")
	}

	toast.Update(ToastExpiredMsg{Seq: 2})
	if toast.Visible() {
		t.Error("toast should hide after its own expiry")
	}
}

func TestToastViewByLevel(t *testing.T) {
	var toast Toast

	toast.Show(ToastError, "backend unreachable")
	view := toast.View()
	if !strings.Contains(view, "[X]") {
		t.Errorf("error toast missing indicator: %q", view)
	}
	if !strings.Contains(view, "backend unreachable") {
		t.Error("toast missing message")
	}

	toast.Dismiss()
	if toast.View() != "" {
		t.Error("dismissed toast should render empty")
	}
}
