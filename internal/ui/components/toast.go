// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ruma TUI.
package components

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// =============================================================================
// TOAST NOTIFICATIONS
// =============================================================================

// ToastLevel classifies a toast for styling.
type ToastLevel int

const (
	ToastInfo ToastLevel = iota
	ToastSuccess
	ToastWarning
	ToastError
)

// DefaultToastDuration is how long a toast stays visible.
const DefaultToastDuration = 4 * time.Second

// Toast is a transient notification shown above the status bar.
type Toast struct {
	Level   ToastLevel
	Message string

	visible bool
	seq     int
}

// ToastExpiredMsg is emitted when a toast's display time elapses.
type ToastExpiredMsg struct {
	Seq int
}

// Show displays a message and returns the expiry command. A newer toast
// supersedes an older one; the stale expiry is ignored by sequence number.
func (t *Toast) Show(level ToastLevel, message string) tea.Cmd {
	t.Level = level
	t.Message = message
	t.visible = true
	t.seq++

	seq := t.seq
	return tea.Tick(DefaultToastDuration, func(time.Time) tea.Msg {
		return ToastExpiredMsg{Seq: seq}
	})
}

// Update hides the toast when its own expiry arrives.
func (t *Toast) Update(msg tea.Msg) {
	if expired, ok := msg.(ToastExpiredMsg); ok && expired.Seq == t.seq {
		t.visible = false
	}
}

// Dismiss hides the toast immediately.
func (t *Toast) Dismiss() {
	t.visible = false
}

// Visible reports whether the toast should be rendered.
func (t *Toast) Visible() bool {
	return t.visible
}

// View renders the toast, or an empty string when hidden.
func (t *Toast) View() string {
	if !t.visible {
		return ""
	}

	theme := styles.NewTheme()

	var prefix, body string
	switch t.Level {
	case ToastSuccess:
		prefix = styles.StatusIndicators.Success
		body = theme.SuccessStyle.Render(t.Message)
	case ToastWarning:
		prefix = styles.StatusIndicators.Warning
		body = theme.WarningStyle.Render(t.Message)
	case ToastError:
		prefix = styles.StatusIndicators.Error
		body = theme.ErrorStyle.Render(t.Message)
	default:
		prefix = styles.StatusIndicators.Info
		body = theme.InfoStyle.Render(t.Message)
	}

	return theme.Toast.Render(prefix + " " + body)
}
