// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ruma TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR
// =============================================================================

// StatusBar is the bottom bar: backend state, active personality, update
// badge, and contextual shortcuts.
type StatusBar struct {
	Width int

	// Backend connection
	Connected  bool
	BackendURL string

	// Active personality name, empty when none.
	Personality string

	// Update badge
	UpdateAvailable bool
	Downloading     bool
	DownloadPercent float64

	// Shortcuts shown on the right.
	Shortcuts []Shortcut
}

// Shortcut is one key hint in the status bar.
type Shortcut struct {
	Key  string
	Desc string
}

// NewStatusBar creates a status bar with default shortcuts.
func NewStatusBar() StatusBar {
	return StatusBar{
		Shortcuts: []Shortcut{
			{"tab", "views"},
			{"ctrl+q", "quit"},
		},
	}
}

// View renders the status bar.
func (s StatusBar) View() string {
	theme := styles.NewTheme()

	var left []string

	if s.Connected {
		left = append(left, theme.StatusOnline.Render("* connected"))
	} else {
		left = append(left, theme.StatusOffline.Render("* offline"))
	}

	if s.Personality != "" {
		left = append(left, theme.ListMeta.Render("as ")+
			lipgloss.NewStyle().Foreground(styles.Indigo).Bold(true).Render(s.Personality))
	}

	switch {
	case s.Downloading:
		left = append(left, theme.StatusUpdating.Render("update "+fmtPercent(s.DownloadPercent)))
	case s.UpdateAvailable:
		left = append(left, theme.StatusUpdating.Render("update available"))
	}

	var right []string
	for _, sc := range s.Shortcuts {
		right = append(right, theme.ShortcutKey.Render(sc.Key)+" "+theme.ShortcutDesc.Render(sc.Desc))
	}

	leftStr := strings.Join(left, theme.ListMeta.Render(" | "))
	rightStr := strings.Join(right, "  ")

	// Pad the middle so the shortcuts sit flush right.
	gap := s.Width - lipgloss.Width(leftStr) - lipgloss.Width(rightStr) - 2
	if gap < 1 {
		gap = 1
	}

	return theme.StatusBar.Width(s.Width).Render(leftStr + strings.Repeat(" ", gap) + rightStr)
}
