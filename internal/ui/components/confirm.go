// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ruma TUI.
package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// =============================================================================
// CONFIRMATION DIALOG
// =============================================================================

// Confirm is a modal yes/no prompt for destructive actions (deleting a
// personality, removing failed downloads, restoring a backup).
type Confirm struct {
	Title   string
	Message string

	// yes is the highlighted choice. Defaults to no so a double Enter
	// never destroys anything.
	yes    bool
	active bool
}

// ConfirmResultMsg carries the user's answer.
type ConfirmResultMsg struct {
	Confirmed bool
}

// Open activates the dialog with the given prompt.
func (c *Confirm) Open(title, message string) {
	c.Title = title
	c.Message = message
	c.yes = false
	c.active = true
}

// Active reports whether the dialog is showing.
func (c *Confirm) Active() bool {
	return c.active
}

// Update handles keys while the dialog is open. It returns a
// ConfirmResultMsg command when the user decides.
func (c *Confirm) Update(msg tea.Msg) tea.Cmd {
	if !c.active {
		return nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "left", "right", "tab", "h", "l":
		c.yes = !c.yes
	case "y":
		return c.close(true)
	case "n", "esc":
		return c.close(false)
	case "enter":
		return c.close(c.yes)
	}
	return nil
}

func (c *Confirm) close(confirmed bool) tea.Cmd {
	c.active = false
	return func() tea.Msg {
		return ConfirmResultMsg{Confirmed: confirmed}
	}
}

// View renders the dialog box.
func (c *Confirm) View() string {
	if !c.active {
		return ""
	}

	theme := styles.NewTheme()

	yesBtn := theme.ConfirmButton.Render("Yes")
	noBtn := theme.ConfirmButtonActive.Render("No")
	if c.yes {
		yesBtn = theme.ConfirmButtonActive.Render("Yes")
		noBtn = theme.ConfirmButton.Render("No")
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(styles.Rose).Render(c.Title))
	b.WriteString("\n\n")
	b.WriteString(c.Message)
	b.WriteString("\n\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, yesBtn, "  ", noBtn))

	return theme.ConfirmBox.Render(b.String())
}
