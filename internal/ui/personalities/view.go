// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package personalities provides the personality roster view.
package personalities

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
	"github.com/suriai/ruma-tui/internal/util"
)

// =============================================================================
// RENDERING
// =============================================================================

// View renders the roster view.
func (m *Model) View() string {
	if m.state == StateCreating {
		return m.renderForm()
	}

	var b strings.Builder
	b.WriteString(m.theme.ListTitle.Render("Personalities"))
	b.WriteString("\n\n")

	if m.state == StateFiltering || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	list := m.visible()
	if len(list) == 0 {
		b.WriteString(m.theme.ListMeta.Render("No personalities. Press n to create one."))
		b.WriteString("\n")
	}

	for i, p := range list {
		swatch := lipgloss.NewStyle().
			Foreground(styles.PersonalityColor(p.ColorTheme)).
			Render("*")

		line := swatch + " " + p.Name
		if p.IsActive {
			line += " " + m.theme.ActiveBadge.Render("active")
		}
		if p.Description != "" {
			line += "  " + m.theme.ListMeta.Render(components.TruncateWidth(p.Description, m.width/2))
		}

		if i == m.cursor && m.state != StateConfirm {
			b.WriteString(m.theme.ListSelected.Render(line))
		} else {
			b.WriteString(m.theme.ListItem.Render(line))
		}
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + styles.RenderError(m.errMsg) + "\n")
	}

	if m.stats != nil {
		b.WriteString("\n" + m.theme.ListMeta.Render(
			util.IntToString(m.stats.TotalPersonalities)+" personalities · "+
				util.IntToString(m.stats.TotalInteractions)+" interactions"))
		b.WriteString("\n")
	}

	b.WriteString("\n" + m.theme.ListMeta.Render(
		"enter switch  n new  d delete  / filter  r refresh"))

	out := b.String()
	if m.state == StateConfirm {
		out += "\n\n" + m.confirm.View()
	}
	return out
}

// renderForm draws the create form.
func (m *Model) renderForm() string {
	var b strings.Builder
	b.WriteString(m.theme.ListTitle.Render("New personality"))
	b.WriteString("\n\n")

	for i := range m.form {
		cursor := "  "
		if createField(i) == m.formFocus {
			cursor = m.theme.CapsulePrompt.Render("> ")
		}
		b.WriteString(cursor + m.form[i].View() + "\n")
	}

	if m.errMsg != "" {
		b.WriteString("\n" + styles.RenderError(m.errMsg) + "\n")
	}

	b.WriteString("\n" + m.theme.ListMeta.Render("enter next/submit  tab move  esc cancel"))
	return b.String()
}
