// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ask provides the question capsule view.
package ask

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// =============================================================================
// RENDERING
// =============================================================================

// View renders the ask view.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderCapsule())
	b.WriteString("\n")

	switch m.state {
	case StateThinking:
		b.WriteString("\n" + m.spinner.View() + "\n")
	case StateAnswered:
		b.WriteString("\n" + m.renderAnswer() + "\n")
	case StateError:
		box := m.theme.ErrorBox.Render(
			m.theme.ErrorTitle.Render(styles.StatusIndicators.Error+" Error") + "\n" +
				m.theme.ErrorMessage.Render(m.errMsg))
		b.WriteString("\n" + box + "\n")
		if m.fallback != "" {
			b.WriteString("\n" + m.theme.AnswerMeta.Render("captured text:") + "\n")
			b.WriteString(m.theme.AnswerBox.Width(m.width-4).Render(m.fallback) + "\n")
		}
	}

	return b.String()
}

// renderCapsule draws the input capsule with its capture badge.
func (m *Model) renderCapsule() string {
	var inner string
	if m.state == StateAttaching {
		inner = m.pathInput.View()
	} else {
		inner = m.input.View()
	}

	capsule := m.theme.Capsule.Width(m.width - 4).Render(inner)

	if m.capture != nil {
		badge := m.theme.CaptureBadge.Render("[capture: " + m.capture.Source + "]")
		hint := m.theme.AnswerMeta.Render(" ctrl+x to detach")
		return capsule + "\n" + badge + hint
	}
	return capsule
}

// renderAnswer renders the answer as markdown, falling back to the
// code-block parser when glamour cannot run in this terminal.
func (m *Model) renderAnswer() string {
	width := m.width - 6
	if width < 30 {
		width = 30
	}

	body := renderMarkdown(m.answer, width)

	var meta string
	if m.persona != "" {
		meta = "\n" + m.theme.AnswerMeta.Render("answered by "+m.persona)
	}

	question := m.theme.CapsulePrompt.Render("Q: ") + m.theme.CapsuleText.Render(m.question)

	return lipgloss.JoinVertical(lipgloss.Left,
		question,
		m.theme.AnswerBox.Width(m.width-4).Render(body+meta),
	)
}

// renderMarkdown renders markdown for the terminal.
func renderMarkdown(text string, width int) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return components.ParseCodeBlocks(text, width)
	}

	out, err := renderer.Render(text)
	if err != nil {
		return components.ParseCodeBlocks(text, width)
	}
	return strings.TrimRight(out, "\n")
}
