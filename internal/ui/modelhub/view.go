// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package modelhub provides the model hub view.
package modelhub

import (
	"sort"
	"strings"

	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// =============================================================================
// RENDERING
// =============================================================================

// View renders the hub view.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.ListTitle.Render("Model Hub"))
	b.WriteString("\n\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")

	if len(m.bars) > 0 {
		b.WriteString("\n" + m.theme.ListTitle.Render("Downloading") + "\n")
		ids := make([]string, 0, len(m.bars))
		for id := range m.bars {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			b.WriteString(m.bars[id].View() + "\n")
		}
	}

	m.renderResults(&b)
	m.renderLocal(&b)
	m.renderFailed(&b)

	if m.errMsg != "" {
		b.WriteString("\n" + styles.RenderError(m.errMsg) + "\n")
	}

	b.WriteString("\n" + m.theme.ListMeta.Render(
		"/ search  ←/→ section  enter download/clean  r refresh"))

	out := b.String()
	if m.confirm.Active() {
		out += "\n\n" + m.confirm.View()
	}
	return out
}

func (m *Model) renderResults(b *strings.Builder) {
	results := m.hub.Results()
	if len(results) == 0 {
		return
	}

	title := "Results"
	if q := m.hub.LastQuery(); q != "" {
		title += " for \"" + q + "\""
	}
	b.WriteString("\n" + m.sectionTitle(title, sectionResults) + "\n")

	for i, r := range results {
		line := r.ID
		if r.Author != "" {
			line += "  " + m.theme.ListMeta.Render("by "+r.Author)
		}
		if r.SizeBytes > 0 {
			line += "  " + m.theme.ListMeta.Render(components.FmtBytes(r.SizeBytes))
		}
		if r.Downloads > 0 {
			line += "  " + m.theme.ListMeta.Render(components.TruncateWidth(fmtCount(r.Downloads)+" pulls", 20))
		}
		b.WriteString(m.renderItem(line, sectionResults, i) + "\n")
	}
}

func (m *Model) renderLocal(b *strings.Builder) {
	local := m.hub.Local()
	b.WriteString("\n" + m.sectionTitle("Installed", sectionLocal) + "\n")
	if len(local) == 0 {
		b.WriteString(m.theme.ListMeta.Render("  no models installed") + "\n")
		return
	}
	for i, l := range local {
		line := l.ID + "  " + m.theme.ListMeta.Render(components.FmtBytes(l.SizeBytes))
		b.WriteString(m.renderItem(line, sectionLocal, i) + "\n")
	}
}

func (m *Model) renderFailed(b *strings.Builder) {
	failed := m.hub.Failed()
	if len(failed) == 0 {
		return
	}

	b.WriteString("\n" + m.sectionTitle("Failed downloads", sectionFailed) + "\n")
	for i, f := range failed {
		line := styles.StatusIndicators.Error + " " + f.ModelID +
			"  " + m.theme.ListMeta.Render(components.FmtBytes(f.TotalSize)+" of partial files")
		b.WriteString(m.renderItem(line, sectionFailed, i) + "\n")
	}
}

func (m *Model) sectionTitle(title string, s section) string {
	if m.focus == s {
		return m.theme.ListTitle.Render(title)
	}
	return m.theme.ListMeta.Render(title)
}

func (m *Model) renderItem(line string, s section, i int) string {
	if m.focus == s && m.cursor[s] == i && !m.confirm.Active() {
		return m.theme.ListSelected.Render(line)
	}
	return m.theme.ListItem.Render(line)
}

// fmtCount renders download counts compactly (12.3k, 4.1M).
func fmtCount(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmtTenths(n, 1_000_000) + "M"
	case n >= 1_000:
		return fmtTenths(n, 1_000) + "k"
	default:
		return itoa(n)
	}
}

func fmtTenths(n, div int64) string {
	whole := n / div
	tenth := (n % div) * 10 / div
	return itoa(whole) + "." + itoa(tenth)
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
