// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package updates provides the update view.
package updates

import (
	"strings"

	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
	"github.com/suriai/ruma-tui/internal/update"
)

// =============================================================================
// RENDERING
// =============================================================================

// View renders the update view.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.ListTitle.Render("Updates"))
	b.WriteString("\n\n")
	b.WriteString(m.renderState())
	b.WriteString("\n")
	b.WriteString(m.renderBackups())

	if m.statusMsg != "" {
		b.WriteString("\n" + styles.RenderInfo(m.statusMsg) + "\n")
	}

	b.WriteString("\n" + m.theme.ListMeta.Render(m.shortcuts()))

	out := b.String()
	if m.confirm.Active() {
		out += "\n\n" + m.confirm.View()
	}
	return out
}

func (m *Model) renderState() string {
	info := m.machine.Info()

	switch m.machine.State() {
	case update.StateIdle:
		if info != nil && !info.Available {
			return styles.RenderSuccess("You are up to date (" + info.CurrentVersion + ").")
		}
		return m.theme.ListMeta.Render("Press c to check for updates.")

	case update.StateChecking:
		return m.theme.ListMeta.Render("Checking for updates...")

	case update.StateUpdateAvailable:
		if info == nil {
			return styles.RenderInfo("Update available.")
		}
		line := styles.RenderInfo("Update available: " + info.CurrentVersion + " -> " + info.LatestVersion)
		if info.DownloadSize > 0 {
			line += "  " + m.theme.ListMeta.Render(components.FmtBytes(info.DownloadSize))
		}
		if info.ReleaseNotes != "" {
			line += "\n" + m.theme.ListMeta.Render(components.TruncateWidth(info.ReleaseNotes, m.width-4))
		}
		return line

	case update.StateDownloading, update.StatePaused:
		label := "Downloading update"
		if m.machine.Cancelling() {
			label = "Cancelling..."
		}
		return m.theme.ListItem.Render(label) + "\n" + m.bar.View()

	case update.StateDownloadComplete:
		return styles.RenderSuccess("Download complete. Press i to install.")

	case update.StateInstalling:
		return m.theme.ListMeta.Render("Installing...")

	case update.StateInstallComplete:
		return styles.RenderSuccess("Update installed. Restart to finish.")

	case update.StateError:
		return styles.RenderError(m.machine.ErrorMessage()) + "\n" +
			m.theme.ListMeta.Render("esc to dismiss")

	default:
		if info != nil && !info.Available {
			return styles.RenderSuccess("You are up to date (" + info.CurrentVersion + ").")
		}
		return ""
	}
}

func (m *Model) renderBackups() string {
	var b strings.Builder
	b.WriteString("\n" + m.theme.ListTitle.Render("Backups") + "\n")

	if len(m.backups) == 0 {
		b.WriteString(m.theme.ListMeta.Render("  no backups") + "\n")
		return b.String()
	}

	for i, backup := range m.backups {
		line := backup.Version +
			"  " + m.theme.ListMeta.Render(backup.CreatedAt.Format("2006-01-02 15:04")) +
			"  " + m.theme.ListMeta.Render(components.FmtBytes(backup.SizeBytes))
		if i == m.cursor && !m.confirm.Active() {
			b.WriteString(m.theme.ListSelected.Render(line))
		} else {
			b.WriteString(m.theme.ListItem.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) shortcuts() string {
	switch m.machine.State() {
	case update.StateUpdateAvailable:
		return "d download  c recheck  enter restore  D delete backup"
	case update.StateDownloading:
		return "p pause  x cancel"
	case update.StatePaused:
		return "p resume  x cancel"
	case update.StateDownloadComplete:
		return "i install  x discard"
	default:
		return "c check  enter restore  D delete backup  r refresh"
	}
}
