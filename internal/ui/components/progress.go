// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the ruma TUI.
package components

import (
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// =============================================================================
// DOWNLOAD PROGRESS BAR
// =============================================================================

// DownloadBar renders a download's progress with byte counts and state.
type DownloadBar struct {
	bar progress.Model

	// Label names what is downloading (update, model id).
	Label string

	Percent         float64
	BytesDownloaded int64
	TotalBytes      int64
	Paused          bool

	Width int
}

// NewDownloadBar creates a download progress bar.
func NewDownloadBar(label string) DownloadBar {
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithoutPercentage(),
	)
	return DownloadBar{
		bar:   bar,
		Label: label,
		Width: 50,
	}
}

// SetProgress updates the bar from a poll response.
func (d *DownloadBar) SetProgress(percent float64, downloaded, total int64) {
	d.Percent = percent
	d.BytesDownloaded = downloaded
	d.TotalBytes = total
}

// Update handles progress animation frames.
func (d *DownloadBar) Update(msg tea.Msg) tea.Cmd {
	if frame, ok := msg.(progress.FrameMsg); ok {
		model, cmd := d.bar.Update(frame)
		d.bar = model.(progress.Model)
		return cmd
	}
	return nil
}

// View renders the bar with its label and byte counts.
func (d DownloadBar) View() string {
	barWidth := d.Width - 4
	if barWidth < 10 {
		barWidth = 10
	}
	d.bar.Width = barWidth

	theme := styles.NewTheme()

	label := theme.ListTitle.Render(d.Label)
	if d.Paused {
		label += " " + theme.WarningStyle.Render("[paused]")
	}

	counts := ""
	if d.TotalBytes > 0 {
		counts = theme.ListMeta.Render(
			FmtBytes(d.BytesDownloaded) + " / " + FmtBytes(d.TotalBytes) + "  " + fmtPercent(d.Percent))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		label,
		d.bar.ViewAs(d.Percent/100),
		counts,
	)
}
