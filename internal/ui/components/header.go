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
// HEADER COMPONENT
// =============================================================================

// Tab identifies one of the top-level views.
type Tab int

const (
	TabAsk Tab = iota
	TabPersonalities
	TabHub
	TabUpdates
)

// String returns the tab label.
func (t Tab) String() string {
	switch t {
	case TabAsk:
		return "Ask"
	case TabPersonalities:
		return "Personalities"
	case TabHub:
		return "Models"
	case TabUpdates:
		return "Updates"
	default:
		return "?"
	}
}

// AllTabs lists the tabs in display order.
var AllTabs = []Tab{TabAsk, TabPersonalities, TabHub, TabUpdates}

// Header is the top bar: brand, active personality, and the tab strip.
type Header struct {
	Width       int
	Active      Tab
	Personality string

	theme *styles.Theme
}

// NewHeader creates the header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the available width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetActive switches the highlighted tab.
func (h *Header) SetActive(tab Tab) {
	h.Active = tab
}

// Next returns the tab after the active one, wrapping around.
func (h *Header) Next() Tab {
	return AllTabs[(int(h.Active)+1)%len(AllTabs)]
}

// Prev returns the tab before the active one, wrapping around.
func (h *Header) Prev() Tab {
	return AllTabs[(int(h.Active)+len(AllTabs)-1)%len(AllTabs)]
}

// View renders the header.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	brand := h.theme.HeaderBrand.Render("ruma")
	if h.Personality != "" {
		brand += h.theme.HeaderTitle.Render(" / " + h.Personality)
	}

	var tabs []string
	for _, tab := range AllTabs {
		if tab == h.Active {
			tabs = append(tabs, h.theme.TabActive.Render(tab.String()))
		} else {
			tabs = append(tabs, h.theme.Tab.Render(tab.String()))
		}
	}
	tabStrip := strings.Join(tabs, " ")

	gap := width - lipgloss.Width(brand) - lipgloss.Width(tabStrip) - 2
	if gap < 1 {
		gap = 1
	}

	return h.theme.Header.Width(width).Render(brand + strings.Repeat(" ", gap) + tabStrip)
}
