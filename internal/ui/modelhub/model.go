// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package modelhub provides the model hub view: search, download with live
// progress, the local model list, and failed-download cleanup.
package modelhub

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/hub"
	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// opTimeout bounds hub round trips other than the download itself.
const opTimeout = 30 * time.Second

// =============================================================================
// SECTIONS
// =============================================================================

// section identifies the focused list.
type section int

const (
	sectionResults section = iota
	sectionLocal
	sectionFailed

	sectionCount
)

// =============================================================================
// MESSAGES
// =============================================================================

// SearchDoneMsg reports a finished hub search.
type SearchDoneMsg struct {
	Err error
}

// DownloadStartedMsg reports a download registration.
type DownloadStartedMsg struct {
	ModelID string
	Err     error
}

// PollTickMsg drives download status polling.
type PollTickMsg struct {
	ModelID string
}

// PollResultMsg delivers one download status poll.
type PollResultMsg struct {
	ModelID  string
	Finished bool
	Err      error
}

// RefreshDoneMsg reports a local/failed list refresh.
type RefreshDoneMsg struct {
	Err error
}

// CleanupDoneMsg reports a failed-download cleanup.
type CleanupDoneMsg struct {
	ModelID string
	Err     error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the hub view.
type Model struct {
	theme *styles.Theme

	width  int
	height int

	hub *hub.Hub

	search    textinput.Model
	searching bool

	focus  section
	cursor map[section]int

	bars map[string]*components.DownloadBar

	confirm   components.Confirm
	cleanupID string

	errMsg string
}

// New creates the hub view.
func New(theme *styles.Theme, h *hub.Hub) *Model {
	search := textinput.New()
	search.Placeholder = "search models"
	search.Prompt = "? "
	search.CharLimit = 120

	return &Model{
		theme:  theme,
		width:  80,
		hub:    h,
		search: search,
		cursor: make(map[section]int),
		bars:   make(map[string]*components.DownloadBar),
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.search.Width = width - 8
	for _, bar := range m.bars {
		bar.Width = width - 8
	}
}

// Refresh reloads the local and failed lists.
func (m *Model) Refresh() tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		if err := h.RefreshLocal(ctx); err != nil {
			return RefreshDoneMsg{Err: err}
		}
		return RefreshDoneMsg{Err: h.RefreshFailed(ctx)}
	}
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) searchCmd(query string) tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return SearchDoneMsg{Err: h.Search(ctx, query)}
	}
}

func (m *Model) startDownloadCmd(modelID string) tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return DownloadStartedMsg{ModelID: modelID, Err: h.StartDownload(ctx, modelID)}
	}
}

// pollTick schedules the next status poll for a download.
func pollTick(modelID string) tea.Cmd {
	return tea.Tick(hub.StatusPollInterval, func(time.Time) tea.Msg {
		return PollTickMsg{ModelID: modelID}
	})
}

func (m *Model) pollCmd(modelID string) tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		status, err := h.PollDownload(ctx, modelID)
		return PollResultMsg{
			ModelID:  modelID,
			Finished: err == nil && status == nil,
			Err:      err,
		}
	}
}

func (m *Model) cleanupCmd(modelID string) tea.Cmd {
	h := m.hub
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return CleanupDoneMsg{ModelID: modelID, Err: h.Cleanup(ctx, modelID)}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the hub view.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case SearchDoneMsg:
		m.searching = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		} else {
			m.errMsg = ""
			m.cursor[sectionResults] = 0
		}
		return nil

	case DownloadStartedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return nil
		}
		m.errMsg = ""
		bar := components.NewDownloadBar(msg.ModelID)
		bar.Width = m.width - 8
		m.bars[msg.ModelID] = &bar
		return pollTick(msg.ModelID)

	case PollTickMsg:
		if _, active := m.hub.DownloadStatus(msg.ModelID); !active {
			delete(m.bars, msg.ModelID)
			return nil
		}
		return m.pollCmd(msg.ModelID)

	case PollResultMsg:
		return m.handlePollResult(msg)

	case RefreshDoneMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		}
		return nil

	case CleanupDoneMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return nil
		}
		m.errMsg = ""
		if m.cursor[sectionFailed] >= len(m.hub.Failed()) && m.cursor[sectionFailed] > 0 {
			m.cursor[sectionFailed]--
		}
		return nil

	case components.ConfirmResultMsg:
		id := m.cleanupID
		m.cleanupID = ""
		if !msg.Confirmed || id == "" {
			return nil
		}
		return m.cleanupCmd(id)

	default:
		var cmds []tea.Cmd
		for _, bar := range m.bars {
			if cmd := bar.Update(msg); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
		return tea.Batch(cmds...)
	}
}

func (m *Model) handlePollResult(msg PollResultMsg) tea.Cmd {
	if msg.Err != nil {
		// Transient poll errors keep the bar; the next tick retries.
		m.errMsg = msg.Err.Error()
		return pollTick(msg.ModelID)
	}
	m.errMsg = ""

	status, active := m.hub.DownloadStatus(msg.ModelID)
	if msg.Finished || !active {
		delete(m.bars, msg.ModelID)
		return nil
	}

	if bar, ok := m.bars[msg.ModelID]; ok {
		bar.SetProgress(status.Percent, status.BytesDownloaded, status.TotalBytes)
	}
	return pollTick(msg.ModelID)
}

func (m *Model) handleKey(key tea.KeyMsg) tea.Cmd {
	if m.confirm.Active() {
		return m.confirm.Update(key)
	}

	if m.searching {
		switch key.String() {
		case "enter":
			m.searching = false
			m.search.Blur()
			return m.searchCmd(m.search.Value())
		case "esc":
			m.searching = false
			m.search.Blur()
			return nil
		default:
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(key)
			return cmd
		}
	}

	switch key.String() {
	case "?", "/":
		m.searching = true
		m.search.Focus()
		return textinput.Blink
	case "right", "l":
		m.focus = (m.focus + 1) % sectionCount
	case "left", "h":
		m.focus = (m.focus + sectionCount - 1) % sectionCount
	case "up", "k":
		if m.cursor[m.focus] > 0 {
			m.cursor[m.focus]--
		}
	case "down", "j":
		if m.cursor[m.focus] < m.sectionLen(m.focus)-1 {
			m.cursor[m.focus]++
		}
	case "enter":
		return m.activate()
	case "r":
		return m.Refresh()
	}
	return nil
}

// sectionLen returns the item count of a section.
func (m *Model) sectionLen(s section) int {
	switch s {
	case sectionResults:
		return len(m.hub.Results())
	case sectionLocal:
		return len(m.hub.Local())
	case sectionFailed:
		return len(m.hub.Failed())
	}
	return 0
}

// activate acts on the item under the cursor.
func (m *Model) activate() tea.Cmd {
	switch m.focus {
	case sectionResults:
		results := m.hub.Results()
		i := m.cursor[sectionResults]
		if i >= len(results) {
			return nil
		}
		return m.startDownloadCmd(results[i].ID)

	case sectionFailed:
		failed := m.hub.Failed()
		i := m.cursor[sectionFailed]
		if i >= len(failed) {
			return nil
		}
		f := failed[i]
		m.cleanupID = f.ModelID
		m.confirm.Open("Remove failed download",
			"Remove "+components.FmtBytes(f.TotalSize)+" of partial files for \""+f.ModelID+"\"?")
	}
	return nil
}
