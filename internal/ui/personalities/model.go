// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package personalities provides the personality roster view: list, filter,
// switch, create, and delete.
package personalities

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/personality"
	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// opTimeout bounds roster round trips.
const opTimeout = 15 * time.Second

// =============================================================================
// STATE
// =============================================================================

// State is the roster's interaction state.
type State int

const (
	StateList      State = iota // browsing the roster
	StateFiltering              // typing a fuzzy filter
	StateCreating               // filling the create form
	StateConfirm                // confirming a delete
)

// createField indexes the create form inputs.
type createField int

const (
	fieldName createField = iota
	fieldDescription
	fieldTraits
	fieldStyle

	fieldCount
)

// =============================================================================
// MESSAGES
// =============================================================================

// RosterMsg reports the outcome of a roster mutation or reload.
type RosterMsg struct {
	Op  string // "reload", "switch", "create", "delete"
	Err error
}

// ActiveChangedMsg tells the root model the active personality changed.
type ActiveChangedMsg struct {
	ID   string
	Name string
}

// StatsMsg delivers usage statistics for the footer line.
type StatsMsg struct {
	Stats *backend.PersonalityStats
	Err   error
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the personality roster.
type Model struct {
	state State
	theme *styles.Theme

	width  int
	height int

	mgr *personality.Manager

	cursor int
	filter textinput.Model

	// Create form
	form      [fieldCount]textinput.Model
	formFocus createField

	confirm components.Confirm
	// Pending delete target while the confirm dialog is open.
	deleteID   string
	deleteName string

	// Last fetched usage stats, nil until the first reload completes.
	stats *backend.PersonalityStats

	errMsg string
}

// New creates the roster view.
func New(theme *styles.Theme, mgr *personality.Manager) *Model {
	filter := textinput.New()
	filter.Placeholder = "filter"
	filter.Prompt = "/ "

	var form [fieldCount]textinput.Model
	labels := [fieldCount]string{"name", "description", "traits (comma separated)", "communication style"}
	for i := range form {
		form[i] = textinput.New()
		form[i].Placeholder = labels[i]
		form[i].Prompt = "  "
		form[i].CharLimit = 200
	}

	return &Model{
		theme:  theme,
		width:  80,
		mgr:    mgr,
		filter: filter,
		form:   form,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Reload fetches the roster from the backend.
func (m *Model) Reload() tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return RosterMsg{Op: "reload", Err: mgr.Reload(ctx)}
	}
}

// visible returns the roster filtered by the current fuzzy query.
func (m *Model) visible() []backend.Personality {
	all := m.mgr.List()
	query := strings.TrimSpace(m.filter.Value())
	if query == "" {
		return all
	}

	var out []backend.Personality
	for _, p := range all {
		if components.FuzzyMatches(query, p.Name) || components.FuzzyMatches(query, p.Description) {
			out = append(out, p)
		}
	}
	return out
}

// selected returns the personality under the cursor, nil when none.
func (m *Model) selected() *backend.Personality {
	list := m.visible()
	if len(list) == 0 {
		return nil
	}
	if m.cursor >= len(list) {
		m.cursor = len(list) - 1
	}
	return &list[m.cursor]
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the roster view.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case RosterMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return nil
		}
		m.errMsg = ""
		// Every successful roster op may change the active personality and
		// the usage counters.
		return tea.Batch(m.notifyActive(), m.statsCmd())

	case StatsMsg:
		// Stats are decoration; fetch failures leave the old line in place.
		if msg.Err == nil {
			m.stats = msg.Stats
		}
		return nil

	case components.ConfirmResultMsg:
		id := m.deleteID
		m.deleteID = ""
		m.deleteName = ""
		m.state = StateList
		if !msg.Confirmed || id == "" {
			return nil
		}
		return m.deleteCmd(id)
	}
	return nil
}

func (m *Model) handleKey(key tea.KeyMsg) tea.Cmd {
	switch m.state {
	case StateConfirm:
		return m.confirm.Update(key)

	case StateFiltering:
		switch key.String() {
		case "enter", "esc":
			if key.String() == "esc" {
				m.filter.SetValue("")
			}
			m.state = StateList
			m.filter.Blur()
			m.cursor = 0
			return nil
		default:
			var cmd tea.Cmd
			m.filter, cmd = m.filter.Update(key)
			m.cursor = 0
			return cmd
		}

	case StateCreating:
		return m.handleFormKey(key)

	default:
		return m.handleListKey(key)
	}
}

func (m *Model) handleListKey(key tea.KeyMsg) tea.Cmd {
	list := m.visible()
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(list)-1 {
			m.cursor++
		}
	case "/":
		m.state = StateFiltering
		m.filter.Focus()
		return textinput.Blink
	case "n":
		m.state = StateCreating
		m.formFocus = fieldName
		for i := range m.form {
			m.form[i].SetValue("")
			m.form[i].Blur()
		}
		m.form[fieldName].Focus()
		return textinput.Blink
	case "enter":
		if p := m.selected(); p != nil && !p.IsActive {
			return m.switchCmd(p.ID)
		}
	case "d", "delete":
		p := m.selected()
		if p == nil {
			return nil
		}
		if p.IsActive {
			m.errMsg = "cannot delete the active personality"
			return nil
		}
		m.deleteID = p.ID
		m.deleteName = p.Name
		m.state = StateConfirm
		m.confirm.Open("Delete personality",
			"Delete \""+p.Name+"\"? This cannot be undone.")
	case "r":
		return m.Reload()
	}
	return nil
}

func (m *Model) handleFormKey(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case "esc":
		m.state = StateList
		return nil
	case "tab", "down":
		m.moveFormFocus(1)
		return textinput.Blink
	case "shift+tab", "up":
		m.moveFormFocus(-1)
		return textinput.Blink
	case "enter":
		if m.formFocus < fieldCount-1 {
			m.moveFormFocus(1)
			return textinput.Blink
		}
		return m.submitForm()
	default:
		var cmd tea.Cmd
		m.form[m.formFocus], cmd = m.form[m.formFocus].Update(key)
		return cmd
	}
}

func (m *Model) moveFormFocus(delta int) {
	m.form[m.formFocus].Blur()
	m.formFocus = createField((int(m.formFocus) + delta + int(fieldCount)) % int(fieldCount))
	m.form[m.formFocus].Focus()
}

func (m *Model) submitForm() tea.Cmd {
	req := backend.CreatePersonalityRequest{
		Name:               strings.TrimSpace(m.form[fieldName].Value()),
		Description:        strings.TrimSpace(m.form[fieldDescription].Value()),
		CommunicationStyle: strings.TrimSpace(m.form[fieldStyle].Value()),
	}
	for _, t := range strings.Split(m.form[fieldTraits].Value(), ",") {
		if t = strings.TrimSpace(t); t != "" {
			req.Traits = append(req.Traits, t)
		}
	}

	if req.Name == "" {
		m.errMsg = "name is required"
		return nil
	}

	m.state = StateList
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return RosterMsg{Op: "create", Err: mgr.Create(ctx, req)}
	}
}

func (m *Model) switchCmd(id string) tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return RosterMsg{Op: "switch", Err: mgr.Switch(ctx, id)}
	}
}

func (m *Model) deleteCmd(id string) tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return RosterMsg{Op: "delete", Err: mgr.Delete(ctx, id)}
	}
}

// Typing reports whether the view currently owns text input, so the root
// model leaves tab alone.
func (m *Model) Typing() bool {
	return m.state == StateFiltering || m.state == StateCreating
}

// statsCmd fetches usage statistics off the update loop.
func (m *Model) statsCmd() tea.Cmd {
	mgr := m.mgr
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		stats, err := mgr.Stats(ctx)
		return StatsMsg{Stats: stats, Err: err}
	}
}

// notifyActive emits the active personality to the root model.
func (m *Model) notifyActive() tea.Cmd {
	active := m.mgr.Active()
	return func() tea.Msg {
		if active == nil {
			return ActiveChangedMsg{}
		}
		return ActiveChangedMsg{ID: active.ID, Name: active.Name}
	}
}
