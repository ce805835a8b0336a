// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package personalities

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/personality"
	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

type fakeClient struct {
	roster   []backend.Personality
	switched string
	deleted  string
}

func (f *fakeClient) ListPersonalities(context.Context) ([]backend.Personality, error) {
	out := make([]backend.Personality, len(f.roster))
	copy(out, f.roster)
	return out, nil
}

func (f *fakeClient) CreatePersonality(_ context.Context, req backend.CreatePersonalityRequest) (*backend.Personality, error) {
	p := backend.Personality{ID: "new", Name: req.Name, Description: req.Description}
	f.roster = append(f.roster, p)
	return &p, nil
}

func (f *fakeClient) SwitchPersonality(_ context.Context, id string) error {
	f.switched = id
	for i := range f.roster {
		f.roster[i].IsActive = f.roster[i].ID == id
	}
	return nil
}

func (f *fakeClient) DeletePersonality(_ context.Context, id string) error {
	f.deleted = id
	var kept []backend.Personality
	for _, p := range f.roster {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.roster = kept
	return nil
}

func (f *fakeClient) PersonalityStats(context.Context) (*backend.PersonalityStats, error) {
	return &backend.PersonalityStats{TotalPersonalities: len(f.roster)}, nil
}

func newTestModel(t *testing.T) (*Model, *fakeClient) {
	t.Helper()
	client := &fakeClient{
		roster: []backend.Personality{
			{ID: "p1", Name: "casual", IsActive: true},
			{ID: "p2", Name: "coder", Description: "terse technical answers"},
			{ID: "p3", Name: "research-assistant"},
		},
	}
	mgr := personality.NewManager(client)
	m := New(styles.NewTheme(), mgr)

	msg := m.Reload()()
	if roster, ok := msg.(RosterMsg); !ok || roster.Err != nil {
		t.Fatalf("reload failed: %v", msg)
	}
	m.Update(msg)
	return m, client
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// =============================================================================
// TESTS
// =============================================================================

func TestSwitchSelectsPersonality(t *testing.T) {
	m, client := newTestModel(t)

	// Move to "coder" and switch.
	m.Update(key("down"))
	cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected switch command")
	}
	msg := cmd().(RosterMsg)
	if msg.Op != "switch" || msg.Err != nil {
		t.Fatalf("switch result: %+v", msg)
	}
	if client.switched != "p2" {
		t.Errorf("switched id = %q, want p2", client.switched)
	}

	// The roster message re-announces the active personality (batched with
	// the stats refresh).
	notify := m.Update(msg)
	if notify == nil {
		t.Fatal("expected active-changed notification")
	}
	active, ok := findActiveChanged(notify())
	if !ok {
		t.Fatal("expected an ActiveChangedMsg in the batch")
	}
	if active.ID != "p2" {
		t.Errorf("active id = %q, want p2", active.ID)
	}
}

// findActiveChanged digs an ActiveChangedMsg out of a possibly batched
// message.
func findActiveChanged(msg tea.Msg) (ActiveChangedMsg, bool) {
	switch msg := msg.(type) {
	case ActiveChangedMsg:
		return msg, true
	case tea.BatchMsg:
		for _, cmd := range msg {
			if cmd == nil {
				continue
			}
			if found, ok := findActiveChanged(cmd()); ok {
				return found, true
			}
		}
	}
	return ActiveChangedMsg{}, false
}

func TestSwitchOnActiveIsNoop(t *testing.T) {
	m, _ := newTestModel(t)
	// Cursor starts on the active personality.
	if cmd := m.Update(key("enter")); cmd != nil {
		t.Error("switching to the already-active personality should be a no-op")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, client := newTestModel(t)

	m.Update(key("down"))
	m.Update(key("d"))
	if m.state != StateConfirm {
		t.Fatalf("state = %v, want StateConfirm", m.state)
	}

	// Default choice is No; enter declines.
	cmd := m.Update(key("enter"))
	if cmd == nil {
		t.Fatal("expected confirm result command")
	}
	m.Update(cmd().(components.ConfirmResultMsg))
	if client.deleted != "" {
		t.Error("declined confirm should not delete")
	}
	if m.state != StateList {
		t.Errorf("state = %v, want StateList", m.state)
	}
}

func TestDeleteConfirmed(t *testing.T) {
	m, client := newTestModel(t)

	m.Update(key("down"))
	m.Update(key("d"))
	cmd := m.Update(key("y"))
	result := cmd().(components.ConfirmResultMsg)
	if !result.Confirmed {
		t.Fatal("y should confirm")
	}

	delCmd := m.Update(result)
	if delCmd == nil {
		t.Fatal("expected delete command")
	}
	msg := delCmd().(RosterMsg)
	if msg.Op != "delete" || msg.Err != nil {
		t.Fatalf("delete result: %+v", msg)
	}
	if client.deleted != "p2" {
		t.Errorf("deleted id = %q, want p2", client.deleted)
	}
}

func TestDeleteActivePersonalityBlocked(t *testing.T) {
	m, client := newTestModel(t)

	// Cursor on the active personality.
	m.Update(key("d"))
	if m.state == StateConfirm {
		t.Fatal("active personality must not be deletable")
	}
	if m.errMsg == "" {
		t.Error("expected an error message")
	}
	if client.deleted != "" {
		t.Error("nothing should be deleted")
	}
}

func TestFuzzyFilterNarrowsRoster(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key("/"))
	if m.state != StateFiltering {
		t.Fatalf("state = %v, want StateFiltering", m.state)
	}
	m.filter.SetValue("coder")
	m.Update(key("enter"))

	list := m.visible()
	if len(list) != 1 || list[0].Name != "coder" {
		t.Fatalf("filtered roster = %+v, want just coder", list)
	}

	// esc clears the filter.
	m.Update(key("/"))
	m.Update(key("esc"))
	if len(m.visible()) != 3 {
		t.Error("esc should clear the filter")
	}
}

func TestCreateFormSubmits(t *testing.T) {
	m, client := newTestModel(t)

	m.Update(key("n"))
	if m.state != StateCreating {
		t.Fatalf("state = %v, want StateCreating", m.state)
	}

	m.form[fieldName].SetValue("mentor")
	m.form[fieldTraits].SetValue("patient, thorough")

	// Enter advances through fields, submitting on the last.
	var cmd tea.Cmd
	for i := 0; i < int(fieldCount); i++ {
		cmd = m.Update(key("enter"))
	}
	if cmd == nil {
		t.Fatal("expected create command")
	}
	msg := cmd().(RosterMsg)
	if msg.Op != "create" || msg.Err != nil {
		t.Fatalf("create result: %+v", msg)
	}

	found := false
	for _, p := range client.roster {
		if p.Name == "mentor" {
			found = true
		}
	}
	if !found {
		t.Error("backend never saw the new personality")
	}
}

func TestCreateRequiresName(t *testing.T) {
	m, _ := newTestModel(t)

	m.Update(key("n"))
	var cmd tea.Cmd
	for i := 0; i < int(fieldCount); i++ {
		cmd = m.Update(key("enter"))
	}
	if cmd != nil {
		t.Error("blank name should not submit")
	}
	if m.errMsg == "" {
		t.Error("expected an error message")
	}
}
