// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ask

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/history"
	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// =============================================================================
// FAKES
// =============================================================================

type fakeAsker struct {
	lastReq backend.AnalyzeRequest
	resp    *backend.AnalyzeResponse
	err     error
}

func (f *fakeAsker) Analyze(_ context.Context, req backend.AnalyzeRequest) (*backend.AnalyzeResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

type fakeStore struct {
	entries []history.Entry
}

func (f *fakeStore) Add(entry history.Entry) (string, error) {
	f.entries = append(f.entries, entry)
	return "id-1", nil
}

func enterKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

// drain runs a command and feeds its message back into the model, following
// one level of tea.Batch.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	msg := cmd()
	if _, ok := msg.(spinner.TickMsg); ok {
		// Spinner ticks self-perpetuate; don't follow them.
		return
	}
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, sub := range batch {
			if sub != nil {
				drain(t, m, sub)
			}
		}
		return
	}
	if next := m.Update(msg); next != nil {
		drain(t, m, next)
	}
}

// =============================================================================
// TESTS
// =============================================================================

func TestSubmitRecordsAnswerAndHistory(t *testing.T) {
	client := &fakeAsker{resp: &backend.AnalyzeResponse{Answer: "42", Personality: "casual"}}
	store := &fakeStore{}
	m := New(styles.NewTheme(), client, store)
	m.SetPersonality("p1", "casual")

	m.input.SetValue("what is the answer")
	drain(t, m, m.Update(enterKey()))

	if m.state != StateAnswered {
		t.Fatalf("state = %v, want StateAnswered", m.state)
	}
	if m.answer != "42" {
		t.Errorf("answer = %q, want %q", m.answer, "42")
	}
	if client.lastReq.Question != "what is the answer" {
		t.Errorf("sent question = %q", client.lastReq.Question)
	}

	if len(store.entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(store.entries))
	}
	if store.entries[0].PersonalityID != "p1" {
		t.Errorf("history personality = %q, want p1", store.entries[0].PersonalityID)
	}
	if store.entries[0].HadCapture {
		t.Error("entry should not record a capture")
	}
}

func TestBlankQuestionIsIgnored(t *testing.T) {
	client := &fakeAsker{}
	m := New(styles.NewTheme(), client, nil)

	m.input.SetValue("   ")
	if cmd := m.Update(enterKey()); cmd != nil {
		t.Error("blank question should not produce a command")
	}
	if m.state != StateInput {
		t.Errorf("state = %v, want StateInput", m.state)
	}
}

func TestAttachedCaptureFlowsIntoRequest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "screen.txt")
	if err := os.WriteFile(path, []byte("Error: connection refused"), 0644); err != nil {
		t.Fatal(err)
	}

	client := &fakeAsker{resp: &backend.AnalyzeResponse{Answer: "restart it"}}
	store := &fakeStore{}
	m := New(styles.NewTheme(), client, store)

	// ctrl+g opens the attach prompt; the loaded capture returns to input.
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlG})
	if m.state != StateAttaching {
		t.Fatalf("state = %v, want StateAttaching", m.state)
	}
	m.pathInput.SetValue(path)
	drain(t, m, m.Update(enterKey()))

	if !m.HasCapture() {
		t.Fatal("capture should be attached")
	}

	m.input.SetValue("what does this mean")
	drain(t, m, m.Update(enterKey()))

	if client.lastReq.OCRText != "Error: connection refused" {
		t.Errorf("request OCR text = %q", client.lastReq.OCRText)
	}
	if m.HasCapture() {
		t.Error("capture should be consumed by the question")
	}
	if len(store.entries) != 1 || !store.entries[0].HadCapture {
		t.Error("history entry should record the capture")
	}
}

func TestDetachCapture(t *testing.T) {
	m := New(styles.NewTheme(), &fakeAsker{}, nil)
	m.Update(CaptureLoadedMsg{Capture: nil, Err: nil})

	// A real capture, then ctrl+x drops it.
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	os.WriteFile(path, []byte("hello"), 0644)
	drain(t, m, loadCaptureCmd(path))
	if !m.HasCapture() {
		t.Fatal("capture should be attached")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	if m.HasCapture() {
		t.Error("ctrl+x should detach the capture")
	}
}

func TestBackendErrorShowsFriendlyMessage(t *testing.T) {
	client := &fakeAsker{err: errors.New("boom")}
	m := New(styles.NewTheme(), client, nil)

	m.input.SetValue("q")
	drain(t, m, m.Update(enterKey()))

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if m.errMsg == "" {
		t.Error("error message should be set")
	}

	// esc returns to input.
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateInput {
		t.Errorf("state after esc = %v, want StateInput", m.state)
	}
}

func TestAnalyzeFailureFallsBackToCapturedText(t *testing.T) {
	client := &fakeAsker{err: errors.New("vision model crashed")}
	m := New(styles.NewTheme(), client, nil)
	m.SetSize(100, 40)

	dir := t.TempDir()
	path := filepath.Join(dir, "screen.txt")
	if err := os.WriteFile(path, []byte("ORA-00942: table or view does not exist"), 0644); err != nil {
		t.Fatal(err)
	}
	drain(t, m, loadCaptureCmd(path))
	if !m.HasCapture() {
		t.Fatal("capture should be attached")
	}

	m.input.SetValue("what does this mean")
	drain(t, m, m.Update(enterKey()))

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	view := m.View()
	if !strings.Contains(view, "ORA-00942") {
		t.Error("view should show the captured text when analysis fails")
	}
	if m.errMsg == "" {
		t.Error("error message should still be shown alongside the text")
	}

	// esc clears the degraded answer along with the error.
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if strings.Contains(m.View(), "ORA-00942") {
		t.Error("esc should clear the fallback text")
	}
}

func TestAnalyzeFailureWithoutCaptureShowsErrorOnly(t *testing.T) {
	client := &fakeAsker{err: errors.New("boom")}
	m := New(styles.NewTheme(), client, nil)

	m.input.SetValue("q")
	drain(t, m, m.Update(enterKey()))

	if m.state != StateError {
		t.Fatalf("state = %v, want StateError", m.state)
	}
	if m.fallback != "" {
		t.Error("no capture means nothing to fall back to")
	}
}

func TestInputIgnoredWhileThinking(t *testing.T) {
	m := New(styles.NewTheme(), &fakeAsker{resp: &backend.AnalyzeResponse{Answer: "a"}}, nil)
	m.state = StateThinking

	if cmd := m.Update(enterKey()); cmd != nil {
		t.Error("keys should be ignored while thinking")
	}
}
