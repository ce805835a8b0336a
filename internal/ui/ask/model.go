// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ask provides the question capsule view: a single-line prompt with
// optional screen context attached, the in-flight thinking state, and the
// rendered answer.
package ask

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/capture"
	"github.com/suriai/ruma-tui/internal/history"
	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
)

// askTimeout bounds a single analyze round trip. Vision answers on big
// captures can take a while on modest hardware.
const askTimeout = 120 * time.Second

// =============================================================================
// STATE
// =============================================================================

// State is the capsule's interaction state.
type State int

const (
	StateInput     State = iota // waiting for a question
	StateAttaching              // typing a capture file path
	StateThinking               // request in flight
	StateAnswered               // showing an answer
	StateError                  // showing an error
)

// asker is the slice of the backend client the view needs.
type asker interface {
	Analyze(ctx context.Context, req backend.AnalyzeRequest) (*backend.AnalyzeResponse, error)
}

// historian records answered questions. Nil disables history.
type historian interface {
	Add(entry history.Entry) (string, error)
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the ask view.
type Model struct {
	state State
	theme *styles.Theme

	width  int
	height int

	input     textinput.Model
	pathInput textinput.Model
	spinner   components.Spinner

	// Attached screen context, nil when none.
	capture *capture.Capture

	// Last exchange.
	question string
	answer   string
	persona  string
	errMsg   string

	// Raw capture text shown when analysis fails but context was attached.
	fallback string

	backend asker
	store   historian

	// Active personality id, recorded with history entries.
	personalityID string
}

// New creates the ask view.
func New(theme *styles.Theme, client asker, store historian) *Model {
	input := textinput.New()
	input.Placeholder = "Ask anything..."
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Focus()

	pathInput := textinput.New()
	pathInput.Placeholder = "path to screenshot or text file"
	pathInput.Prompt = "attach: "

	return &Model{
		state:     StateInput,
		theme:     theme,
		width:     80,
		input:     input,
		pathInput: pathInput,
		spinner:   components.NewThinkingSpinner(),
		backend:   client,
		store:     store,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 8
	m.pathInput.Width = width - 12
}

// SetPersonality records the active personality for display and history.
func (m *Model) SetPersonality(id, name string) {
	m.personalityID = id
	m.persona = name
}

// Busy reports whether a request is in flight.
func (m *Model) Busy() bool {
	return m.state == StateThinking
}

// HasCapture reports whether screen context is attached.
func (m *Model) HasCapture() bool {
	return m.capture != nil
}

// =============================================================================
// COMMANDS
// =============================================================================

// askCmd sends the question to the backend off the update loop.
func (m *Model) askCmd(question string, cap *capture.Capture) tea.Cmd {
	client := m.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
		defer cancel()

		req := backend.AnalyzeRequest{Question: question}
		var captureText string
		if cap != nil {
			req.OCRText = cap.Text
			req.ImageBase64 = cap.ImageBase64
			captureText = cap.Text
		}

		resp, err := client.Analyze(ctx, req)
		return AnswerMsg{
			Question:    question,
			Response:    resp,
			HadCapture:  cap != nil,
			CaptureText: captureText,
			Err:         err,
		}
	}
}

// loadCaptureCmd reads a capture file off the update loop.
func loadCaptureCmd(path string) tea.Cmd {
	return func() tea.Msg {
		cap, err := capture.FromFile(path)
		return CaptureLoadedMsg{Capture: cap, Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the ask view.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case AnswerMsg:
		return m.handleAnswer(msg)

	case CaptureLoadedMsg:
		if msg.Err != nil {
			m.state = StateError
			m.errMsg = "attach failed: " + msg.Err.Error()
			return nil
		}
		m.capture = msg.Capture
		m.state = StateInput
		m.input.Focus()
		return nil

	default:
		if m.state == StateThinking {
			return m.spinner.Update(msg)
		}
	}
	return nil
}

func (m *Model) handleKey(key tea.KeyMsg) tea.Cmd {
	switch m.state {
	case StateAttaching:
		switch key.String() {
		case "enter":
			path := strings.TrimSpace(m.pathInput.Value())
			m.pathInput.SetValue("")
			if path == "" {
				m.state = StateInput
				m.input.Focus()
				return nil
			}
			return loadCaptureCmd(path)
		case "esc":
			m.state = StateInput
			m.pathInput.SetValue("")
			m.input.Focus()
			return nil
		default:
			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(key)
			return cmd
		}

	case StateThinking:
		// Input is ignored while a request is in flight.
		return nil

	default:
		switch key.String() {
		case "enter":
			return m.submit()
		case "ctrl+g":
			m.state = StateAttaching
			m.input.Blur()
			m.pathInput.Focus()
			return textinput.Blink
		case "ctrl+x":
			m.capture = nil
			return nil
		case "esc":
			if m.state == StateAnswered || m.state == StateError {
				m.state = StateInput
				m.errMsg = ""
				m.fallback = ""
			}
			return nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(key)
			return cmd
		}
	}
}

func (m *Model) submit() tea.Cmd {
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return nil
	}

	m.question = question
	m.answer = ""
	m.errMsg = ""
	m.state = StateThinking
	m.input.SetValue("")

	cap := m.capture
	return tea.Batch(m.spinner.Start(), m.askCmd(question, cap))
}

func (m *Model) handleAnswer(msg AnswerMsg) tea.Cmd {
	m.spinner.Stop()

	// Capture is consumed by the question it was attached to.
	m.capture = nil
	m.fallback = ""

	if msg.Err != nil {
		m.state = StateError
		m.errMsg = friendlyError(msg.Err)
		// Analysis failed but the screen context survived the round trip:
		// degrade to showing the captured text itself.
		m.fallback = msg.CaptureText
		return nil
	}

	m.state = StateAnswered
	m.answer = msg.Response.Answer
	if msg.Response.Personality != "" {
		m.persona = msg.Response.Personality
	}

	if m.store != nil {
		entry := history.Entry{
			Question:      msg.Question,
			Answer:        msg.Response.Answer,
			PersonalityID: m.personalityID,
			HadCapture:    msg.HadCapture,
		}
		store := m.store
		return func() tea.Msg {
			id, err := store.Add(entry)
			return HistorySavedMsg{ID: id, Err: err}
		}
	}
	return nil
}

// friendlyError maps client errors to short actionable messages.
func friendlyError(err error) string {
	switch {
	case backend.IsNotRunning(err):
		return "Backend unreachable. Is the server running?"
	case backend.IsTimeout(err):
		return "The model took too long to answer. Try again."
	default:
		return err.Error()
	}
}
