// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks UI presence and reports it to the backend.
//
// The backend throttles its background work while nobody is looking. The
// manager watches user activity, derives a presence state (active, idle,
// hidden), and posts transitions to /ui/status.
package session

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/util"
)

// =============================================================================
// PRESENCE STATES
// =============================================================================

// Presence is the reported UI state.
type Presence string

const (
	// PresenceActive means the user interacted recently.
	PresenceActive Presence = "active"
	// PresenceIdle means the UI is visible but untouched past the idle threshold.
	PresenceIdle Presence = "idle"
	// PresenceHidden means the UI is suspended (terminal backgrounded).
	PresenceHidden Presence = "hidden"
)

// notifier posts presence transitions to the backend. Satisfied by
// *backend.Client; tests substitute a fake.
type notifier interface {
	NotifyUIStatus(ctx context.Context, visible bool, state string) error
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager tracks session state and presence.
type Manager struct {
	mu sync.Mutex

	sessionID    string
	startTime    time.Time
	lastActivity time.Time

	// idleAfter is how long without input before the UI counts as idle.
	idleAfter time.Duration

	hidden       bool
	lastReported Presence

	notifier notifier
}

// Config holds configuration for the session manager.
type Config struct {
	// IdleAfter is the idle threshold (default: 2 minutes)
	IdleAfter time.Duration
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		IdleAfter: 2 * time.Minute,
	}
}

// NewManager creates a new session manager. The notifier may be nil; presence
// is then tracked locally without backend reporting.
func NewManager(cfg Config, n notifier) *Manager {
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = DefaultConfig().IdleAfter
	}
	now := time.Now()
	return &Manager{
		sessionID:    generateSessionID(),
		startTime:    now,
		lastActivity: now,
		idleAfter:    cfg.IdleAfter,
		notifier:     n,
	}
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionID returns the current session ID.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.startTime)
}

// IdleTime returns how long since last activity.
func (m *Manager) IdleTime() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.lastActivity)
}

// Presence returns the current presence state.
func (m *Manager) Presence() Presence {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.presenceLocked()
}

func (m *Manager) presenceLocked() Presence {
	if m.hidden {
		return PresenceHidden
	}
	if time.Since(m.lastActivity) >= m.idleAfter {
		return PresenceIdle
	}
	return PresenceActive
}

// =============================================================================
// ACTIVITY TRACKING
// =============================================================================

// RecordActivity updates the last activity timestamp.
// Called on every key press from the UI update loop.
func (m *Manager) RecordActivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastActivity = time.Now()
}

// SetHidden marks the UI as suspended or restored.
func (m *Manager) SetHidden(hidden bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = hidden
	if !hidden {
		m.lastActivity = time.Now()
	}
}

// =============================================================================
// BACKEND REPORTING
// =============================================================================

// Report posts the current presence to the backend if it changed since the
// last report. Errors are returned but callers normally drop them: presence
// is advisory and the backend degrades gracefully without it.
func (m *Manager) Report(ctx context.Context) error {
	m.mu.Lock()
	current := m.presenceLocked()
	changed := current != m.lastReported
	n := m.notifier
	m.mu.Unlock()

	if !changed || n == nil {
		return nil
	}

	if err := n.NotifyUIStatus(ctx, current != PresenceHidden, string(current)); err != nil {
		return err
	}

	m.mu.Lock()
	m.lastReported = current
	m.mu.Unlock()
	return nil
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// TickMsg is sent periodically to re-evaluate presence.
type TickMsg struct {
	Time time.Time
}

// PresenceChangedMsg is emitted when the derived presence state changes.
type PresenceChangedMsg struct {
	Presence Presence
}

// TickCmd returns a command that ticks periodically.
func TickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// HandleTick processes a tick: reports presence transitions to the backend
// and keeps the ticker running.
func (m *Manager) HandleTick() tea.Cmd {
	var cmds []tea.Cmd

	m.mu.Lock()
	current := m.presenceLocked()
	changed := current != m.lastReported
	m.mu.Unlock()

	if changed {
		cmds = append(cmds, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = m.Report(ctx)
			return PresenceChangedMsg{Presence: current}
		})
	}

	cmds = append(cmds, TickCmd())
	return tea.Batch(cmds...)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateSessionID creates a unique session ID.
func generateSessionID() string {
	return "sess_" + time.Now().Format("20060102_150405")
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		secs := int(d.Seconds())
		return util.IntToString(secs) + "s"
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return util.IntToString(mins) + "m"
	}
	return util.IntToString(mins) + "m " + util.IntToString(secs) + "s"
}
