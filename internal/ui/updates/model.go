// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package updates provides the update view: check, download with pause and
// resume, install, and the backup list with restore.
package updates

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/ui/components"
	"github.com/suriai/ruma-tui/internal/ui/styles"
	"github.com/suriai/ruma-tui/internal/update"
)

// opTimeout bounds update control round trips. The download itself runs
// server-side; the client only polls.
const opTimeout = 30 * time.Second

// client is the slice of the backend API the update view needs.
type client interface {
	CheckUpdates(ctx context.Context) (*backend.UpdateInfo, error)
	DownloadUpdate(ctx context.Context) error
	PauseUpdateDownload(ctx context.Context) error
	ResumeUpdateDownload(ctx context.Context) error
	CancelUpdateDownload(ctx context.Context) error
	DownloadProgress(ctx context.Context) (*backend.DownloadProgress, error)
	InstallUpdate(ctx context.Context) (*backend.InstallResponse, error)
	ListBackups(ctx context.Context) ([]backend.BackupInfo, error)
	RestoreBackup(ctx context.Context, backupID string) error
	DeleteBackup(ctx context.Context, backupID string) error
}

// =============================================================================
// MESSAGES
// =============================================================================

// CheckResultMsg delivers the update check outcome.
type CheckResultMsg struct {
	Info *backend.UpdateInfo
	Err  error
}

// ControlDoneMsg reports a download control call (start, pause, resume,
// cancel) reaching the backend.
type ControlDoneMsg struct {
	Op  string
	Err error
}

// PollTickMsg drives download progress polling.
type PollTickMsg struct{}

// ProgressMsg delivers one progress poll.
type ProgressMsg struct {
	Progress *backend.DownloadProgress
	Err      error
}

// InstallResultMsg delivers the install outcome.
type InstallResultMsg struct {
	Resp *backend.InstallResponse
	Err  error
}

// BackupsMsg delivers the backup list.
type BackupsMsg struct {
	Backups []backend.BackupInfo
	Err     error
}

// BackupOpMsg reports a restore or delete.
type BackupOpMsg struct {
	Op  string // "restore", "delete"
	ID  string
	Err error
}

// =============================================================================
// MODEL
// =============================================================================

// backupAction is the pending confirm target.
type backupAction struct {
	op string
	id string
}

// Model is the Bubble Tea model for the update view.
type Model struct {
	theme *styles.Theme

	width  int
	height int

	machine *update.Machine
	client  client

	bar     components.DownloadBar
	polling bool

	backups []backend.BackupInfo
	cursor  int

	confirm components.Confirm
	pending backupAction

	statusMsg string
}

// New creates the update view.
func New(theme *styles.Theme, c client) *Model {
	bar := components.NewDownloadBar("application update")
	return &Model{
		theme:   theme,
		width:   80,
		machine: update.NewMachine(),
		client:  c,
		bar:     bar,
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.bar.Width = width - 8
}

// Machine exposes the state machine for the status bar.
func (m *Model) Machine() *update.Machine { return m.machine }

// Init kicks off the initial backup list load.
func (m *Model) Init() tea.Cmd {
	return m.loadBackupsCmd()
}

// =============================================================================
// COMMANDS
// =============================================================================

func (m *Model) checkCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		info, err := c.CheckUpdates(ctx)
		return CheckResultMsg{Info: info, Err: err}
	}
}

func (m *Model) controlCmd(op string, call func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return ControlDoneMsg{Op: op, Err: call(ctx)}
	}
}

func pollTick() tea.Cmd {
	return tea.Tick(update.PollInterval, func(time.Time) tea.Msg {
		return PollTickMsg{}
	})
}

func (m *Model) progressCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		p, err := c.DownloadProgress(ctx)
		return ProgressMsg{Progress: p, Err: err}
	}
}

func (m *Model) installCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		resp, err := c.InstallUpdate(ctx)
		return InstallResultMsg{Resp: resp, Err: err}
	}
}

func (m *Model) loadBackupsCmd() tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		backups, err := c.ListBackups(ctx)
		return BackupsMsg{Backups: backups, Err: err}
	}
}

func (m *Model) backupOpCmd(op, id string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		var err error
		if op == "restore" {
			err = c.RestoreBackup(ctx, id)
		} else {
			err = c.DeleteBackup(ctx, id)
		}
		return BackupOpMsg{Op: op, ID: id, Err: err}
	}
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages for the update view.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case CheckResultMsg:
		m.machine.ApplyCheckResult(msg.Info, msg.Err)
		return nil

	case ControlDoneMsg:
		if msg.Err != nil {
			m.machine.Fail(msg.Op + " failed: " + msg.Err.Error())
			return nil
		}
		// Start polling once the backend accepted the download.
		if msg.Op == "download" && !m.polling {
			m.polling = true
			return pollTick()
		}
		return nil

	case PollTickMsg:
		if !m.machine.ShouldPoll() {
			m.polling = false
			return nil
		}
		return m.progressCmd()

	case ProgressMsg:
		m.machine.ApplyProgress(msg.Progress, msg.Err)
		if msg.Err == nil && msg.Progress != nil {
			m.bar.SetProgress(msg.Progress.Percent, msg.Progress.BytesDownloaded, msg.Progress.TotalBytes)
			m.bar.Paused = m.machine.State() == update.StatePaused
		}
		if m.machine.ShouldPoll() {
			return pollTick()
		}
		m.polling = false
		return nil

	case InstallResultMsg:
		m.machine.ApplyInstallResult(msg.Resp, msg.Err)
		if m.machine.State() == update.StateInstallComplete {
			m.statusMsg = "Update installed. Restart to finish."
			return m.loadBackupsCmd()
		}
		return nil

	case BackupsMsg:
		if msg.Err != nil {
			m.statusMsg = "backup list failed: " + msg.Err.Error()
			return nil
		}
		m.backups = msg.Backups
		if m.cursor >= len(m.backups) && m.cursor > 0 {
			m.cursor = len(m.backups) - 1
		}
		return nil

	case BackupOpMsg:
		if msg.Err != nil {
			m.statusMsg = msg.Op + " failed: " + msg.Err.Error()
			return nil
		}
		if msg.Op == "restore" {
			m.statusMsg = "Backup " + msg.ID + " restored. Restart to finish."
		} else {
			m.statusMsg = "Backup " + msg.ID + " deleted."
		}
		return m.loadBackupsCmd()

	case components.ConfirmResultMsg:
		pending := m.pending
		m.pending = backupAction{}
		if !msg.Confirmed || pending.id == "" {
			return nil
		}
		return m.backupOpCmd(pending.op, pending.id)
	}
	return nil
}

func (m *Model) handleKey(key tea.KeyMsg) tea.Cmd {
	if m.confirm.Active() {
		return m.confirm.Update(key)
	}

	switch key.String() {
	case "c":
		if err := m.machine.StartCheck(); err != nil {
			return nil
		}
		return m.checkCmd()

	case "d":
		if err := m.machine.StartDownload(); err != nil {
			return nil
		}
		return m.controlCmd("download", m.client.DownloadUpdate)

	case "p":
		switch m.machine.State() {
		case update.StateDownloading:
			if err := m.machine.RequestPause(); err == nil {
				return m.controlCmd("pause", m.client.PauseUpdateDownload)
			}
		case update.StatePaused:
			if err := m.machine.RequestResume(); err == nil {
				return m.controlCmd("resume", m.client.ResumeUpdateDownload)
			}
		}
		return nil

	case "x":
		if err := m.machine.RequestCancel(); err != nil {
			return nil
		}
		return m.controlCmd("cancel", m.client.CancelUpdateDownload)

	case "i":
		if err := m.machine.StartInstall(); err != nil {
			return nil
		}
		return m.installCmd()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.backups)-1 {
			m.cursor++
		}

	case "enter":
		if b := m.selectedBackup(); b != nil {
			m.pending = backupAction{op: "restore", id: b.ID}
			m.confirm.Open("Restore backup",
				"Restore version "+b.Version+" from "+b.CreatedAt.Format("2006-01-02")+
					"? The current version is replaced.")
		}

	case "delete", "D":
		if b := m.selectedBackup(); b != nil {
			m.pending = backupAction{op: "delete", id: b.ID}
			m.confirm.Open("Delete backup",
				"Delete the backup of version "+b.Version+"? This cannot be undone.")
		}

	case "r":
		return m.loadBackupsCmd()

	case "esc":
		if m.machine.State() == update.StateError {
			m.machine.Reset()
		}
	}
	return nil
}

func (m *Model) selectedBackup() *backend.BackupInfo {
	if len(m.backups) == 0 {
		return nil
	}
	if m.cursor >= len(m.backups) {
		m.cursor = len(m.backups) - 1
	}
	return &m.backups[m.cursor]
}
