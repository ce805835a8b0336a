// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package update implements the client-side mirror of the backend's update
// download state machine.
//
// The backend owns the download; this machine only observes it through
// /download_progress polls (every 500ms while a download or pause is live)
// and reconciles fire-and-forget pause/resume/cancel requests against the
// next observed status. The client never computes progress itself.
package update

import (
	"fmt"
	"time"

	"github.com/suriai/ruma-tui/internal/backend"
)

// PollInterval is how often /download_progress is polled while a download or
// pause is active.
const PollInterval = 500 * time.Millisecond

// =============================================================================
// STATES
// =============================================================================

// State is a node in the update lifecycle graph:
//
//	idle -> checking -> updateAvailable -> downloading <-> paused
//	downloading -> downloadComplete -> installing -> installComplete
//
// StateError is reachable from anywhere.
type State int

const (
	StateIdle State = iota
	StateChecking
	StateUpdateAvailable
	StateDownloading
	StatePaused
	StateDownloadComplete
	StateInstalling
	StateInstallComplete
	StateError
)

// String returns the display name for a state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateChecking:
		return "checking"
	case StateUpdateAvailable:
		return "updateAvailable"
	case StateDownloading:
		return "downloading"
	case StatePaused:
		return "paused"
	case StateDownloadComplete:
		return "downloadComplete"
	case StateInstalling:
		return "installing"
	case StateInstallComplete:
		return "installComplete"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// =============================================================================
// MACHINE
// =============================================================================

// Machine tracks the observed update state. It is a plain value manipulated
// from the UI update loop; no internal locking.
type Machine struct {
	state State

	// Last known server-side facts, superseded wholesale on each poll.
	info     *backend.UpdateInfo
	progress backend.DownloadProgress

	// cancelling suppresses the poll race where a stale "downloading" status
	// arrives after cancel was requested but before the backend confirms.
	cancelling bool

	// updateDetected remembers that a check found an update, so a "none"
	// progress status resets to updateAvailable instead of idle.
	updateDetected bool

	// errMsg holds the message for StateError.
	errMsg string
}

// NewMachine returns a machine in the idle state.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Info returns the last update-check result, or nil.
func (m *Machine) Info() *backend.UpdateInfo { return m.info }

// Progress returns the last observed download progress.
func (m *Machine) Progress() backend.DownloadProgress { return m.progress }

// ErrorMessage returns the message for the error state.
func (m *Machine) ErrorMessage() string { return m.errMsg }

// Cancelling reports whether a cancel request is awaiting confirmation.
func (m *Machine) Cancelling() bool { return m.cancelling }

// ShouldPoll reports whether the progress poller must keep ticking.
// Polls continue while downloading or paused, and while a cancel is pending
// so the machine can observe the backend confirming it.
func (m *Machine) ShouldPoll() bool {
	return m.state == StateDownloading || m.state == StatePaused || m.cancelling
}

// transitionErr builds the error for a disallowed edge.
func (m *Machine) transitionErr(op string) error {
	return fmt.Errorf("cannot %s from state %s", op, m.state)
}

// =============================================================================
// TRANSITIONS
// =============================================================================

// StartCheck moves idle/updateAvailable/error into checking.
func (m *Machine) StartCheck() error {
	switch m.state {
	case StateIdle, StateUpdateAvailable, StateError:
		m.state = StateChecking
		m.errMsg = ""
		return nil
	default:
		return m.transitionErr("check for updates")
	}
}

// ApplyCheckResult records the outcome of a /check_updates call.
func (m *Machine) ApplyCheckResult(info *backend.UpdateInfo, err error) {
	if m.state != StateChecking {
		return // stale result after the user moved on
	}
	if err != nil {
		m.fail(err.Error())
		return
	}
	m.info = info
	if info != nil && info.Available {
		m.updateDetected = true
		m.state = StateUpdateAvailable
	} else {
		m.updateDetected = false
		m.state = StateIdle
	}
}

// StartDownload moves updateAvailable into downloading. The caller issues the
// /download_update POST and starts the poller.
func (m *Machine) StartDownload() error {
	if m.state != StateUpdateAvailable {
		return m.transitionErr("start download")
	}
	m.state = StateDownloading
	m.cancelling = false
	m.progress = backend.DownloadProgress{Status: backend.DownloadStatusDownloading}
	return nil
}

// RequestPause marks a fire-and-forget pause. Local state flips immediately
// and is reconciled by the next poll.
func (m *Machine) RequestPause() error {
	if m.state != StateDownloading {
		return m.transitionErr("pause")
	}
	m.state = StatePaused
	return nil
}

// RequestResume marks a fire-and-forget resume.
func (m *Machine) RequestResume() error {
	if m.state != StatePaused {
		return m.transitionErr("resume")
	}
	m.state = StateDownloading
	return nil
}

// RequestCancel marks a fire-and-forget cancel. The cancelling flag keeps a
// stale in-flight poll from re-arming the downloading state before the
// backend confirms.
func (m *Machine) RequestCancel() error {
	if m.state != StateDownloading && m.state != StatePaused {
		return m.transitionErr("cancel")
	}
	m.cancelling = true
	return nil
}

// ApplyProgress reconciles a /download_progress response. Each response
// supersedes all previous ones.
func (m *Machine) ApplyProgress(p *backend.DownloadProgress, err error) {
	// Polls only matter while a download/pause/cancel is live.
	if m.state != StateDownloading && m.state != StatePaused {
		return
	}

	if err != nil {
		// A failed poll while cancelling is not fatal; keep waiting for the
		// backend to confirm.
		if m.cancelling {
			return
		}
		m.fail(err.Error())
		return
	}
	if p == nil {
		return
	}

	if m.cancelling {
		// Ignore stale downloading/paused statuses until the backend reports
		// the download gone.
		if p.Status == backend.DownloadStatusNone {
			m.cancelling = false
			m.resetAfterDownload()
		}
		return
	}

	m.progress = *p

	switch p.Status {
	case backend.DownloadStatusDownloading:
		m.state = StateDownloading
	case backend.DownloadStatusPaused:
		m.state = StatePaused
	case backend.DownloadStatusComplete:
		m.state = StateDownloadComplete
	case backend.DownloadStatusNone:
		m.resetAfterDownload()
	case backend.DownloadStatusError:
		msg := p.Error
		if msg == "" {
			msg = "download failed"
		}
		m.fail(msg)
	}
}

// resetAfterDownload returns to idle, or updateAvailable when an update was
// previously detected.
func (m *Machine) resetAfterDownload() {
	m.progress = backend.DownloadProgress{Status: backend.DownloadStatusNone}
	if m.updateDetected {
		m.state = StateUpdateAvailable
	} else {
		m.state = StateIdle
	}
}

// StartInstall moves downloadComplete into installing. Paused downloads can
// never reach installation directly.
func (m *Machine) StartInstall() error {
	if m.state != StateDownloadComplete {
		return m.transitionErr("install")
	}
	m.state = StateInstalling
	return nil
}

// ApplyInstallResult records the outcome of /install_update.
func (m *Machine) ApplyInstallResult(resp *backend.InstallResponse, err error) {
	if m.state != StateInstalling {
		return
	}
	if err != nil {
		m.fail(err.Error())
		return
	}
	if resp != nil && !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "install failed"
		}
		m.fail(msg)
		return
	}
	m.state = StateInstallComplete
}

// Fail forces the error state with a human-readable message. Reachable from
// anywhere.
func (m *Machine) Fail(msg string) {
	m.fail(msg)
}

func (m *Machine) fail(msg string) {
	m.state = StateError
	m.errMsg = msg
	m.cancelling = false
}

// Reset returns an errored or completed machine to idle, keeping the last
// check result so updateAvailable can be re-entered via a fresh check.
func (m *Machine) Reset() {
	m.state = StateIdle
	m.errMsg = ""
	m.cancelling = false
	m.progress = backend.DownloadProgress{}
}
