// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ask provides the question capsule view.
package ask

import (
	"github.com/suriai/ruma-tui/internal/backend"
	"github.com/suriai/ruma-tui/internal/capture"
)

// =============================================================================
// MESSAGES
// =============================================================================

// AnswerMsg delivers the backend's answer (or error) for a question.
// CaptureText carries the text of the capture that rode along with the
// request, so a failed analysis can still show the user what was captured.
type AnswerMsg struct {
	Question    string
	Response    *backend.AnalyzeResponse
	HadCapture  bool
	CaptureText string
	Err         error
}

// CaptureLoadedMsg delivers a capture read from disk.
type CaptureLoadedMsg struct {
	Capture *capture.Capture
	Err     error
}

// HistorySavedMsg reports the outcome of persisting an exchange.
type HistorySavedMsg struct {
	ID  string
	Err error
}
