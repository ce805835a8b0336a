// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"testing"

	"github.com/suriai/ruma-tui/internal/session"
)

// fakeNotifier records presence reports.
type fakeNotifier struct {
	visible []bool
	states  []string
}

func (f *fakeNotifier) NotifyUIStatus(_ context.Context, visible bool, state string) error {
	f.visible = append(f.visible, visible)
	f.states = append(f.states, state)
	return nil
}

func TestReportHiddenNotifiesBackendOnExit(t *testing.T) {
	fake := &fakeNotifier{}
	sessions := session.NewManager(session.DefaultConfig(), fake)

	reportHidden(sessions)

	if len(fake.states) != 1 || fake.states[0] != "hidden" {
		t.Fatalf("reports = %v, want single hidden transition", fake.states)
	}
	if fake.visible[0] {
		t.Error("hidden report must carry visible=false")
	}
	if sessions.Presence() != session.PresenceHidden {
		t.Errorf("Presence = %v, want hidden", sessions.Presence())
	}
}
