// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeNotifier records presence reports.
type fakeNotifier struct {
	mu      sync.Mutex
	reports []string
	err     error
}

func (f *fakeNotifier) NotifyUIStatus(ctx context.Context, visible bool, state string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, state)
	return nil
}

func (f *fakeNotifier) states() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.reports))
	copy(out, f.reports)
	return out
}

// =============================================================================
// CONFIG TESTS
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IdleAfter != 2*time.Minute {
		t.Errorf("Default IdleAfter = %v, want 2m", cfg.IdleAfter)
	}
}

func TestNewManager(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)

	if !strings.HasPrefix(m.SessionID(), "sess_") {
		t.Errorf("SessionID = %q, want sess_ prefix", m.SessionID())
	}
	if m.Presence() != PresenceActive {
		t.Errorf("Presence = %v, want active on a fresh session", m.Presence())
	}
}

// =============================================================================
// PRESENCE TESTS
// =============================================================================

func TestPresence_IdleAfterThreshold(t *testing.T) {
	m := NewManager(Config{IdleAfter: 10 * time.Millisecond}, nil)

	time.Sleep(20 * time.Millisecond)
	if m.Presence() != PresenceIdle {
		t.Errorf("Presence = %v, want idle past the threshold", m.Presence())
	}

	m.RecordActivity()
	if m.Presence() != PresenceActive {
		t.Errorf("Presence = %v, want active after activity", m.Presence())
	}
}

func TestPresence_HiddenWinsOverIdle(t *testing.T) {
	m := NewManager(Config{IdleAfter: time.Hour}, nil)

	m.SetHidden(true)
	if m.Presence() != PresenceHidden {
		t.Errorf("Presence = %v, want hidden", m.Presence())
	}

	m.SetHidden(false)
	if m.Presence() != PresenceActive {
		t.Errorf("Presence = %v, want active after restore", m.Presence())
	}
}

// =============================================================================
// REPORTING TESTS
// =============================================================================

func TestReport_OnlyOnTransition(t *testing.T) {
	fake := &fakeNotifier{}
	m := NewManager(Config{IdleAfter: time.Hour}, fake)

	ctx := context.Background()
	if err := m.Report(ctx); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if err := m.Report(ctx); err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	// Fresh session transitions "" -> active once; the second report is a
	// no-op because nothing changed.
	if got := fake.states(); len(got) != 1 || got[0] != "active" {
		t.Errorf("reports = %v, want single active transition", got)
	}

	m.SetHidden(true)
	if err := m.Report(ctx); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got := fake.states(); len(got) != 2 || got[1] != "hidden" {
		t.Errorf("reports = %v, want hidden transition appended", got)
	}
}

func TestReport_ErrorRetriesNextTime(t *testing.T) {
	fake := &fakeNotifier{err: errors.New("backend down")}
	m := NewManager(Config{IdleAfter: time.Hour}, fake)

	ctx := context.Background()
	if err := m.Report(ctx); err == nil {
		t.Fatal("Report() = nil, want error")
	}

	// A failed report must not mark the state as delivered.
	fake.mu.Lock()
	fake.err = nil
	fake.mu.Unlock()
	if err := m.Report(ctx); err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if got := fake.states(); len(got) != 1 || got[0] != "active" {
		t.Errorf("reports = %v, want active delivered on retry", got)
	}
}

func TestReport_NilNotifier(t *testing.T) {
	m := NewManager(DefaultConfig(), nil)
	if err := m.Report(context.Background()); err != nil {
		t.Errorf("Report() with nil notifier error = %v, want nil", err)
	}
}

// =============================================================================
// FORMATTING TESTS
// =============================================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{time.Minute, "1m"},
		{90 * time.Second, "1m 30s"},
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}
