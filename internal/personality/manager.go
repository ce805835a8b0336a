// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package personality manages the user's AI personality roster.
//
// The backend owns the data; this manager caches the roster for the UI and
// reconciles every mutation by reloading wholesale. Local edits never patch
// the cache - the backend's response is the only truth.
package personality

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/suriai/ruma-tui/internal/backend"
)

// client is the slice of the backend API the manager needs. Satisfied by
// *backend.Client; tests substitute a fake.
type client interface {
	ListPersonalities(ctx context.Context) ([]backend.Personality, error)
	CreatePersonality(ctx context.Context, req backend.CreatePersonalityRequest) (*backend.Personality, error)
	SwitchPersonality(ctx context.Context, id string) error
	DeletePersonality(ctx context.Context, id string) error
	PersonalityStats(ctx context.Context) (*backend.PersonalityStats, error)
}

// Manager caches the personality roster and the active selection. Roster
// operations run on command goroutines concurrently with the render loop's
// reads, so the cache is mutex-guarded; backend calls happen outside the
// lock. A reload swaps the whole slice, so references handed out earlier
// stay valid (and merely stale).
type Manager struct {
	client client

	mu            sync.Mutex
	personalities []backend.Personality
	active        *backend.Personality
}

// NewManager creates a Manager backed by the given client.
func NewManager(c client) *Manager {
	return &Manager{client: c}
}

// =============================================================================
// CACHE ACCESS
// =============================================================================

// List returns the cached roster in backend order.
func (m *Manager) List() []backend.Personality {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.personalities
}

// Active returns the cached active personality, or nil when none is active.
func (m *Manager) Active() *backend.Personality {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Get returns the cached personality with the given id.
func (m *Manager) Get(id string) (*backend.Personality, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.personalities {
		if m.personalities[i].ID == id {
			return &m.personalities[i], true
		}
	}
	return nil, false
}

// =============================================================================
// RELOAD
// =============================================================================

// Reload replaces the cache with the backend's current roster. The active
// reference is recomputed from the fresh data: if the previously active
// personality is gone, the reference is cleared rather than left dangling.
func (m *Manager) Reload(ctx context.Context) error {
	list, err := m.client.ListPersonalities(ctx)
	if err != nil {
		return fmt.Errorf("failed to load personalities: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.personalities = list
	m.active = nil
	for i := range m.personalities {
		if m.personalities[i].IsActive {
			m.active = &m.personalities[i]
			break
		}
	}
	return nil
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Create validates and creates a new personality, then reloads.
func (m *Manager) Create(ctx context.Context, req backend.CreatePersonalityRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("personality name must not be empty")
	}

	if _, err := m.client.CreatePersonality(ctx, req); err != nil {
		return fmt.Errorf("failed to create personality: %w", err)
	}
	return m.Reload(ctx)
}

// Switch activates the personality with the given id, then reloads.
func (m *Manager) Switch(ctx context.Context, id string) error {
	if err := m.client.SwitchPersonality(ctx, id); err != nil {
		return fmt.Errorf("failed to switch personality: %w", err)
	}
	return m.Reload(ctx)
}

// Delete removes the personality with the given id, then reloads. Deleting
// the active personality leaves no active selection until the backend (or
// the user) picks a new one.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := m.client.DeletePersonality(ctx, id); err != nil {
		return fmt.Errorf("failed to delete personality: %w", err)
	}
	return m.Reload(ctx)
}

// Stats fetches usage statistics for the roster.
func (m *Manager) Stats(ctx context.Context) (*backend.PersonalityStats, error) {
	stats, err := m.client.PersonalityStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load personality stats: %w", err)
	}
	return stats, nil
}
