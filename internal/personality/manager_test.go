// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package personality

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/suriai/ruma-tui/internal/backend"
)

// fakeClient serves a mutable roster from memory.
type fakeClient struct {
	roster  []backend.Personality
	listErr error
}

func (f *fakeClient) ListPersonalities(ctx context.Context) ([]backend.Personality, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]backend.Personality, len(f.roster))
	copy(out, f.roster)
	return out, nil
}

func (f *fakeClient) CreatePersonality(ctx context.Context, req backend.CreatePersonalityRequest) (*backend.Personality, error) {
	p := backend.Personality{ID: "new-" + req.Name, Name: req.Name}
	f.roster = append(f.roster, p)
	return &p, nil
}

func (f *fakeClient) SwitchPersonality(ctx context.Context, id string) error {
	found := false
	for i := range f.roster {
		f.roster[i].IsActive = f.roster[i].ID == id
		if f.roster[i].IsActive {
			found = true
		}
	}
	if !found {
		return errors.New("no such personality")
	}
	return nil
}

func (f *fakeClient) DeletePersonality(ctx context.Context, id string) error {
	for i := range f.roster {
		if f.roster[i].ID == id {
			f.roster = append(f.roster[:i], f.roster[i+1:]...)
			return nil
		}
	}
	return errors.New("no such personality")
}

func (f *fakeClient) PersonalityStats(ctx context.Context) (*backend.PersonalityStats, error) {
	return &backend.PersonalityStats{TotalPersonalities: len(f.roster)}, nil
}

func twoPersonalities() *fakeClient {
	return &fakeClient{roster: []backend.Personality{
		{ID: "p1", Name: "Mentor", IsActive: true},
		{ID: "p2", Name: "Critic"},
	}}
}

func TestReload_TracksActive(t *testing.T) {
	m := NewManager(twoPersonalities())

	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if len(m.List()) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(m.List()))
	}
	if active := m.Active(); active == nil || active.ID != "p1" {
		t.Errorf("Active() = %+v, want p1", active)
	}
}

func TestReload_ReplacesWholesale(t *testing.T) {
	fake := twoPersonalities()
	m := NewManager(fake)
	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	// Backend roster changes out from under the cache.
	fake.roster = []backend.Personality{{ID: "p9", Name: "Fresh"}}
	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if len(m.List()) != 1 || m.List()[0].ID != "p9" {
		t.Errorf("List() = %+v, want only p9 (wholesale replace)", m.List())
	}
	if m.Active() != nil {
		t.Errorf("Active() = %+v, want nil after active personality vanished", m.Active())
	}
}

func TestSwitch_UpdatesActive(t *testing.T) {
	m := NewManager(twoPersonalities())
	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if err := m.Switch(context.Background(), "p2"); err != nil {
		t.Fatalf("Switch() error = %v", err)
	}
	if active := m.Active(); active == nil || active.ID != "p2" {
		t.Errorf("Active() = %+v, want p2", active)
	}
}

func TestDelete_ActiveClearsReference(t *testing.T) {
	m := NewManager(twoPersonalities())
	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	if err := m.Delete(context.Background(), "p1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if m.Active() != nil {
		t.Errorf("Active() = %+v, want nil after deleting active personality", m.Active())
	}
	if len(m.List()) != 1 {
		t.Errorf("len(List()) = %d, want 1", len(m.List()))
	}
}

func TestCreate_RejectsEmptyName(t *testing.T) {
	m := NewManager(twoPersonalities())
	err := m.Create(context.Background(), backend.CreatePersonalityRequest{Name: "   "})
	if err == nil {
		t.Error("Create() = nil, want error for blank name")
	}
}

func TestConcurrentReloadAndRead(t *testing.T) {
	m := NewManager(twoPersonalities())
	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	// Reloads run on command goroutines while the render loop reads the
	// cache; both must be safe to interleave.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				if err := m.Reload(context.Background()); err != nil {
					t.Errorf("Reload() error = %v", err)
					return
				}
				m.List()
				m.Active()
				m.Get("p2")
			}
		}()
	}
	wg.Wait()

	if active := m.Active(); active == nil || active.ID != "p1" {
		t.Errorf("Active() = %+v, want p1 after concurrent reloads", active)
	}
}

func TestReload_ErrorKeepsOldCache(t *testing.T) {
	fake := twoPersonalities()
	m := NewManager(fake)
	if err := m.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	fake.listErr = errors.New("backend down")
	if err := m.Reload(context.Background()); err == nil {
		t.Fatal("Reload() = nil, want error")
	}
	if len(m.List()) != 2 {
		t.Errorf("len(List()) = %d, want 2 (failed reload keeps old cache)", len(m.List()))
	}
}
