// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package hub

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/suriai/ruma-tui/internal/backend"
)

// fakeClient scripts backend responses for hub tests. Locked so concurrency
// tests exercise the Hub, not the fake.
type fakeClient struct {
	mu            sync.Mutex
	searchResults []backend.ModelInfo
	searchCalls   int
	statuses      map[string][]backend.ModelStatus // consumed front to back
	local         []backend.LocalModel
	failed        []backend.FailedDownload
	cleaned       []string
}

func (f *fakeClient) SearchModels(ctx context.Context, query string) ([]backend.ModelInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls++
	return f.searchResults, nil
}

func (f *fakeClient) DownloadModel(ctx context.Context, modelID string) error {
	return nil
}

func (f *fakeClient) ModelStatus(ctx context.Context, modelID string) (*backend.ModelStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	queue := f.statuses[modelID]
	if len(queue) == 0 {
		return nil, errors.New("no scripted status")
	}
	status := queue[0]
	f.statuses[modelID] = queue[1:]
	return &status, nil
}

func (f *fakeClient) ListLocalModels(ctx context.Context) ([]backend.LocalModel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.local, nil
}

func (f *fakeClient) ListFailedDownloads(ctx context.Context) ([]backend.FailedDownload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failed, nil
}

func (f *fakeClient) CleanupFailedDownload(ctx context.Context, modelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, modelID)
	for i := range f.failed {
		if f.failed[i].ModelID == modelID {
			f.failed = append(f.failed[:i], f.failed[i+1:]...)
			break
		}
	}
	return nil
}

func TestSearch_CachesResults(t *testing.T) {
	fake := &fakeClient{searchResults: []backend.ModelInfo{{ID: "org/llama"}}}
	h := New(fake)

	if err := h.Search(context.Background(), "llama"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(h.Results()) != 1 || h.Results()[0].ID != "org/llama" {
		t.Errorf("Results() = %+v, want org/llama", h.Results())
	}
	if h.LastQuery() != "llama" {
		t.Errorf("LastQuery() = %q, want llama", h.LastQuery())
	}
}

func TestSearch_BlankQuerySkipsBackend(t *testing.T) {
	fake := &fakeClient{searchResults: []backend.ModelInfo{{ID: "org/llama"}}}
	h := New(fake)

	if err := h.Search(context.Background(), "   "); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if fake.searchCalls != 0 {
		t.Errorf("searchCalls = %d, want 0 for blank query", fake.searchCalls)
	}
	if len(h.Results()) != 0 {
		t.Errorf("Results() = %+v, want empty", h.Results())
	}
}

func TestDownload_LifecycleToComplete(t *testing.T) {
	fake := &fakeClient{
		statuses: map[string][]backend.ModelStatus{
			"org/llama": {
				{ModelID: "org/llama", Status: "downloading", Percent: 50},
				{ModelID: "org/llama", Status: "complete", Percent: 100},
			},
		},
		local: []backend.LocalModel{{ID: "org/llama"}},
	}
	h := New(fake)

	if err := h.StartDownload(context.Background(), "org/llama"); err != nil {
		t.Fatalf("StartDownload() error = %v", err)
	}

	status, err := h.PollDownload(context.Background(), "org/llama")
	if err != nil {
		t.Fatalf("PollDownload() error = %v", err)
	}
	if status.Percent != 50 {
		t.Errorf("Percent = %v, want 50", status.Percent)
	}

	status, err = h.PollDownload(context.Background(), "org/llama")
	if err != nil {
		t.Fatalf("PollDownload() error = %v", err)
	}
	if status.Status != "complete" {
		t.Errorf("Status = %q, want complete", status.Status)
	}
	if len(h.ActiveDownloads()) != 0 {
		t.Errorf("ActiveDownloads() = %v, want empty after completion", h.ActiveDownloads())
	}
	if len(h.Local()) != 1 {
		t.Errorf("Local() = %+v, want refreshed local list", h.Local())
	}
}

func TestDownload_FailureRefreshesFailedList(t *testing.T) {
	fake := &fakeClient{
		statuses: map[string][]backend.ModelStatus{
			"org/broken": {{ModelID: "org/broken", Status: "error", Error: "disk full"}},
		},
		failed: []backend.FailedDownload{{ModelID: "org/broken", TotalSize: 123}},
	}
	h := New(fake)

	if err := h.StartDownload(context.Background(), "org/broken"); err != nil {
		t.Fatalf("StartDownload() error = %v", err)
	}
	if _, err := h.PollDownload(context.Background(), "org/broken"); err != nil {
		t.Fatalf("PollDownload() error = %v", err)
	}

	if len(h.ActiveDownloads()) != 0 {
		t.Errorf("ActiveDownloads() = %v, want empty after failure", h.ActiveDownloads())
	}
	if len(h.Failed()) != 1 {
		t.Errorf("Failed() = %+v, want the failed download listed", h.Failed())
	}
}

func TestStartDownload_RejectsDuplicate(t *testing.T) {
	h := New(&fakeClient{})
	if err := h.StartDownload(context.Background(), "org/llama"); err != nil {
		t.Fatalf("StartDownload() error = %v", err)
	}
	if err := h.StartDownload(context.Background(), "org/llama"); err == nil {
		t.Error("StartDownload() = nil, want error for duplicate download")
	}
}

func TestPollDownload_StaleIsNoop(t *testing.T) {
	h := New(&fakeClient{})
	status, err := h.PollDownload(context.Background(), "org/unknown")
	if err != nil {
		t.Fatalf("PollDownload() error = %v", err)
	}
	if status != nil {
		t.Errorf("status = %+v, want nil for untracked download", status)
	}
}

func TestConcurrentPollsAndSearches(t *testing.T) {
	const polls = 20

	statuses := make(map[string][]backend.ModelStatus)
	ids := []string{"org/a", "org/b"}
	for _, id := range ids {
		for i := 0; i < polls-1; i++ {
			statuses[id] = append(statuses[id],
				backend.ModelStatus{ModelID: id, Status: "downloading", Percent: float64(i)})
		}
		statuses[id] = append(statuses[id],
			backend.ModelStatus{ModelID: id, Status: "complete", Percent: 100})
	}
	fake := &fakeClient{
		searchResults: []backend.ModelInfo{{ID: "org/llama"}},
		statuses:      statuses,
	}
	h := New(fake)

	for _, id := range ids {
		if err := h.StartDownload(context.Background(), id); err != nil {
			t.Fatalf("StartDownload(%s) error = %v", id, err)
		}
	}

	// Each download is polled from its own goroutine, the way concurrent
	// poll ticks run, while a third goroutine searches and reads the caches.
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < polls; i++ {
				if _, err := h.PollDownload(context.Background(), id); err != nil {
					t.Errorf("PollDownload(%s) error = %v", id, err)
					return
				}
				h.DownloadStatus(id)
			}
		}(id)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < polls; i++ {
			if err := h.Search(context.Background(), "llama"); err != nil {
				t.Errorf("Search() error = %v", err)
				return
			}
			h.Results()
			h.Local()
			h.ActiveDownloads()
		}
	}()
	wg.Wait()

	if n := len(h.ActiveDownloads()); n != 0 {
		t.Errorf("ActiveDownloads() = %d entries, want 0 after both completed", n)
	}
}

func TestCleanup_RemovesFromFailedList(t *testing.T) {
	fake := &fakeClient{
		failed: []backend.FailedDownload{
			{ModelID: "org/a"},
			{ModelID: "org/b"},
		},
	}
	h := New(fake)

	if err := h.Cleanup(context.Background(), "org/a"); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if len(fake.cleaned) != 1 || fake.cleaned[0] != "org/a" {
		t.Errorf("cleaned = %v, want [org/a]", fake.cleaned)
	}
	if len(h.Failed()) != 1 || h.Failed()[0].ModelID != "org/b" {
		t.Errorf("Failed() = %+v, want only org/b", h.Failed())
	}
}
